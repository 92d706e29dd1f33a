package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer(t *testing.T) {
	t.Parallel()

	s := NewSanitizer()

	assert.Equal(t, "Hello", s.Title("  <b>Hello</b> "))
	assert.Equal(t, "T", s.Title("T"))
	assert.Equal(t, "", s.Title("<script>alert(1)</script>"))

	assert.Equal(t, "B", s.Body("B"))
	assert.Equal(t, "<b>bold</b>", s.Body("<b>bold</b>"))
	assert.NotContains(t, s.Body(`<a href="javascript:alert(1)">x</a>`), "javascript:")
	assert.NotContains(t, s.Body("<script>alert(1)</script>hi"), "<script>")
}

func TestSanitizer_PlainTextUnchanged(t *testing.T) {
	t.Parallel()

	s := NewSanitizer()
	for _, text := range []string{
		"Tom & Jerry's <3",
		"a < b && c > d",
		`say "hi" & wave`,
	} {
		assert.Equal(t, text, s.Title(text))
		assert.Equal(t, text, s.Body(text))
	}
}

func TestSanitizer_EscapedMarkupStaysInert(t *testing.T) {
	t.Parallel()

	s := NewSanitizer()
	body := s.Body("&lt;script&gt;alert(1)&lt;/script&gt;<script>x</script>")
	assert.NotContains(t, body, "<script>")
}
