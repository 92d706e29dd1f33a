package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cppla/commentbox/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	alice := &models.User{Email: strPtr("a@x"), Username: "alice", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotEmpty(t, alice.ID)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)

	got, err = repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Create(ctx, &models.User{Email: strPtr("other@x"), Username: "alice", PasswordHash: "h2"})
	assert.Error(t, err, "usernames are unique")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_EmailOptionalButUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h"}))
	require.NoError(t, repo.Create(ctx, &models.User{Username: "bob", PasswordHash: "h"}), "many accounts may lack an email")

	require.NoError(t, repo.Create(ctx, &models.User{Email: strPtr("c@x"), Username: "carol", PasswordHash: "h"}))
	assert.Error(t, repo.Create(ctx, &models.User{Email: strPtr("c@x"), Username: "dave", PasswordHash: "h"}))
}

func TestCommentRepository_Listings(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := &models.Comment{Title: "old", Body: "b", Author: "alice", PostedAt: base}
	newer := &models.Comment{Title: "new", Body: "b", Author: "bob", PostedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	reply1 := &models.Comment{Title: "r1", Body: "b", Author: "bob", PostedAt: base.Add(2 * time.Minute),
		ParentID: strPtr(older.ID), RootID: strPtr(older.ID)}
	require.NoError(t, repo.Create(ctx, reply1))
	reply2 := &models.Comment{Title: "r2", Body: "b", Author: "alice", PostedAt: base.Add(3 * time.Minute),
		ParentID: strPtr(reply1.ID), RootID: strPtr(older.ID)}
	require.NoError(t, repo.Create(ctx, reply2))

	roots, err := repo.FindRoots(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, []string{newer.ID, older.ID}, []string{roots[0].ID, roots[1].ID})
	for _, c := range roots {
		assert.True(t, c.IsRoot())
	}

	thread, err := repo.FindByRoot(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, reply2.ID, thread[0].ID)
	assert.Equal(t, reply1.ID, thread[1].ID)
	assert.Equal(t, reply1.ID, *thread[0].ParentID)

	empty, err := repo.FindByRoot(ctx, "no-such-root")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	got, err := repo.FindByID(ctx, reply1.ID)
	require.NoError(t, err)
	assert.Equal(t, "r1", got.Title)
	assert.True(t, got.PostedAt.Equal(reply1.PostedAt))

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentRepository_DanglingReferencesAccepted(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(newTestDB(t))

	c := &models.Comment{Title: "t", Body: "b", Author: "alice", PostedAt: time.Now().UTC(),
		ParentID: strPtr("ghost"), RootID: strPtr("ghost-root")}
	require.NoError(t, repo.Create(ctx, c))

	thread, err := repo.FindByRoot(ctx, "ghost-root")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, c.ID, thread[0].ID)
}

func TestCommentRepository_EqualTimestampsOrderedByID(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(newTestDB(t))
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	a := &models.Comment{ID: "aaaa", Title: "a", Body: "b", Author: "x", PostedAt: at}
	z := &models.Comment{ID: "zzzz", Title: "z", Body: "b", Author: "x", PostedAt: at}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, z))

	roots, err := repo.FindRoots(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "zzzz", roots[0].ID)
	assert.Equal(t, "aaaa", roots[1].ID)
}
