package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a node in a reply thread. A nil RootID marks a thread root; every reply
// carries its thread root's ID in RootID and the comment it answers in ParentID.
// Neither reference is checked for existence.
type Comment struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	Title    string    `gorm:"type:text;not null" json:"title"`
	Body     string    `gorm:"type:text;not null" json:"body"`
	Author   string    `gorm:"size:64;index;not null" json:"author"` // username at posting time
	PostedAt time.Time `gorm:"index;not null" json:"postedAt"`
	ParentID *string   `gorm:"size:36;index" json:"parentId"`
	RootID   *string   `gorm:"size:36;index" json:"rootId"`
}

// IsRoot reports whether the comment starts a thread.
func (c *Comment) IsRoot() bool {
	return c.RootID == nil
}

// BeforeCreate assigns the store-side identifier.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// All lists the models owned by this service, in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Comment{}}
}
