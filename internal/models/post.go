package models

import (
	"time"
)

// Post is a short text publication, optionally tagged with a Group and carrying an image.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"not null;index;precision:6" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	// Image is the blob key of the attached image; empty when absent.
	Image string `gorm:"size:255" json:"image,omitempty"`
}

// HasImage reports whether the post carries an image.
func (p Post) HasImage() bool {
	return p.Image != ""
}

func (p Post) String() string {
	return p.Text
}
