package models

// Group is a community tag a post can be attached to. It is addressed by slug.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"size:200" json:"description"`
}

func (g Group) String() string {
	return g.Title
}
