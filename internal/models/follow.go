package models

// Follow is a directed edge from a subscriber (UserID) to an author (AuthorID).
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_follows_user_author;check:chk_follows_not_self,user_id <> author_id" json:"user_id"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint `gorm:"not null;uniqueIndex:idx_follows_user_author;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
