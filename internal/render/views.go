package render

import (
	"quill/internal/models"
	"quill/internal/pagination"
)

// PostPage is a page of posts.
type PostPage = pagination.Page[models.Post]

// Base is embedded by every view.
type Base struct {
	Viewer     *models.User
	Title      string
	SignupOpen bool
}

// Authenticated reports whether the page is rendered for a logged-in user.
func (b Base) Authenticated() bool { return b.Viewer != nil }

// IsViewer reports whether userID belongs to the logged-in user.
func (b Base) IsViewer(userID uint) bool {
	return b.Viewer != nil && b.Viewer.ID == userID
}

type IndexView struct {
	Base
	Page *PostPage
}

type GroupView struct {
	Base
	Group *models.Group
	Page  *PostPage
}

type ProfileView struct {
	Base
	Author         *models.User
	Page           *PostPage
	Following      bool
	ShowStats      bool
	FollowersCount int64
	FollowingCount int64
}

type PostView struct {
	Base
	Post      *models.Post
	Comments  []models.Comment
	Following bool
}

type FollowView struct {
	Base
	Page *PostPage
}

// PostForm carries submitted or current values of the post form.
type PostForm struct {
	Text    string
	GroupID uint
	Image   string
}

type PostFormView struct {
	Base
	Post   *models.Post
	Form   PostForm
	Groups []models.Group
	Errors map[string]string
}

// IsEdit reports whether the form edits an existing post.
func (v PostFormView) IsEdit() bool { return v.Post != nil }

type LoginView struct {
	Base
	Username string
	Next     string
	Error    string
}

// SignupForm carries submitted signup values. Passwords are never echoed back.
type SignupForm struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}

type SignupView struct {
	Base
	Form   SignupForm
	Errors map[string]string
}

type ErrorView struct {
	Base
	Path string
}
