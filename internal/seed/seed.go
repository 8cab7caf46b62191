// Package seed fills a database with demo data for development. It writes
// through the repositories so posts get the same publication dates and
// follow edges the same checks as in production.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "QuillDemo#2024"

// Options controls how much data the seeder creates.
type Options struct {
	Users           int
	PostsPerUser    int
	FollowsPerUser  int
	CommentsPerPost int
	// Seed makes the generated content reproducible.
	Seed       int64
	BcryptCost int
}

// Summary counts what a run created.
type Summary struct {
	Groups   int
	Users    int
	Posts    int
	Follows  int
	Comments int
}

// Seeder creates users, posts, follows and comments.
type Seeder struct {
	db       *gorm.DB
	opts     Options
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	follows  repository.FollowRepository
	comments repository.CommentRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{
		db:       db,
		opts:     opts,
		faker:    gofakeit.New(opts.Seed),
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		follows:  repository.NewFollowRepository(db),
		comments: repository.NewCommentRepository(db),
	}
}

// ClearAll removes every row the application stores, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Run seeds groups from fixtures and then the social graph.
func (s *Seeder) Run(ctx context.Context, fixtures []GroupFixture) (*Summary, error) {
	groups, err := Groups(ctx, s.db, fixtures)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Groups: len(groups)}

	users, err := s.seedUsers(ctx)
	if err != nil {
		return nil, err
	}
	sum.Users = len(users)

	posts, err := s.seedPosts(ctx, users, groups)
	if err != nil {
		return nil, err
	}
	sum.Posts = len(posts)

	if sum.Follows, err = s.seedFollows(ctx, users); err != nil {
		return nil, err
	}
	if sum.Comments, err = s.seedComments(ctx, users, posts); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "seeding complete",
		slog.Int("groups", sum.Groups),
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("follows", sum.Follows),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		user := &models.User{
			Username:  fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last), i+1),
			FirstName: first,
			LastName:  last,
			Email:     s.faker.Email(),
			Password:  string(hash),
		}
		if err := s.users.Create(ctx, user); err != nil {
			if models.IsCode(err, models.CodeConflict) {
				continue
			}
			return nil, fmt.Errorf("seed user %s: %w", user.Username, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, groups []models.Group) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, u := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			post := &models.Post{
				AuthorID: u.ID,
				Text:     s.faker.Paragraph(1, 3, 12, " "),
			}
			// Roughly two posts in three carry a group.
			if len(groups) > 0 && s.faker.Number(0, 2) > 0 {
				gid := groups[s.faker.Number(0, len(groups)-1)].ID
				post.GroupID = &gid
			}
			if err := s.posts.Create(ctx, post); err != nil {
				return nil, fmt.Errorf("seed post for %s: %w", u.Username, err)
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	created := 0
	for _, u := range users {
		for i := 0; i < s.opts.FollowsPerUser; i++ {
			author := users[s.faker.Number(0, len(users)-1)]
			if author.ID == u.ID {
				continue
			}
			ok, err := s.follows.Follow(ctx, u.ID, author.ID)
			if err != nil {
				return created, fmt.Errorf("seed follow %s -> %s: %w", u.Username, author.Username, err)
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*models.User, posts []*models.Post) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}
	created := 0
	for _, p := range posts {
		for i := 0; i < s.opts.CommentsPerPost; i++ {
			author := users[s.faker.Number(0, len(users)-1)]
			comment := &models.Comment{
				PostID:   p.ID,
				AuthorID: author.ID,
				Text:     s.faker.Sentence(8),
			}
			if err := s.comments.Create(ctx, comment); err != nil {
				return created, fmt.Errorf("seed comment on post %d: %w", p.ID, err)
			}
			created++
		}
	}
	return created, nil
}
