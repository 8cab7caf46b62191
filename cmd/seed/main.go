// Command main runs the database seeder for Quill.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	postsPerUser := flag.Int("posts", 5, "Number of posts per user")
	followsPerUser := flag.Int("follows", 4, "Number of follow attempts per user")
	commentsPerPost := flag.Int("comments", 2, "Number of comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for generated content (0 picks one)")
	groupsFile := flag.String("groups", "", "YAML file of groups to seed instead of the built-in list")
	flag.Parse()

	log.Println("Quill database seeder")
	log.Printf("Target: %d users, %d posts each, clean=%v\n", *numUsers, *postsPerUser, *shouldClean)

	fixtures, err := loadGroups(*groupsFile)
	if err != nil {
		log.Fatalf("Failed to load groups: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, seed.Options{
		Users:           *numUsers,
		PostsPerUser:    *postsPerUser,
		FollowsPerUser:  *followsPerUser,
		CommentsPerPost: *commentsPerPost,
		Seed:            *randSeed,
	})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx, fixtures)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d groups, %d users, %d posts, %d follows, %d comments\n",
		sum.Groups, sum.Users, sum.Posts, sum.Follows, sum.Comments)
	log.Printf("All seeded users have the password: %s\n", seed.DefaultPassword)
}

func loadGroups(path string) ([]seed.GroupFixture, error) {
	if path == "" {
		return seed.DefaultGroups()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.ParseGroups(data)
}
