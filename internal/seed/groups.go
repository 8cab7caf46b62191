package seed

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"quill/internal/models"
	"quill/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed groups.yml
var defaultGroupsYAML []byte

// GroupFixture describes a group in a YAML fixture file.
type GroupFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type groupsFile struct {
	Groups []GroupFixture `yaml:"groups"`
}

// ParseGroups decodes a fixture file of the form `groups: [{title, slug, description}]`.
func ParseGroups(data []byte) ([]GroupFixture, error) {
	var file groupsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse groups fixture: %w", err)
	}

	seen := make(map[string]bool, len(file.Groups))
	for i, g := range file.Groups {
		g.Slug = strings.TrimSpace(g.Slug)
		if fields := validation.ValidateGroup(g.Title, g.Slug, g.Description); fields != nil {
			return nil, fmt.Errorf("groups fixture entry %d (%q): %s", i, g.Slug, describeFields(fields))
		}
		if seen[g.Slug] {
			return nil, fmt.Errorf("groups fixture: duplicate slug %q", g.Slug)
		}
		seen[g.Slug] = true
		file.Groups[i] = g
	}
	return file.Groups, nil
}

func describeFields(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name])
	}
	return strings.Join(parts, "; ")
}

// DefaultGroups returns the groups shipped with the application.
func DefaultGroups() ([]GroupFixture, error) {
	return ParseGroups(defaultGroupsYAML)
}

// Groups upserts fixtures by slug and returns the stored rows in fixture order.
func Groups(ctx context.Context, db *gorm.DB, fixtures []GroupFixture) ([]models.Group, error) {
	out := make([]models.Group, 0, len(fixtures))
	for _, f := range fixtures {
		if fields := validation.ValidateGroup(f.Title, f.Slug, f.Description); fields != nil {
			return nil, fmt.Errorf("seed group %q: %s", f.Slug, describeFields(fields))
		}
		group := models.Group{Title: f.Title, Slug: f.Slug, Description: f.Description}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(&group).Error
		if err != nil {
			return nil, fmt.Errorf("seed group %s: %w", f.Slug, err)
		}
		if err := db.WithContext(ctx).Where("slug = ?", f.Slug).Take(&group).Error; err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, nil
}
