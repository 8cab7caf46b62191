package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "SecurePass12!@", false},
		{"Exactly Min Length", "Abcdefghij1!", false},
		{"Exactly Max Length", "A" + strings.Repeat("b", 125) + "1!", false},
		{"Too Short", "Small1!", true},
		{"Too Long", "A" + strings.Repeat("b", 126) + "1!", true},
		{"No Upper", "securepass12!", true},
		{"No Lower", "SECUREPASS12!", true},
		{"No Digit", "SecurePass!!", true},
		{"No Special", "SecurePass123", true},
		{"Unicode Characters", "ÅngstromPass12!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user", false},
		{"Allowed punctuation", "a.b@c+d-e", false},
		{"Cyrillic", "Лев", false},
		{"Empty", "", true},
		{"Space", "test user", true},
		{"Slash", "a/b", true},
		{"Too Long", strings.Repeat("a", 151), true},
		{"Reserved route", "follow", true},
		{"Reserved case-insensitive", "NEW", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Empty is optional", "", false},
		{"Valid", "test@example.com", false},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Display name", "Leo <leo@example.com>", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateGroupSlug(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateGroupSlug("test-slug"))
	assert.Error(t, ValidateGroupSlug("Test Slug"))
	assert.Error(t, ValidateGroupSlug("-edge"))
	assert.Error(t, ValidateGroupSlug("ab"))
}

func TestValidateGroup(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ValidateGroup("Лев Толстой", "tolstoy", "Группа поклонников"))
	// Limits count characters, not bytes.
	assert.Nil(t, ValidateGroup(strings.Repeat("я", MaxGroupTitleLength), "test-slug", ""))

	fields := ValidateGroup(" ", "a/b", strings.Repeat("x", MaxGroupDescriptionLength+1))
	assert.Equal(t, "This field is required.", fields["title"])
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "description")

	fields = ValidateGroup(strings.Repeat("t", MaxGroupTitleLength+1), "with space", "")
	assert.Contains(t, fields["title"], "at most 200 characters")
	assert.Contains(t, fields, "slug")
	assert.NotContains(t, fields, "description")
}
