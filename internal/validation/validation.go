// Package validation holds input rules shared by signup and group management.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 12
	MaxPasswordLength = 128
	MaxUsernameLength = 150
	MaxEmailLength    = 254

	MaxGroupTitleLength       = 200
	MaxGroupDescriptionLength = 200
)

var (
	usernameRegex  = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	groupSlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,50}$`)
)

// Reserved usernames collide with top-level routes because profiles live at /<username>/.
var reservedUsernames = map[string]struct{}{
	"admin":   {},
	"auth":    {},
	"new":     {},
	"group":   {},
	"follow":  {},
	"media":   {},
	"static":  {},
	"metrics": {},
	"health":  {},
	"login":   {},
	"logout":  {},
	"signup":  {},
}

// IsReservedUsername reports whether name would shadow an application route.
func IsReservedUsername(name string) bool {
	_, ok := reservedUsernames[strings.ToLower(name)]
	return ok
}

// ValidateUsername allows letters, digits and @/./+/-/_ up to 150 characters.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("this field is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("ensure this value has at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("enter a valid username: letters, numbers, and @/./+/-/_ characters only")
	}
	if IsReservedUsername(username) {
		return errors.New("this username is reserved")
	}
	return nil
}

// ValidatePassword enforces length and character-class requirements.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !upper:
		return errors.New("password must contain an uppercase letter")
	case !lower:
		return errors.New("password must contain a lowercase letter")
	case !digit:
		return errors.New("password must contain a digit")
	case !special:
		return errors.New("password must contain a special character")
	}
	return nil
}

// ValidateEmail accepts an empty address; otherwise it must be a bare, well-formed address.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return errors.New("enter a valid email address")
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") || strings.HasPrefix(domain, ".") {
		return errors.New("enter a valid email address")
	}
	return nil
}

// ValidateGroupSlug validates group slug format.
func ValidateGroupSlug(slug string) error {
	if !groupSlugRegex.MatchString(slug) {
		return errors.New("slug must be 3-50 characters and contain only lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return errors.New("slug cannot start or end with a hyphen")
	}
	return nil
}

// ValidateGroup checks a group's title, slug and description and returns
// the failing fields keyed by name, or nil.
func ValidateGroup(title, slug, description string) map[string]string {
	fields := map[string]string{}
	switch n := utf8.RuneCountInString(strings.TrimSpace(title)); {
	case n == 0:
		fields["title"] = "This field is required."
	case utf8.RuneCountInString(title) > MaxGroupTitleLength:
		fields["title"] = fmt.Sprintf("Ensure this value has at most %d characters.", MaxGroupTitleLength)
	}
	if err := ValidateGroupSlug(slug); err != nil {
		fields["slug"] = err.Error()
	}
	if utf8.RuneCountInString(description) > MaxGroupDescriptionLength {
		fields["description"] = fmt.Sprintf("Ensure this value has at most %d characters.", MaxGroupDescriptionLength)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
