package service

import (
	"context"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

type SignupInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password1 string
	Password2 string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Signup validates the registration form and creates the account.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if err := validation.ValidateUsername(in.Username); err != nil {
		fields["username"] = capitalize(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = capitalize(err.Error())
	}
	if len(in.FirstName) > 150 {
		fields["first_name"] = "Ensure this value has at most 150 characters."
	}
	if len(in.LastName) > 150 {
		fields["last_name"] = "Ensure this value has at most 150 characters."
	}
	switch {
	case in.Password1 == "":
		fields["password1"] = "This field is required."
	case in.Password1 != in.Password2:
		fields["password2"] = "The two password fields didn't match."
	default:
		if err := validation.ValidatePassword(in.Password1); err != nil {
			fields["password2"] = capitalize(err.Error())
		}
	}
	if len(fields) > 0 {
		return nil, models.NewFieldErrors(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password1), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Password:  string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			return nil, models.NewFieldError("username", "A user with that username already exists.")
		}
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	invalid := models.NewUnauthenticatedError("Invalid username or password.")

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	return user, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
