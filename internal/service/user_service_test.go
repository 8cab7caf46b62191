package service

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_SignupAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users).WithBcryptCost(bcrypt.MinCost)
	ctx := context.Background()

	in := SignupInput{
		FirstName: "Leo",
		LastName:  "Tolstoy",
		Username:  "leo",
		Email:     "leo@example.com",
		Password1: "SecurePass12!@",
		Password2: "SecurePass12!@",
	}
	user, err := svc.Signup(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, in.Password1, user.Password)

	got, err := svc.Authenticate(ctx, "leo", "SecurePass12!@")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "leo", "wrong")
	assert.True(t, models.IsCode(err, models.CodeUnauthenticated))
	_, err = svc.Authenticate(ctx, "nobody", "SecurePass12!@")
	assert.True(t, models.IsCode(err, models.CodeUnauthenticated))

	_, err = svc.Signup(ctx, in)
	assert.Contains(t, models.FieldErrors(err), "username")
}

func TestUserService_SignupValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users).WithBcryptCost(bcrypt.MinCost)

	_, err := svc.Signup(context.Background(), SignupInput{
		Username:  "new",
		Email:     "not-an-email",
		Password1: "SecurePass12!@",
		Password2: "different",
	})
	fields := models.FieldErrors(err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Equal(t, "The two password fields didn't match.", fields["password2"])
}
