package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/memory-lane/database/dbtest"
	"github.com/anoixa/memory-lane/database/repo/users"
	"github.com/anoixa/memory-lane/internal/apperr"
	"github.com/anoixa/memory-lane/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *auth.JWTService) {
	t.Helper()
	jwt := auth.NewJWTServiceWithConfig(auth.TokenConfig{Secret: []byte(strings.Repeat("k", 32)), ExpiresIn: time.Hour})
	return NewService(users.NewRepository(dbtest.NewProvider(t)), jwt), jwt
}

func TestSignup(t *testing.T) {
	svc, jwt := newService(t)

	res, err := svc.Signup(context.Background(), SignupInput{Name: " Ann ", Email: "Ann@Test.dev"})
	require.NoError(t, err)

	assert.Equal(t, "Ann", res.User.Name)
	assert.Equal(t, "ann@test.dev", res.User.Email)
	require.NotNil(t, res.User.MemoryLane)
	assert.Equal(t, "Ann's Memory Lane", res.User.MemoryLane.Title)
	require.NotNil(t, res.User.MemoryLane.Description)
	assert.Equal(t, "A collection of my memories", *res.User.MemoryLane.Description)

	session, err := jwt.ParseSession(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, session.UserID)
	assert.Equal(t, res.User.MemoryLane.ID, session.MemoryLaneID)
}

func TestSignup_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Name: "Ann", Email: "ann@test.dev"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input SignupInput
		isErr func(error) bool
		msg   string
	}{
		{"duplicate", SignupInput{Name: "Other", Email: "ANN@test.dev"}, apperr.IsConflict, "User already exists"},
		{"short name", SignupInput{Name: "A", Email: "a@test.dev"}, apperr.IsValidation, "name must be at least 2 characters"},
		{"bad email", SignupInput{Name: "Bob", Email: "bob"}, apperr.IsValidation, "Invalid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, tt.isErr(err))
			assert.Equal(t, tt.msg, apperr.MessageOf(err))
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, SignupInput{Name: "Ann", Email: "ann@test.dev"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginInput{Email: " ann@test.dev"})
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, res.User.ID)
	require.NotNil(t, res.User.MemoryLane)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@test.dev"})
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, "User not found", apperr.MessageOf(err))
}

func TestMe(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, SignupInput{Name: "Ann", Email: "ann@test.dev"})
	require.NoError(t, err)

	user, err := svc.Me(ctx, &auth.Session{UserID: signed.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "ann@test.dev", user.Email)

	_, err = svc.Me(ctx, &auth.Session{UserID: "gone"})
	assert.True(t, apperr.IsNotFound(err))
}
