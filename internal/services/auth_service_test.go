package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgutils "github.com/campusjam/CampusJam/pkg/utils"
)

func init() {
	pkgutils.SetJWTSecret("test-secret")
}

func validRegister() *RegisterRequest {
	return &RegisterRequest{
		Name:        "Alice",
		Email:       "Alice@Example.com",
		Password:    "correct horse",
		DateOfBirth: "2003-04-15",
		Campus:      "North",
	}
}

func TestRegister(t *testing.T) {
	t.Run("success normalizes email and issues token", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		resp, err := svc.Register(validRegister())
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", resp.Email)
		assert.NotEmpty(t, resp.Token)

		claims, err := pkgutils.ParseToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.UserID, claims.UserID)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		cases := []struct {
			name    string
			mutate  func(*RegisterRequest)
			wantErr error
		}{
			{"empty name", func(r *RegisterRequest) { r.Name = "" }, ErrInvalidName},
			{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, ErrInvalidEmail},
			{"short password", func(r *RegisterRequest) { r.Password = "short" }, ErrWeakPassword},
			{"bad date of birth", func(r *RegisterRequest) { r.DateOfBirth = "15/04/2003" }, ErrMissingField},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := validRegister()
				tc.mutate(req)
				_, err := svc.Register(req)
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}
	})

	t.Run("duplicate email conflicts case-insensitively", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		_, err := svc.Register(validRegister())
		require.NoError(t, err)

		dup := validRegister()
		dup.Email = "ALICE@example.COM"
		_, err = svc.Register(dup)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	_, err := svc.Register(validRegister())
	require.NoError(t, err)

	t.Run("success with any email casing", func(t *testing.T) {
		resp, err := svc.Login(&LoginRequest{Email: "ALICE@example.com", Password: "correct horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{Email: "alice@example.com", Password: "wrong horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)
	resp, err := svc.Register(validRegister())
	require.NoError(t, err)

	user, err := svc.UpdateProfile(resp.UserID, &UpdateProfileRequest{
		Instruments: "guitar, bass",
		SkillLevel:  "Intermediate",
	})
	require.NoError(t, err)
	assert.Equal(t, "guitar, bass", user.Instruments)
	// 未提供的字段保持不变
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "North", user.Campus)

	_, err = svc.UpdateProfile(9999, &UpdateProfileRequest{Bio: "hi"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)
	resp, err := svc.Register(validRegister())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(resp.UserID))
	assert.ErrorIs(t, svc.DeleteAccount(resp.UserID), ErrUserNotFound)
}
