package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"bookmarket/database/memstore"
	"bookmarket/models"
)

func newAuth(store *memstore.Store, secret string) *AuthService {
	return NewAuthService(store, secret, nil).WithHashCost(bcrypt.MinCost)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	in := RegisterInput{Name: "Ayesha", Email: " Ayesha@Example.com ", Password: "s3cret", Role: models.RoleSeeker}

	t.Run("Success", func(t *testing.T) {
		store := memstore.New()
		svc := newAuth(store, "test-secret")

		u, token, err := svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "ayesha@example.com", u.Email)
		assert.NotEqual(t, "s3cret", u.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret")))

		claims, err := svc.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, u.ID.Hex(), claims.UserID)
		assert.Equal(t, models.RoleSeeker, claims.Role)
		assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("admin signup forbidden", func(t *testing.T) {
		svc := newAuth(memstore.New(), "test-secret")
		admin := in
		admin.Role = models.RoleAdmin

		_, _, err := svc.Register(ctx, admin)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newAuth(memstore.New(), "test-secret")
		noRole := in
		noRole.Role = ""

		_, _, err := svc.Register(ctx, noRole)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := newAuth(memstore.New(), "test-secret")
		_, _, err := svc.Register(ctx, in)
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrUserExists)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("missing secret rolls back user", func(t *testing.T) {
		store := memstore.New()
		svc := newAuth(store, "")

		_, _, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrMisconfigured)

		u, err := store.FindUserByEmail(ctx, "ayesha@example.com")
		require.NoError(t, err)
		assert.Nil(t, u)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newAuth(store, "test-secret")
	registered, _, err := svc.Register(ctx, RegisterInput{Name: "Ravi", Email: "ravi@example.com", Password: "pw", Role: models.RoleSeller})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		u, token, err := svc.Login(ctx, "RAVI@example.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "pw")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ravi@example.com", "nope")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, _, err := newAuth(store, "").Login(ctx, "ravi@example.com", "pw")
		assert.ErrorIs(t, err, ErrNoSecret)
	})
}

func TestAuthService_ParseToken(t *testing.T) {
	svc := newAuth(memstore.New(), "test-secret")
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	token, err := svc.IssueToken(u)
	require.NoError(t, err)

	_, err = newAuth(memstore.New(), "other-secret").ParseToken(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired := NewAuthService(memstore.New(), "test-secret", fixedClock(time.Now().Add(-8*24*time.Hour)))
	old, err := expired.IssueToken(u)
	require.NoError(t, err)
	_, err = svc.ParseToken(old)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Address(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newAuth(store, "test-secret")
	u := seedUser(t, store, models.RoleSeeker)

	addr, err := svc.GetAddress(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, addr)

	_, err = svc.UpdateAddress(ctx, u.ID.Hex(), nil)
	assert.ErrorIs(t, err, ErrValidation)

	want := models.Address{Name: "Ayesha", Street: "5 Temple Rd", City: "Matara", Province: "Southern"}
	got, err := svc.UpdateAddress(ctx, u.ID.Hex(), &want)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	me, err := svc.Me(ctx, u.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, me.Address)
	assert.Equal(t, "Matara", me.Address.City)

	_, err = svc.UpdateAddress(ctx, primitive.NewObjectID().Hex(), &want)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.Me(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}
