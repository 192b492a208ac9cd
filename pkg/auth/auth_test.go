package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
)

type stubUsers map[primitive.ObjectID]*models.User

func (s stubUsers) FindIdentity(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User not found")
}

func setup() (*auth.Signer, *auth.Gate, *models.User) {
	user := &models.User{ID: primitive.NewObjectID(), Name: "Sana", Role: models.RoleUser}
	signer := auth.NewSigner("test-secret")
	return signer, auth.NewGate(signer, stubUsers{user.ID: user}), user
}

func TestAuthenticate_Success(t *testing.T) {
	signer, gate, user := setup()
	token, err := signer.Generate(user.ID.Hex())
	require.NoError(t, err)

	got, err := gate.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthenticate_Missing(t *testing.T) {
	_, gate, _ := setup()
	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc"} {
		_, err := gate.Authenticate(context.Background(), header)
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err), header)
		assert.Equal(t, apperr.ReasonMissing, apperr.ReasonOf(err), header)
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	signer, gate, user := setup()
	past := signer.WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })
	token, err := past.Generate(user.ID.Hex())
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), "Bearer "+token)
	assert.Equal(t, apperr.ReasonExpired, apperr.ReasonOf(err))
	assert.Equal(t, "Token expired", err.(*apperr.Error).Message)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	_, gate, user := setup()
	token, err := auth.NewSigner("other-secret").Generate(user.ID.Hex())
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), "Bearer "+token)
	assert.Equal(t, apperr.ReasonInvalid, apperr.ReasonOf(err))
}

func TestAuthenticate_Malformed(t *testing.T) {
	signer, gate, _ := setup()

	_, err := gate.Authenticate(context.Background(), "Bearer not.a.jwt")
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonInvalid, apperr.ReasonOf(err))
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid token", e.Message)

	token, err := signer.Generate("")
	require.NoError(t, err)
	_, err = gate.Authenticate(context.Background(), "Bearer "+token)
	assert.Equal(t, apperr.ReasonMalformed, apperr.ReasonOf(err))

	token, err = signer.Generate("user-42")
	require.NoError(t, err)
	_, err = gate.Authenticate(context.Background(), "Bearer "+token)
	assert.Equal(t, apperr.ReasonMalformed, apperr.ReasonOf(err))
}

func TestAuthenticate_UnknownSubject(t *testing.T) {
	signer, gate, _ := setup()
	token, err := signer.Generate(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), "Bearer "+token)
	assert.Equal(t, apperr.ReasonUnknownSubject, apperr.ReasonOf(err))
}

func TestRequireRole(t *testing.T) {
	user := &models.User{Role: models.RoleUser}
	err := auth.RequireRole(user, models.RoleAdmin)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = auth.RequireRole(nil, models.RoleAdmin)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	assert.NoError(t, auth.RequireRole(&models.User{Role: models.RoleAdmin}, models.RoleAdmin))
}

func TestRequireVerified(t *testing.T) {
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(auth.RequireVerified(&models.User{})))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(auth.RequireVerified(nil)))
	assert.NoError(t, auth.RequireVerified(&models.User{IsVerified: true}))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(hash, "s3cret!"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}

func TestRandomToken(t *testing.T) {
	a, err := auth.RandomToken()
	require.NoError(t, err)
	b, err := auth.RandomToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
