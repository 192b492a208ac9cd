package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

// IdentityLoader loads a user by id without the password field.
// It returns an apperr NotFound error when no such user exists.
type IdentityLoader interface {
	FindIdentity(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Gate turns a bearer header into an identity.
type Gate struct {
	signer *Signer
	users  IdentityLoader
}

func NewGate(signer *Signer, users IdentityLoader) *Gate {
	return &Gate{signer: signer, users: users}
}

// Authenticate verifies the Authorization header and loads the identity.
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.User, error) {
	raw := bearer(header)
	if raw == "" {
		return nil, apperr.Unauthenticated(apperr.ReasonMissing, "Access token required")
	}

	claims, err := g.signer.Parse(raw)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.Unauthenticated(apperr.ReasonExpired, "Token expired")
	case isTokenError(err):
		return nil, apperr.Unauthenticated(apperr.ReasonInvalid, "Invalid token")
	default:
		return nil, apperr.Internal("Authentication error", err)
	}

	if claims.UserID == "" {
		return nil, apperr.Unauthenticated(apperr.ReasonMalformed, "Invalid token structure")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthenticated(apperr.ReasonMalformed, "Invalid token structure")
	}

	user, err := g.users.FindIdentity(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthenticated(apperr.ReasonUnknownSubject, "Invalid token")
		}
		return nil, apperr.Internal("Authentication error", err)
	}
	return user, nil
}

// RequireRole fails unless user is present and holds role.
func RequireRole(user *models.User, role string) error {
	if user == nil {
		return apperr.Unauthenticated(apperr.ReasonMissing, "Authentication required")
	}
	if user.Role != role {
		if role == models.RoleAdmin {
			return apperr.Forbidden("Admin access required")
		}
		return apperr.Forbidden("Insufficient permissions")
	}
	return nil
}

// RequireVerified fails unless user is present and has verified their email.
func RequireVerified(user *models.User) error {
	if user == nil {
		return apperr.Unauthenticated(apperr.ReasonMissing, "Authentication required")
	}
	if !user.IsVerified {
		return apperr.Forbidden("Email verification required")
	}
	return nil
}

func bearer(header string) string {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

var tokenErrors = []error{
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenInvalidClaims,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenUsedBeforeIssued,
	jwt.ErrSignatureInvalid,
	jwt.ErrTokenMalformed,
}

func isTokenError(err error) bool {
	for _, target := range tokenErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
