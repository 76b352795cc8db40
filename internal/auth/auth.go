package auth

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"auction-engine/internal/auctionerrors"
)

// Role is a marketplace user role carried in the access token
type Role string

const (
	RoleDealer Role = "dealer"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

// Identity is the verified result of resolving a credential
type Identity struct {
	UserID int64
	Role   Role
}

// Verifier resolves an inbound credential to an identity
type Verifier interface {
	Verify(token string) (Identity, error)
}

// JWTVerifier validates the marketplace's HS256 access tokens. The subject
// claim holds the user id as a string and the role claim holds the role name.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with the given secret
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates a token, returning the caller's identity
func (v *JWTVerifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("auth: missing token: %w", auctionerrors.ErrUnauthorized)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token: %w", auctionerrors.ErrUnauthorized)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, fmt.Errorf("auth: token missing subject: %w", auctionerrors.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("auth: malformed subject %q: %w", sub, auctionerrors.ErrUnauthorized)
	}

	role, _ := claims["role"].(string)
	if role == "" {
		return Identity{}, fmt.Errorf("auth: token missing role: %w", auctionerrors.ErrUnauthorized)
	}

	return Identity{UserID: userID, Role: Role(role)}, nil
}

// IssueToken signs an access token for a user. Used by tests and tooling;
// login itself lives in the wider marketplace service.
func IssueToken(secret string, userID int64, role Role) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}
