package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tabletome/authcore/internal/model"
)

// tokenClaims is the signed claim set embedded in a bearer token
type tokenClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// TokenPayload is the verified, immutable snapshot carried by a token
type TokenPayload struct {
	Subject   string
	Roles     []model.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// issueToken signs an HS256 token for the user's current identity and roles
func (s *Service) issueToken(user *model.User) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Roles: model.RoleStrings(user.Roles),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyToken checks signature and expiry and returns the embedded payload.
// Verification is stateless: no storage access, so a role revoked after
// issuance is still visible inside a valid, unexpired token.
func (s *Service) VerifyToken(tokenString string) (*TokenPayload, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	// A token minted before a role was removed from the enumeration, or
	// tampered into an unknown role, must not verify
	roles, err := model.ParseRoles(claims.Roles)
	if err != nil {
		return nil, ErrInvalidToken
	}

	payload := &TokenPayload{
		Subject:   claims.Subject,
		Roles:     roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time
	}
	return payload, nil
}
