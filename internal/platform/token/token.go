// Package token issues and validates HMAC-signed service tokens for the
// lifecycle API. Tokens identify operators and internal services, not data
// subjects; subjects never authenticate against this engine.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "scoutpost/pkg/domain-errors"
	authmw "scoutpost/pkg/platform/middleware/auth"
)

// Claims are the JWT claims carried by service tokens.
type Claims struct {
	ActorID string `json:"actor_id"`
	Scope   string `json:"scope"`
	jwt.RegisteredClaims
}

// Service signs and validates service tokens.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Generate signs a service token for an actor with the given scope.
func (s *Service) Generate(actorID, scope string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ActorID: actorID,
		Scope:   scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// ValidateToken implements the middleware's TokenValidator contract.
func (s *Service) ValidateToken(tokenString string) (*authmw.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.ActorID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing actor")
	}

	return &authmw.Claims{ActorID: claims.ActorID, Scope: claims.Scope}, nil
}
