package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/job-portal/internal/config"
	"github.com/spec-kit/job-portal/internal/domain"
)

// ErrInvalidToken covers missing, malformed, expired or mis-signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager verifies JWT bearer tokens. Issuance is only used by tooling.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager from the auth configuration.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	ttl := cfg.TokenTTL()
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	Role     domain.Role `json:"role"`
	Verified bool        `json:"verified,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the principal.
func (tm *TokenManager) GenerateToken(principal domain.Principal) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Role:     principal.Role,
		Verified: principal.Verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			Issuer:    tm.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the token and returns the principal it carries.
func (tm *TokenManager) Verify(tokenStr string) (domain.Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return domain.Principal{}, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return domain.Principal{}, ErrInvalidToken
	}
	return domain.Principal{
		ID:       claims.Subject,
		Role:     claims.Role,
		Verified: claims.Role == domain.RoleHiringManager && claims.Verified,
	}, nil
}
