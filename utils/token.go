package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrMissingCredential   = errors.New("authorization header required")
	ErrMalformedCredential = errors.New("invalid authorization header")
	ErrInvalidToken        = errors.New("invalid token")
)

const bearerPrefix = "Bearer "

type JWTToken struct {
	signingKey []byte
	now        func() time.Time
}

func NewJWTToken(config *Config) *JWTToken {
	return NewJWTTokenWithKey(config.SigningKey)
}

func NewJWTTokenWithKey(signingKey string) *JWTToken {
	return &JWTToken{signingKey: []byte(signingKey), now: time.Now}
}

// Caller is the identity derived from a verified token. Only ID takes part in
// ownership checks, Name and Email are display values.
type Caller struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type jwtClaim struct {
	jwt.StandardClaims
}

func (j *JWTToken) CreateToken(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject cannot be empty")
	}

	now := j.now()
	claims := jwtClaim{
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(j.signingKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (j *JWTToken) VerifyToken(tokenString string) (Caller, error) {
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenString, &jwtClaim{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.signingKey, nil
	})
	if err != nil {
		return Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwtClaim)
	if !ok || !token.Valid {
		return Caller{}, fmt.Errorf("%w: token is not OK", ErrInvalidToken)
	}

	if claims.Subject == "" {
		return Caller{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	// exp is part of the claim schema and is checked here against our own clock
	if claims.ExpiresAt == 0 {
		return Caller{}, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	if claims.ExpiresAt < j.now().Unix() {
		return Caller{}, fmt.Errorf("%w: token is expired", ErrInvalidToken)
	}

	name, email := DisplayIdentity(claims.Subject)
	return Caller{
		ID:    claims.Subject,
		Name:  name,
		Email: email,
	}, nil
}

// Authenticate turns an Authorization header value into a Caller. The
// "Bearer " scheme is optional, a bare token is accepted too.
func (j *JWTToken) Authenticate(header string) (Caller, error) {
	if header == "" {
		return Caller{}, ErrMissingCredential
	}

	if !isHeaderText(header) {
		return Caller{}, ErrMalformedCredential
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	token = strings.TrimSpace(token)
	if token == "" {
		return Caller{}, ErrMalformedCredential
	}

	return j.VerifyToken(token)
}

// header values must be visible ASCII or tab
func isHeaderText(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\t' {
			continue
		}
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
