package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken indicates the token failed validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims of an admin access token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AdminID returns the subject as an admin id.
func (c *Claims) AdminID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Token is a freshly signed access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ID          string    `json:"-"`
	ExpiresAt   time.Time `json:"-"`
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager constructs a TokenManager. refreshTTL is counted from issue time.
func NewTokenManager(secret, issuer string, ttl, refreshTTL time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be greater than zero")
	}
	if refreshTTL < ttl {
		refreshTTL = ttl
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, refreshTTL: refreshTTL, now: time.Now}, nil
}

// Issue signs a token for the admin.
func (m *TokenManager) Issue(adminID int64, username string) (Token, error) {
	now := m.now().UTC()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(adminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(m.ttl / time.Second),
		ID:          claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Parse verifies signature, issuer and expiry.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	return m.parse(token, false)
}

// ParseForRefresh accepts expired tokens still inside the refresh window.
func (m *TokenManager) ParseForRefresh(token string) (*Claims, error) {
	return m.parse(token, true)
}

// RefreshDeadline is the last moment claims can be exchanged for a new token.
func (m *TokenManager) RefreshDeadline(claims *Claims) time.Time {
	return claims.IssuedAt.Time.Add(m.refreshTTL)
}

func (m *TokenManager) parse(token string, allowExpired bool) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := m.validateClaims(claims, allowExpired); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}
	return claims, nil
}

func (m *TokenManager) validateClaims(claims *Claims, allowExpired bool) error {
	if claims.Issuer != m.issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if _, err := claims.AdminID(); err != nil {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil || claims.ID == "" {
		return errors.New("registered claims missing")
	}
	now := m.now().UTC()
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if allowExpired {
		if now.After(m.RefreshDeadline(claims)) {
			return errors.New("refresh window closed")
		}
		return nil
	}
	if now.After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	return nil
}
