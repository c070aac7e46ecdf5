package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryLeeway tolerates clock skew when checking exp.
const ExpiryLeeway = 60 * time.Second

// Claims are the session access token claims. The subject is the numeric
// user ID, not a string.
type Claims struct {
	Subject   int64            `json:"sub"`
	SessionID string           `json:"sid,omitempty"`
	TokenID   string           `json:"jti,omitempty"`
	PubKey    string           `json:"pub_key,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
func (c Claims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

// ParseAccessToken verifies an HS256 token against secret and returns its
// claims. The signature and exp are always checked.
func ParseAccessToken(token string, secret []byte, now time.Time) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(ExpiryLeeway),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	return &claims, nil
}

// IssueAccessToken signs a session access token. The gateway itself only
// verifies tokens; issuance exists for tooling and tests.
func IssueAccessToken(secret []byte, userID int64, sessionID, tokenID string, now time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty signing secret")
	}
	claims := Claims{
		Subject:   userID,
		SessionID: sessionID,
		TokenID:   tokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// HashBotToken returns the lowercase hex SHA-256 of a bot token, the form
// stored in bot_applications.token_hash.
func HashBotToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
