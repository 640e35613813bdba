package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject is returned for valid tokens that do not name a user.
var ErrNoSubject = errors.New("token has no subject")

// Verifier checks identity-provider tokens signed with a shared HMAC secret
// and yields the user id from the "sub" claim.
type Verifier struct {
	secretKey string
}

func NewVerifier(secretKey string) *Verifier {
	return &Verifier{secretKey: secretKey}
}

// UserID validates tokenString and returns its subject.
func (v *Verifier) UserID(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(v.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse identity token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("identity token is invalid")
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}

// Issue signs a token for userID. The identity provider normally does this;
// it is used by the CLI and tests.
func (v *Verifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	s, err := token.SignedString([]byte(v.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign identity token: %w", err)
	}
	return s, nil
}
