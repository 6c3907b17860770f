package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong algorithm, malformed payload or expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload of an access token. The field names are the wire
// format the frontend reads, so they must stay exactly id/email/isadmin.
type Claims struct {
	UserID  uint   `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isadmin"`
	jwt.RegisteredClaims
}

// ResetClaims scope a password-reset token to a single user id.
type ResetClaims struct {
	UserID uint `json:"id"`
	jwt.RegisteredClaims
}

func Sign(userID uint, email string, isAdmin bool, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func Parse(raw string, secret []byte) (*Claims, error) {
	var claims Claims
	t, err := jwt.ParseWithClaims(raw, &claims, keyFunc(secret))
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func SignReset(userID uint, secret []byte, ttl time.Duration) (string, error) {
	claims := ResetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func ParseReset(raw string, secret []byte) (*ResetClaims, error) {
	var claims ResetClaims
	t, err := jwt.ParseWithClaims(raw, &claims, keyFunc(secret))
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}
}
