package jwt

import (
	"errors"
	"time"

	jw "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrBadClaims    = errors.New("bad claims")
)

const defaultSecret = "replace-this-with-a-strong-secret"

// Issuer signs and verifies HS256 access tokens whose "sub" claim is the
// profile id.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) *Issuer {
	if secret == "" {
		secret = defaultSecret
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// DefaultSecret reports whether the issuer fell back to the built-in
// secret, which anyone reading the source can sign with.
func (i *Issuer) DefaultSecret() bool { return string(i.secret) == defaultSecret }

func (i *Issuer) Make(userID string) (string, error) {
	now := i.now()
	claims := jw.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	return jw.NewWithClaims(jw.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) Parse(tok string) (string, error) {
	t, err := jw.Parse(tok, func(t *jw.Token) (any, error) { return i.secret, nil },
		jw.WithValidMethods([]string{jw.SigningMethodHS256.Alg()}),
		jw.WithTimeFunc(i.now),
	)
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	mc, ok := t.Claims.(jw.MapClaims)
	if !ok {
		return "", ErrBadClaims
	}
	uid, _ := mc["sub"].(string)
	if uid == "" {
		return "", ErrBadClaims
	}
	return uid, nil
}
