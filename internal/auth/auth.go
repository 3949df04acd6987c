package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadToken = errors.New("invalid token")

const tokenTTL = 15 * time.Minute

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Issuer signs and verifies HS256 access tokens. The caller identity travels
// in the subject claim.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

func (i *Issuer) Issue(uid string) (string, error) {
	now := i.now()
	c := jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Verify returns the caller identity carried by raw.
func (i *Issuer) Verify(raw string) (string, error) {
	var c jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", err
	}
	if !tok.Valid || c.Subject == "" {
		return "", ErrBadToken
	}
	return c.Subject, nil
}

// Subject reads the subject of an unexpired token without checking its
// signature. Clients use it to know who they are signed in as; servers use
// Verify.
func Subject(raw string, now time.Time) (string, bool) {
	var c jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil {
		return "", false
	}
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time) {
		return "", false
	}
	return c.Subject, c.Subject != ""
}

type callerKey struct{}

// WithCaller attaches an authenticated caller identity to ctx.
func WithCaller(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, callerKey{}, uid)
}

// Caller reports the identity attached by WithCaller, if any.
func Caller(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(callerKey{}).(string)
	return uid, ok && uid != ""
}
