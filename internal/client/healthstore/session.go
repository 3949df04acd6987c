package healthstore

import (
	"time"

	"health-companion-api/internal/auth"
)

// TokenSession is signed in while its access token is unexpired. The token
// is only decoded here; the server verifies it on every call.
type TokenSession struct {
	Token string
	Now   func() time.Time
}

func (s TokenSession) Caller() (string, bool) {
	if s.Token == "" {
		return "", false
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return auth.Subject(s.Token, now())
}
