// Package auth holds the session token and the authentication predicate
// consulted by the route guard and the post editor.
package auth

import (
	"time"

	"github.com/rs/zerolog"
)

// Checker reports whether the current user is signed in.
type Checker interface {
	IsAuthenticated() bool
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func() bool

func (f CheckerFunc) IsAuthenticated() bool { return f() }

// Static is a fixed answer, handy for tests and scripted runs.
type Static bool

func (s Static) IsAuthenticated() bool { return bool(s) }

type expirer interface {
	Expiry() (time.Time, bool)
}

// DebugStatus logs what c currently believes about the session.
func DebugStatus(l zerolog.Logger, c Checker) {
	ev := l.Debug().Bool("authenticated", c.IsAuthenticated())
	if e, ok := c.(expirer); ok {
		if exp, has := e.Expiry(); has {
			ev = ev.Time("expires_at", exp)
		}
	}
	ev.Msg("auth status")
}
