package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/upm-go/upm/pkg/model"
)

// Client is the remote-account client: a session-holding portal login and
// a balance fetch. The daemon only distinguishes login failures from
// fetch failures when routing notification events.
type Client interface {
	// Login establishes or refreshes the portal session.
	Login(ctx context.Context) error

	// FetchBalance retrieves the current balance reading.
	FetchBalance(ctx context.Context) (*model.Reading, error)
}

// ErrSessionExpired signals that the portal no longer accepts the current
// session cookie and a re-login is required.
var ErrSessionExpired = errors.New("portal session expired")

// LoginError wraps any failure to establish a session.
type LoginError struct {
	Err error
}

func (e *LoginError) Error() string { return fmt.Sprintf("portal login failed: %v", e.Err) }
func (e *LoginError) Unwrap() error { return e.Err }

// FetchError wraps any post-login failure: network, HTTP or parse.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("balance fetch failed: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }
