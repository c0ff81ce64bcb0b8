package mailbox

import (
	"errors"
	"fmt"
)

// ConnectError indicates that the IMAP server could not be reached or the
// TLS handshake failed.
type ConnectError struct {
	Address string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to IMAP %s: %v", e.Address, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Kind names the error category for failure notifications.
func (e *ConnectError) Kind() string { return "ConnectError" }

// AuthError indicates that the server rejected the login.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Kind names the error category for failure notifications.
func (e *AuthError) Kind() string { return "AuthError" }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// CommandError indicates that the server answered a command with a
// non-OK status, or that the connection broke while it was in flight.
type CommandError struct {
	Command string
	Mailbox string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Mailbox != "" {
		return fmt.Sprintf("IMAP %s %q: %v", e.Command, e.Mailbox, e.Err)
	}
	return fmt.Sprintf("IMAP %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Kind names the error category for failure notifications.
func (e *CommandError) Kind() string { return "CommandError" }
