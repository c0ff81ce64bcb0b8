package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/news-archive/internal/model"
)

// Client holds the settings needed to open an authenticated IMAP session.
type Client struct {
	address    string
	serverName string
	username   string
	password   string
	security   string
	skipVerify bool
	debug      io.Writer
}

// NewClient creates a client for the account described by cfg. The
// password is passed separately because it may come from the keyring.
func NewClient(cfg *model.ArchiveConfig, password string) *Client {
	return &Client{
		address:    cfg.Address(),
		serverName: cfg.Hostname,
		username:   cfg.User,
		password:   password,
		security:   cfg.Security,
		skipVerify: cfg.TLSSkipVerify,
	}
}

// SetDebugWriter mirrors the raw protocol exchange to w. Credentials are
// included in the trace.
func (c *Client) SetDebugWriter(w io.Writer) {
	c.debug = w
}

// Dial establishes an encrypted connection to the IMAP server,
// authenticates, and returns the session. The caller is responsible for
// calling Logout on the returned session.
func (c *Client) Dial(_ context.Context) (*Session, error) {
	opts := &imapclient.Options{
		TLSConfig: &tls.Config{
			ServerName:         c.serverName,
			InsecureSkipVerify: c.skipVerify,
		},
		DebugWriter: c.debug,
	}

	var client *imapclient.Client
	var err error

	switch c.security {
	case model.SecurityStartTLS:
		client, err = imapclient.DialStartTLS(c.address, opts)
	default:
		client, err = imapclient.DialTLS(c.address, opts)
	}
	if err != nil {
		return nil, &ConnectError{Address: c.address, Err: err}
	}

	return login(client, c.username, c.password)
}

// login authenticates an already connected client. On failure the
// connection is closed.
func login(client *imapclient.Client, username, password string) (*Session, error) {
	if err := client.Login(username, password).Wait(); err != nil {
		_ = client.Close()
		return nil, &AuthError{Username: username, Err: err}
	}

	return &Session{client: client}, nil
}

// String identifies the account without exposing the password.
func (c *Client) String() string {
	return fmt.Sprintf("%s@%s", c.username, c.address)
}
