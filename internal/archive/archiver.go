package archive

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/sirupsen/logrus"

	"github.com/nhle/news-archive/internal/mailbox"
	"github.com/nhle/news-archive/internal/model"
)

// Session is the part of an IMAP session the archiver needs.
type Session interface {
	Select(mailbox string) error
	SearchBefore(cutoff time.Time, excludeDeleted bool) ([]imap.UID, error)
	Copy(uids []imap.UID, dest string) error
	MarkDeleted(uids []imap.UID) error
	Logout() error
}

// Dialer opens authenticated sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// MailboxDialer adapts a mailbox.Client to Dialer.
type MailboxDialer struct {
	Client *mailbox.Client
}

// Dial implements Dialer.
func (d MailboxDialer) Dial(ctx context.Context) (Session, error) {
	session, err := d.Client.Dial(ctx)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Result describes a completed archival pass.
type Result struct {
	// Cutoff is the calendar date messages had to predate.
	Cutoff time.Time

	// Criteria is the search key sent to the server.
	Criteria string

	// Moved holds the UIDs copied and flagged, in search order.
	Moved []imap.UID
}

// Archiver performs archival passes for one account.
type Archiver struct {
	cfg     *model.ArchiveConfig
	dialer  Dialer
	out     io.Writer
	verbose bool
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option customises an Archiver.
type Option func(*Archiver)

// WithOutput sets where progress is printed when verbose.
func WithOutput(w io.Writer) Option {
	return func(a *Archiver) { a.out = w }
}

// WithVerbose enables the progress line.
func WithVerbose(verbose bool) Option {
	return func(a *Archiver) { a.verbose = verbose }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Archiver) { a.log = log }
}

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) { a.now = now }
}

// New creates an Archiver.
func New(cfg *model.ArchiveConfig, dialer Dialer, opts ...Option) *Archiver {
	a := &Archiver{
		cfg:    cfg,
		dialer: dialer,
		out:    io.Discard,
		log:    logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run performs one archival pass. The session is logged out on every
// path once it has been opened; a logout failure is only returned when
// nothing else failed first.
func (a *Archiver) Run(ctx context.Context) (res *Result, err error) {
	cutoff := CutoffDate(a.now(), a.cfg.MaxAgeDays)
	res = &Result{
		Cutoff:   cutoff,
		Criteria: SearchCriteria(cutoff, a.cfg.SkipDeleted),
	}

	log := a.log.WithFields(logrus.Fields{
		"from":   a.cfg.FromMailbox,
		"to":     a.cfg.ToMailbox,
		"search": res.Criteria,
	})

	session, err := a.dialer.Dial(ctx)
	if err != nil {
		return res, fmt.Errorf("opening session: %w", err)
	}
	defer func() {
		if logoutErr := session.Logout(); logoutErr != nil {
			if err == nil {
				err = fmt.Errorf("closing session: %w", logoutErr)
			} else {
				log.WithError(logoutErr).Debug("Logout failed after earlier error")
			}
		}
	}()

	if err := session.Select(a.cfg.FromMailbox); err != nil {
		return res, fmt.Errorf("selecting source mailbox: %w", err)
	}

	uids, err := session.SearchBefore(cutoff, a.cfg.SkipDeleted)
	if err != nil {
		return res, fmt.Errorf("searching for old messages: %w", err)
	}

	if len(uids) == 0 {
		log.Info("No messages to archive")
		return res, nil
	}

	if a.verbose {
		fmt.Fprintf(a.out, "Moving %d message(s)...\n", len(uids))
	}
	log.WithField("count", len(uids)).Info("Archiving messages")

	if err := session.Copy(uids, a.cfg.ToMailbox); err != nil {
		return res, fmt.Errorf("copying %d message(s): %w", len(uids), err)
	}

	if err := session.MarkDeleted(uids); err != nil {
		return res, fmt.Errorf("flagging %d message(s) deleted: %w", len(uids), err)
	}

	res.Moved = uids
	return res, nil
}
