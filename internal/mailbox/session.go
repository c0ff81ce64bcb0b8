package mailbox

import (
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Session is an authenticated IMAP connection. Message identifiers are
// UIDs, which stay valid for the whole session.
type Session struct {
	client   *imapclient.Client
	selected string
}

// Select opens mailbox read-write as the active mailbox.
func (s *Session) Select(mailbox string) error {
	if _, err := s.client.Select(mailbox, nil).Wait(); err != nil {
		return &CommandError{Command: "SELECT", Mailbox: mailbox, Err: err}
	}
	s.selected = mailbox
	return nil
}

// SearchBefore returns the UIDs of messages in the active mailbox whose
// internal date is strictly before the given calendar date, in the order
// the server reported them. With excludeDeleted, messages already flagged
// \Deleted are left out.
func (s *Session) SearchBefore(
	cutoff time.Time, excludeDeleted bool,
) ([]imap.UID, error) {
	criteria := &imap.SearchCriteria{
		Before: cutoff,
	}
	if excludeDeleted {
		criteria.NotFlag = []imap.Flag{imap.FlagDeleted}
	}

	searchData, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, &CommandError{Command: "UID SEARCH", Mailbox: s.selected, Err: err}
	}

	return searchData.AllUIDs(), nil
}

// Copy copies the given messages to dest in a single UID COPY command.
func (s *Session) Copy(uids []imap.UID, dest string) error {
	if len(uids) == 0 {
		return nil
	}

	if _, err := s.client.Copy(imap.UIDSetNum(uids...), dest).Wait(); err != nil {
		return &CommandError{Command: "UID COPY", Mailbox: dest, Err: err}
	}
	return nil
}

// MarkDeleted adds the \Deleted flag to the given messages in a single
// UID STORE command. Nothing is expunged.
func (s *Session) MarkDeleted(uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}

	storeCmd := s.client.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagDeleted},
	}, nil)

	if err := storeCmd.Close(); err != nil {
		return &CommandError{Command: "UID STORE", Mailbox: s.selected, Err: err}
	}
	return nil
}

// Logout ends the session and closes the connection. The connection is
// closed even if the server rejects LOGOUT.
func (s *Session) Logout() error {
	err := s.client.Logout().Wait()
	_ = s.client.Close()

	if err != nil {
		return &CommandError{Command: "LOGOUT", Err: err}
	}
	return nil
}
