package notify

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/news-archive/internal/mailbox"
	"github.com/nhle/news-archive/internal/model"
)

type recordingNotifier struct {
	sent []model.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestReporterSimulatePropagates(t *testing.T) {
	notifier := &recordingNotifier{}
	r := &Reporter{Simulate: true, Notifier: notifier, Log: quietLogger()}

	original := &mailbox.CommandError{Command: "UID COPY", Mailbox: "Archive", Err: errors.New("NO quota")}
	err := r.Report(context.Background(), original)

	assert.Same(t, original, err)
	assert.Empty(t, notifier.sent)
}

func TestReporterNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	r := &Reporter{Notifier: notifier, Log: quietLogger()}

	cause := &mailbox.AuthError{Username: "reader", Err: errors.New("invalid credentials")}
	err := r.Report(context.Background(), cause)

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.Notification{
		Title:    "news_archive",
		Subtitle: "Execution error",
		Message:  "AuthError: authentication failed for reader: invalid credentials",
	}, notifier.sent[0])
}

func TestReporterSwallowsDeliveryFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("no display")}
	r := &Reporter{Notifier: notifier, Log: quietLogger()}

	assert.NoError(t, r.Report(context.Background(), errors.New("boom")))
	assert.Len(t, notifier.sent, 1)
}

func TestReporterNilError(t *testing.T) {
	notifier := &recordingNotifier{}
	for _, simulate := range []bool{true, false} {
		r := &Reporter{Simulate: simulate, Notifier: notifier, Log: quietLogger()}
		assert.NoError(t, r.Report(context.Background(), nil))
	}
	assert.Empty(t, notifier.sent)
}

func TestReporterWithoutNotifier(t *testing.T) {
	r := &Reporter{}
	assert.NoError(t, r.Report(context.Background(), errors.New("boom")))
}

func TestErrorKind(t *testing.T) {
	wrapped := &mailbox.CommandError{Command: "SELECT", Err: errors.New("NO")}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"kinded", &mailbox.ConnectError{Address: "x:993", Err: errors.New("refused")}, "ConnectError"},
		{"wrapped kinded", errors.Join(errors.New("context"), wrapped), "CommandError"},
		{"exported type", &net.AddrError{Err: "bad", Addr: "x"}, "AddrError"},
		{"plain", errors.New("boom"), "Error"},
		{"config", &model.ConfigError{Problems: []string{"hostname is required"}}, "ConfigError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestAppleScript(t *testing.T) {
	script := AppleScript(model.Notification{
		Title:    "news_archive",
		Subtitle: "Execution error",
		Message:  `CommandError: IMAP SELECT "News": NO \ missing`,
	})

	assert.Equal(t,
		`display notification "CommandError: IMAP SELECT \"News\": NO \\ missing"`+
			` with title "news_archive" subtitle "Execution error"`,
		script)
}

func TestAppleScriptOmitsEmptyParts(t *testing.T) {
	assert.Equal(t, `display notification "hi"`, AppleScript(model.Notification{Message: "hi"}))
}

func TestCommand(t *testing.T) {
	n := model.Notification{Title: "news_archive", Subtitle: "Execution error", Message: "Error: boom"}

	name, args := Command("darwin", n)
	assert.Equal(t, "/usr/bin/osascript", name)
	assert.Equal(t, []string{"-e", AppleScript(n)}, args)

	name, args = Command("linux", n)
	assert.Equal(t, "notify-send", name)
	assert.Equal(t, []string{"--app-name=news_archive", "news_archive", "Execution error\nError: boom"}, args)
}

func TestCommandNotifierRuns(t *testing.T) {
	var gotName string
	var gotArgs []string
	c := &CommandNotifier{
		goos: "darwin",
		run: func(_ context.Context, name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		},
	}

	require.NoError(t, c.Notify(context.Background(), model.Notification{Message: "m"}))
	assert.Equal(t, "/usr/bin/osascript", gotName)
	assert.Equal(t, []string{"-e", `display notification "m"`}, gotArgs)
}

func TestCommandNotifierWrapsFailure(t *testing.T) {
	c := &CommandNotifier{
		goos: "linux",
		run: func(context.Context, string, ...string) error {
			return errors.New("executable file not found")
		},
	}

	err := c.Notify(context.Background(), model.Notification{Message: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running notify-send")
}
