package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/nhle/news-archive/internal/model"
)

const (
	// Title heads every failure notification.
	Title = "news_archive"

	// Subtitle marks a failed run.
	Subtitle = "Execution error"
)

// kinded is implemented by errors that name their own category.
type kinded interface {
	Kind() string
}

// ErrorKind names the category of err: the Kind of the first error in the
// chain that declares one, otherwise the exported Go type name of err,
// otherwise "Error".
func ErrorKind(err error) string {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	name := fmt.Sprintf("%T", err)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return "Error"
	}
	return name
}

// Describe renders err as "Kind: message".
func Describe(err error) string {
	return fmt.Sprintf("%s: %s", ErrorKind(err), err)
}

// Reporter decides what happens to a failed run: in simulate mode the
// error is handed back unchanged, otherwise it becomes a notification.
type Reporter struct {
	Simulate bool
	Notifier Notifier
	Log      logrus.FieldLogger
}

// Report returns err when simulating. Otherwise it sends a best-effort
// notification describing err and returns nil; delivery failures are
// logged at debug level and dropped.
func (r *Reporter) Report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if r.Simulate {
		return err
	}

	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithError(err).Debug("Archival run failed")

	if r.Notifier == nil {
		return nil
	}

	n := model.Notification{
		Title:    Title,
		Subtitle: Subtitle,
		Message:  Describe(err),
	}
	if notifyErr := r.Notifier.Notify(ctx, n); notifyErr != nil {
		log.WithError(notifyErr).Debug("Notification not delivered")
	}

	return nil
}
