package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/nhle/news-archive/internal/model"
)

// deliveryTimeout bounds how long a notification command may run.
const deliveryTimeout = 5 * time.Second

// Notifier delivers a local desktop notification.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// CommandNotifier delivers notifications by running a platform helper:
// osascript on macOS, notify-send elsewhere.
type CommandNotifier struct {
	goos string
	run  func(ctx context.Context, name string, args ...string) error
}

// NewSystemNotifier returns a CommandNotifier for the running platform.
func NewSystemNotifier() *CommandNotifier {
	return &CommandNotifier{goos: runtime.GOOS, run: runCommand}
}

// Notify implements Notifier.
func (c *CommandNotifier) Notify(ctx context.Context, n model.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	name, args := Command(c.goos, n)
	if err := c.run(ctx, name, args...); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

// Command returns the helper program and arguments that display n on goos.
func Command(goos string, n model.Notification) (string, []string) {
	if goos == "darwin" {
		return "/usr/bin/osascript", []string{"-e", AppleScript(n)}
	}

	body := n.Message
	if n.Subtitle != "" {
		body = n.Subtitle + "\n" + n.Message
	}
	return "notify-send", []string{"--app-name=" + n.Title, n.Title, body}
}

// AppleScript builds a "display notification" statement for n.
func AppleScript(n model.Notification) string {
	var b strings.Builder
	b.WriteString("display notification ")
	b.WriteString(appleScriptQuote(n.Message))
	if n.Title != "" {
		b.WriteString(" with title ")
		b.WriteString(appleScriptQuote(n.Title))
	}
	if n.Subtitle != "" {
		b.WriteString(" subtitle ")
		b.WriteString(appleScriptQuote(n.Subtitle))
	}
	return b.String()
}

var appleScriptEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func appleScriptQuote(s string) string {
	return `"` + appleScriptEscaper.Replace(s) + `"`
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s", deliveryTimeout)
	}
	return err
}
