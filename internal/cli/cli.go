// Package cli implements the news-archive command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/nhle/news-archive/internal/archive"
	"github.com/nhle/news-archive/internal/credential"
	"github.com/nhle/news-archive/internal/mailbox"
	"github.com/nhle/news-archive/internal/model"
	"github.com/nhle/news-archive/internal/notify"
)

// options holds the parsed invocation flags.
type options struct {
	simulate bool
	verbose  bool
}

// App wires the archiver to its collaborators. The zero value is not
// usable; call New.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// ConfigPath is the YAML configuration file.
	ConfigPath string

	// Notifier receives failure notifications outside test mode.
	Notifier notify.Notifier

	// OpenKeyring opens the keyring used when no password is configured.
	OpenKeyring func() (*credential.Store, error)

	// Now is the source of the current date.
	Now func() time.Time
}

// New returns an App using the process's stdio, the default config path,
// the system notifier and the system keyring.
func New() *App {
	return &App{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		ConfigPath:  model.DefaultConfigPath(),
		Notifier:    notify.NewSystemNotifier(),
		OpenKeyring: credential.Open,
		Now:         time.Now,
	}
}

// Run executes one invocation and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	opts := parseFlags(args)

	logger := newLogger(a.Stderr, opts.verbose)
	log := logger.WithField("run", uuid.NewString())

	runErr := a.archive(ctx, opts, logger, log)

	reporter := &notify.Reporter{
		Simulate: opts.simulate,
		Notifier: a.Notifier,
		Log:      log,
	}
	if err := reporter.Report(ctx, runErr); err != nil {
		fmt.Fprintln(a.Stderr, notify.Describe(err))
		return GetExitCode(err)
	}
	return ExitSuccess
}

// archive loads the configuration and performs one archival pass.
func (a *App) archive(
	ctx context.Context,
	opts options,
	logger *logrus.Logger,
	log *logrus.Entry,
) error {
	cfg, err := model.LoadConfig(a.ConfigPath)
	if err != nil {
		return err
	}

	if err := setLevel(logger, cfg.LogLevel, opts.verbose); err != nil {
		return err
	}

	password, err := credential.Password(cfg.Password, cfg.User, a.OpenKeyring)
	if err != nil {
		return fmt.Errorf("resolving password for %s: %w", cfg.User, err)
	}

	client := mailbox.NewClient(cfg, password)
	if logger.IsLevelEnabled(logrus.TraceLevel) {
		client.SetDebugWriter(a.Stderr)
	}

	log.WithField("account", client.String()).Debug("Starting archival run")

	archiver := archive.New(cfg, archive.MailboxDialer{Client: client},
		archive.WithOutput(a.Stdout),
		archive.WithVerbose(opts.verbose),
		archive.WithLogger(log),
		archive.WithClock(a.Now),
	)

	res, err := archiver.Run(ctx)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"search": res.Criteria,
		"moved":  len(res.Moved),
	}).Info("Archival run complete")

	return nil
}

// parseFlags reads --test and --verbose from args. Unknown flags and
// positional arguments are ignored. Arguments pflag rejects, such as
// --help or a known flag with a malformed value, never stop the run: the
// exact tokens --test and --verbose are honoured instead.
func parseFlags(args []string) options {
	var opts options

	fs := pflag.NewFlagSet("news-archive", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist.UnknownFlags = true

	fs.BoolVar(&opts.simulate, "test", false, "let failures surface on stderr with a non-zero exit instead of notifying")
	fs.BoolVar(&opts.verbose, "verbose", false, "print how many messages are moved")

	if err := fs.Parse(args); err != nil {
		return exactFlags(args)
	}
	return opts
}

// exactFlags matches the two flags literally.
func exactFlags(args []string) options {
	var opts options
	for _, arg := range args {
		switch arg {
		case "--test":
			opts.simulate = true
		case "--verbose":
			opts.verbose = true
		}
	}
	return opts
}

// newLogger returns a text logger on w. Warnings and above are shown by
// default, informational messages too when verbose.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	})

	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// setLevel applies the configured level, never going below info when
// verbose.
func setLevel(logger *logrus.Logger, name string, verbose bool) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return &model.ConfigError{Problems: []string{fmt.Sprintf("log_level: %v", err)}}
	}
	if verbose && level < logrus.InfoLevel {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return nil
}
