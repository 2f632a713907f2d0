package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rfp-assistant/internal/apiclient"
	"rfp-assistant/internal/config"
	"rfp-assistant/internal/format"
	"rfp-assistant/internal/session"
)

var errNotSignedIn = errors.New("not signed in; run `rfpchat login` first")

type app struct {
	v       *viper.Viper
	cfgFile string

	cfg     config.Config
	logger  *slog.Logger
	logFile *os.File
	session *session.Session
	client  *apiclient.Client

	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{v: config.New(), in: in, out: out}

	root := &cobra.Command{
		Use:           "rfpchat",
		Short:         "Procurement assistant: expert chat, RFPs, vendors and proposals",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default <user config dir>/rfpchat/config.yaml)")
	f.String("api-url", "", "backend base URL")
	f.String("session-file", "", "where the sign-in token is stored")
	f.String("log-file", "", "log destination")
	_ = a.v.BindPFlag(config.KeyAPIURL, f.Lookup("api-url"))
	_ = a.v.BindPFlag(config.KeySessionFile, f.Lookup("session-file"))
	_ = a.v.BindPFlag(config.KeyLogFile, f.Lookup("log-file"))

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoAmICmd(a),
		newChatCmd(a),
		newAskCmd(a),
		newExpertsCmd(a),
		newRFPsCmd(a),
		newVendorsCmd(a),
		newProposalsCmd(a),
		newEmailsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = a.openLogger()

	sess, err := session.Load(cfg.SessionFile)
	if err != nil {
		return err
	}
	a.session = sess

	client, err := apiclient.New(cfg.APIURL, sess,
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	a.client = client
	a.logger.Debug("rfpchat started", "api_url", cfg.APIURL, "authenticated", sess.Authenticated())
	return nil
}

// openLogger writes to the configured log file. The terminal belongs to
// the TUI, so logs never go to stdout or stderr.
func (a *app) openLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	path := a.cfg.LogFile
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, opts))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, opts))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, opts))
	}
	a.logFile = f
	logger := slog.New(slog.NewTextHandler(f, opts))
	slog.SetDefault(logger)
	return logger
}

func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// setupSignedIn is the pre-run hook for command groups that always call
// authenticated endpoints.
func (a *app) setupSignedIn(_ *cobra.Command, _ []string) error {
	if err := a.setup(); err != nil {
		return err
	}
	return a.requireSession()
}

func (a *app) requireSession() error {
	if !a.session.Authenticated() {
		return errNotSignedIn
	}
	return nil
}

func (a *app) printf(msg string, args ...any) {
	fmt.Fprintf(a.out, msg, args...)
}

// prompt reads one line from stdin when a flag was left empty.
func (a *app) prompt(label string) (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.in)
	}
	a.printf("%s: ", label)
	line, err := a.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// unwrap turns a failed Result into a command error.
func unwrap[T any](r apiclient.Result[T]) (T, error) {
	if r.OK {
		return r.Value, nil
	}
	if r.AuthRequired {
		return r.Value, errNotSignedIn
	}
	return r.Value, errors.New(r.Reason)
}

// unwrapAI is unwrap for endpoints backed by the AI service, whose raw
// failures are rewritten into user-facing messages.
func unwrapAI[T any](r apiclient.Result[T]) (T, error) {
	v, err := unwrap(r)
	if err != nil && !errors.Is(err, errNotSignedIn) {
		return v, errors.New(format.AIError(err.Error()))
	}
	return v, err
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
