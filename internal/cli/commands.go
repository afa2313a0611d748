// Package cli implements the zeeguu command line.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/zeeguu/internal/config"
	"github.com/mrlokans/zeeguu/internal/console"
	"github.com/mrlokans/zeeguu/internal/entrypoint"
	"github.com/mrlokans/zeeguu/internal/session"
)

// ErrFailed is returned when the server or a precondition rejected the
// operation. The reason has already been printed.
var ErrFailed = errors.New("operation failed")

// GlobalOptions are flags shared by every command.
type GlobalOptions struct {
	DataDir  string
	APIURL   string
	Offline  bool
	LogLevel string
}

func (o *GlobalOptions) apply(cfg *config.Config) {
	if o.DataDir != "" {
		cfg.Storage.DataDir = o.DataDir
		cfg.Storage.DatabasePath = filepath.Join(o.DataDir, config.DefaultDatabaseName)
		cfg.Storage.CacheDir = filepath.Join(o.DataDir, config.DefaultCacheDirName)
	}
	if o.APIURL != "" {
		cfg.API.BaseURL = o.APIURL
	}
	if o.Offline {
		cfg.Network.Offline = true
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
}

// New creates the root command.
func New(version string) *cobra.Command {
	g := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "zeeguu",
		Short:         "Translate words and keep a vocabulary on the zeeguu server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&g.DataDir, "data-dir", "", "Directory holding the account database and word cache.")
	cmd.PersistentFlags().StringVar(&g.APIURL, "api-url", "", "Base URL of the zeeguu API.")
	cmd.PersistentFlags().BoolVar(&g.Offline, "offline", false, "Treat the network as unavailable.")
	cmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Log level (debug, info, warn, error).")

	AddCommands(cmd, g, version)
	return cmd
}

// AddCommands registers every sub command on topLevel.
func AddCommands(topLevel *cobra.Command, g *GlobalOptions, version string) {
	addLogin(topLevel, g)
	addSignup(topLevel, g)
	addLogout(topLevel, g)
	addStatus(topLevel, g)
	addTranslate(topLevel, g)
	addBookmark(topLevel, g)
	addWords(topLevel, g)
	addDelete(topLevel, g)
	addLanguage(topLevel, g)
	addScores(topLevel, g)
	addServe(topLevel, g, version)
	addVersion(topLevel, version)
}

func loadConfig(g *GlobalOptions) *config.Config {
	cfg := config.NewConfig()
	g.apply(cfg)
	entrypoint.ConfigureLogging(cfg.Log)
	return cfg
}

// runner opens the application, prints to the command's output and closes
// everything when done.
type runner struct {
	app     *entrypoint.App
	printer *console.Printer
}

func openRunner(cmd *cobra.Command, g *GlobalOptions) (*runner, error) {
	printer := console.NewPrinter(cmd.OutOrStdout())
	app, err := entrypoint.New(loadConfig(g), entrypoint.Options{
		Callbacks: printer,
		UserAgent: "zeeguu-cli",
	})
	if err != nil {
		return nil, err
	}
	return &runner{app: app, printer: printer}, nil
}

func (r *runner) close() {
	r.app.Close()
}

// run executes op and reports ErrFailed when it printed an error or dialog.
func (r *runner) run(op func(m *session.Manager)) error {
	r.app.Run(op)
	if r.printer.Failed() {
		return ErrFailed
	}
	return nil
}

// ensureSession reacquires a session for a stored login that lost its token.
func (r *runner) ensureSession() error {
	acct := r.app.Account
	if !acct.IsLoggedIn() {
		return fmt.Errorf("not logged in, run `zeeguu login` first")
	}
	if acct.IsInSession() || !r.app.Network.Available() {
		return nil
	}
	return r.run(func(m *session.Manager) {
		m.AcquireSession(acct.Email(), acct.Password())
	})
}

// withSession opens a runner, makes sure a session is held and runs op.
func withSession(cmd *cobra.Command, g *GlobalOptions, op func(m *session.Manager)) error {
	r, err := openRunner(cmd, g)
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.ensureSession(); err != nil {
		return err
	}
	return r.run(op)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
