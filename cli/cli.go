// Package cli exposes the dashboard as a cobra command tree. The root
// command starts the TUI; subcommands run single operations.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dashtodo/app"
	"dashtodo/config"
	"dashtodo/session"
	"dashtodo/store"
	"dashtodo/tui"
)

var now = time.Now

// ErrSignedOut is returned by task commands when no user is signed in.
var ErrSignedOut = errors.New("not signed in: run 'dashtodo login <name>' first")

// env holds what a command invocation opened.
type env struct {
	backend store.Backend
	owned   bool
	logFile io.Closer
	status  string
}

// close releases what the invocation opened. It is safe to call twice.
func (e *env) close() {
	if e.owned && e.backend != nil {
		if err := e.backend.Close(); err != nil {
			log.Printf("cli: close storage: %v", err)
		}
	}
	e.backend, e.owned = nil, false
	if e.logFile != nil {
		_ = e.logFile.Close()
		e.logFile = nil
	}
}

// workspace restores the persisted session and returns it with a manager.
func (e *env) workspace() (*session.Auth, *app.Manager) {
	mgr := app.NewStoreManager(e.backend, nil)
	auth := session.New(e.backend, mgr.SetAccess)
	auth.Restore()
	return auth, mgr
}

func (e *env) signedIn() (*app.Manager, error) {
	_, mgr := e.workspace()
	if mgr.Locked() {
		return nil, ErrSignedOut
	}
	return mgr, nil
}

// NewRootCmd builds the command tree. When backend is nil the configured
// backend is opened for each invocation.
func NewRootCmd(stdout io.Writer, backend store.Backend) *cobra.Command {
	cmd, _ := newRootCmd(stdout, backend)
	return cmd
}

func newRootCmd(stdout io.Writer, backend store.Backend) (*cobra.Command, *env) {
	e := &env{}

	cmd := &cobra.Command{
		Use:   "dashtodo",
		Short: "A personal dashboard with a per-user todo list",
		Long:  "dashtodo shows a clock, a greeting and your tasks. Run it without arguments for the interactive dashboard.",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if backend != nil {
				e.backend = backend
				return nil
			}
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := setupLogging(e, cfg.LogFile); err != nil {
				return err
			}
			b, err := store.Open(cfg.Backend, cfg.DataDir)
			if err != nil {
				return fmt.Errorf("open %s storage: %w", cfg.Backend, err)
			}
			e.backend = b
			e.owned = true
			if fb, ok := b.(*store.FileBackend); ok {
				e.status = fb.Status()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(e)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default "+config.DefaultPath()+")")

	cmd.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Start the interactive dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(e)
		},
	})
	cmd.AddCommand(newLoginCmd(stdout, e))
	cmd.AddCommand(newLogoutCmd(stdout, e))
	cmd.AddCommand(newWhoamiCmd(stdout, e))
	cmd.AddCommand(newAddCmd(stdout, e))
	cmd.AddCommand(newListCmd(stdout, e))
	cmd.AddCommand(newDoneCmd(stdout, e))
	cmd.AddCommand(newEditCmd(stdout, e))
	cmd.AddCommand(newRemoveCmd(stdout, e))
	cmd.AddCommand(newMoveCmd(stdout, e))
	cmd.AddCommand(newClearDoneCmd(stdout, e))

	return cmd, e
}

func runTUI(e *env) error {
	p := tea.NewProgram(tui.NewModel(e.backend, e.status), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func setupLogging(e *env, path string) error {
	if path == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := tea.LogToFile(path, "dashtodo")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	e.logFile = f
	return nil
}

// execute runs cmd and closes e whether or not the command failed. cobra
// skips post-run hooks after an error.
func execute(cmd *cobra.Command, e *env) error {
	defer e.close()
	return cmd.Execute()
}

// Execute runs the root command against the process arguments.
func Execute() int {
	cmd, e := newRootCmd(os.Stdout, nil)
	if err := execute(cmd, e); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
