// Command taskctl manages the logged-in user's tasks directly against the
// configured snapshot storage.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Sid-047/reminderApp/config"
	"github.com/Sid-047/reminderApp/domain/user"
	"github.com/Sid-047/reminderApp/modules/auth"
	"github.com/Sid-047/reminderApp/modules/snapshot"
	"github.com/Sid-047/reminderApp/modules/task"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the state shared by all subcommands.
type cli struct {
	out        io.Writer
	configPath string
	logger     *slog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{
		out:    out,
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "taskctl - personal tasks with deadlines and priorities",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $TASKS_CONFIG or ./reminder.yaml)")

	rootCmd.AddCommand(c.loginCmd())
	rootCmd.AddCommand(c.registerCmd())
	rootCmd.AddCommand(c.logoutCmd())
	rootCmd.AddCommand(c.whoamiCmd())
	rootCmd.AddCommand(c.addCmd())
	rootCmd.AddCommand(c.updateCmd())
	rootCmd.AddCommand(c.completeCmd())
	rootCmd.AddCommand(c.deleteCmd())
	rootCmd.AddCommand(c.listCmd())
	rootCmd.AddCommand(c.dashboardCmd())
	rootCmd.AddCommand(c.calendarCmd())
	rootCmd.AddCommand(c.summaryCmd())

	return rootCmd
}

// env is an opened storage with the session and repository on top of it.
type env struct {
	storage snapshot.Storage
	repo    snapshot.Repository
	session *auth.Session
	seed    task.SeedFunc
	logger  *slog.Logger
}

func (c *cli) open(ctx context.Context) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	s, err := snapshot.Open(ctx, cfg.Snapshot())
	if err != nil {
		return nil, err
	}
	repo := snapshot.NewRepository(snapshot.WithLatency(s, cfg.Storage.SimulatedLatency))

	seed := task.NoSeed
	if cfg.SeedDemo {
		seed = task.SampleTasks
	}

	return &env{
		storage: s,
		repo:    repo,
		session: auth.NewSession(auth.NewMockProvider(c.logger), repo),
		seed:    seed,
		logger:  c.logger,
	}, nil
}

func (e *env) Close() error {
	return e.storage.Close()
}

// store loads the session user's collection. Unlike the server, a failed
// load ends the command.
func (e *env) store(ctx context.Context) (*task.Store, *user.User, error) {
	u, err := e.session.Current(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (run: taskctl login <email>)", err)
	}

	s := task.NewStore(e.repo, task.WithSeeder(e.seed), task.WithLogger(e.logger))
	if _, err := s.Load(ctx, u.ID); err != nil {
		if task.IsLoadFailure(err) {
			return nil, nil, fmt.Errorf("could not load your tasks: %w", err)
		}
		e.logger.Warn("initial tasks were not saved", "error", err)
	}
	return s, u, nil
}

// withEnv opens the environment for the duration of fn.
func (c *cli) withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(ctx, e)
}
