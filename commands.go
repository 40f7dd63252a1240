package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MayaraRocha95/todo-list-hp/api"
	"github.com/MayaraRocha95/todo-list-hp/config"
	"github.com/MayaraRocha95/todo-list-hp/domain"
)

const shutdownTimeout = 10 * time.Second

type cli struct {
	out        io.Writer
	configPath string
	ephemeral  bool
	cfg        config.Config
	logger     *log.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}
	root := &cobra.Command{
		Use:           "todo-list-hp",
		Short:         "Hogwarts themed task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Name() == "serve")
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&c.ephemeral, "ephemeral", false, "keep tasks in memory only")

	var (
		house, view, subject string
		ttl                  time.Duration
	)
	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task to a house",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.add(cmd.Context(), strings.Join(args, " "), house)
		},
	}
	add.Flags().StringVar(&house, "house", string(domain.DefaultCategory), "house of the task")

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.list(cmd.Context(), view)
		},
	}
	list.Flags().StringVar(&view, "view", string(domain.ViewAll), "all, pending or completed")

	token := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the configured auth secret",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.token(subject, ttl)
		},
	}
	token.Flags().StringVar(&subject, "subject", "wizard", "subject claim of the token")
	token.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.serve(cmd.Context())
			},
		},
		add,
		list,
		token,
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Mark a task completed or pending",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.toggle(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Remove a task",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.remove(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "edit <id> <text>",
			Short: "Replace the text of a task",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.edit(cmd.Context(), args[0], strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{
			Use:   "houses",
			Short: "List the houses a task can belong to",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				c.houses()
				return nil
			},
		},
		&cobra.Command{
			Use:   "init-storage",
			Short: "Create the Azure table and queue used by the configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.initStorage(cmd.Context())
			},
		},
	)
	return root
}

func (c *cli) setup(serving bool) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.ephemeral {
		cfg.Storage.Driver = config.DriverMemory
	}
	c.cfg = cfg
	c.logger = log.New()
	switch {
	case cfg.Debug:
		c.logger.SetLevel(log.DebugLevel)
	case !serving:
		// notifications are printed, keep the log for problems only
		c.logger.SetLevel(log.WarnLevel)
	}
	return nil
}

func (c *cli) open(ctx context.Context) (*app, error) {
	return newApp(ctx, c.cfg, c.logger, printer(c.out))
}

func (c *cli) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, c.cfg, c.logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	auth, stopAuth, err := c.authenticator()
	if err != nil {
		return err
	}
	defer stopAuth()
	api.Register(e, a.store, a.broker, auth, c.logger)

	errCh := make(chan error, 1)
	go func() {
		c.logger.WithField("addr", c.cfg.Server.ListenAddr).Info("listening")
		errCh <- e.Start(c.cfg.Server.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// authenticator prefers an identity provider's JWKS over the shared secret.
// The returned func stops the background JWKS refresh.
func (c *cli) authenticator() (api.Authenticator, func(), error) {
	srv := c.cfg.Server
	if srv.JWKSURL == "" {
		return api.NewAuth(srv.AuthSecret), func() {}, nil
	}
	jwks, err := api.FetchJWKS(srv.JWKSURL, c.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("jwks: %w", err)
	}
	return api.NewJWKSAuth(jwks, srv.Audience, srv.Issuer), jwks.EndBackground, nil
}

func (c *cli) add(ctx context.Context, text, house string) error {
	category, err := domain.ParseCategory(house)
	if err != nil {
		return fmt.Errorf("house %q: %w", house, err)
	}
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	task, ok := a.store.Create(ctx, text, category)
	if !ok {
		fmt.Fprintln(c.out, "Nothing to add.")
		return nil
	}
	c.printTask(task)
	return nil
}

func (c *cli) list(ctx context.Context, raw string) error {
	view, err := domain.ParseView(raw)
	if err != nil {
		return err
	}
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks := a.store.View(view)
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "No spells here yet.")
	}
	for _, t := range tasks {
		c.printTask(t)
	}
	counts := a.store.Counts()
	fmt.Fprintf(c.out, "%d total, %d pending, %d completed\n", counts.All, counts.Pending, counts.Completed)
	return nil
}

func (c *cli) toggle(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	task, ok := a.store.ToggleCompletion(ctx, id)
	if !ok {
		fmt.Fprintf(c.out, "No task %d.\n", id)
		return nil
	}
	c.printTask(task)
	return nil
}

func (c *cli) remove(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.store.Delete(ctx, id); !ok {
		fmt.Fprintf(c.out, "No task %d.\n", id)
	}
	return nil
}

func (c *cli) edit(ctx context.Context, rawID, text string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.store.BeginEdit(id); !ok {
		fmt.Fprintf(c.out, "No task %d.\n", id)
		return nil
	}
	task, ok := a.store.CommitEdit(ctx, text)
	if !ok {
		fmt.Fprintln(c.out, "Nothing changed.")
		return nil
	}
	c.printTask(task)
	return nil
}

func (c *cli) houses() {
	for _, cat := range domain.Categories() {
		from, to := cat.Colors()
		fmt.Fprintf(c.out, "%-10s %-11s %s -> %s\n", cat, cat.DisplayName(), from, to)
	}
}

func (c *cli) initStorage(ctx context.Context) error {
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.tables != nil {
		if err := a.tables.EnsureTable(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		c.logger.WithField("table", c.cfg.Storage.Table).Info("table ready")
	}
	if a.queue != nil {
		if err := a.queue.EnsureQueue(ctx); err != nil {
			return fmt.Errorf("create queue: %w", err)
		}
		c.logger.WithField("queue", c.cfg.Notify.Queue).Info("queue ready")
	}
	fmt.Fprintln(c.out, "Storage ready.")
	return nil
}

func (c *cli) token(subject string, ttl time.Duration) error {
	tok, err := api.IssueToken(c.cfg.Server.AuthSecret, subject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, tok)
	return nil
}

func (c *cli) printTask(t domain.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(c.out, "[%s] %d %s (%s)\n", mark, t.ID, t.Text, t.Category.DisplayName())
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
