package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nexus/internal/gateway/app"
	"nexus/internal/gateway/config"
	"nexus/internal/gateway/repository/inbox"
)

type rootFlags struct {
	port    string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "gateway",
		Short:         "Nexus Creative site gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.port, "port", "", "listen address, overrides PORT")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP gateway",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), flags)
			},
		},
		&cobra.Command{
			Use:   "advise <question>",
			Short: "Ask the strategist once and print the reply",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAdvise(cmd, flags, strings.Join(args, " "))
			},
		},
		&cobra.Command{
			Use:   "generate [item-id]",
			Short: "Generate a portfolio image (default: next unfilled item)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGenerate(cmd, flags, args)
			},
		},
		newInboxCmd(flags),
	)
	return root
}

func newInboxCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List the newest contact submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInbox(cmd, flags, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum submissions to print")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if p := strings.TrimSpace(flags.port); p != "" {
		if !strings.HasPrefix(p, ":") && !strings.Contains(p, ":") {
			p = ":" + p
		}
		cfg.Port = p
	}
	return cfg, nil
}

func runServe(parent context.Context, flags *rootFlags) error {
	log, err := newLogger(flags.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	log.Info("server exiting")
	return nil
}

func runAdvise(cmd *cobra.Command, flags *rootFlags, question string) error {
	log, err := newLogger(flags.verbose)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	reply, ok := a.Chat.Create().Ask(cmd.Context(), question)
	if !ok {
		return errors.New("question was empty")
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
	return nil
}

func runGenerate(cmd *cobra.Command, flags *rootFlags, args []string) error {
	log, err := newLogger(flags.verbose)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	id := 0
	if len(args) == 1 {
		if id, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
	} else {
		next, ok := a.Catalog.FindNextUnfilled()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "every portfolio item already has an image")
			return nil
		}
		id = next.ID
	}

	out, err := a.Catalog.Generate(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !out.Filled() {
		return fmt.Errorf("no image generated for item %d", id)
	}
	ref := out.ImageRef
	if len(ref) > 96 {
		ref = ref[:96] + "..."
	}
	fmt.Fprintf(cmd.OutOrStdout(), "item %d: %s\n", id, ref)
	return nil
}

func runInbox(cmd *cobra.Command, flags *rootFlags, limit int) error {
	log, err := newLogger(flags.verbose)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	subs, err := a.Inbox.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	printSubmissions(cmd.OutOrStdout(), subs)
	return nil
}

func printSubmissions(w io.Writer, subs []inbox.Submission) {
	if len(subs) == 0 {
		fmt.Fprintln(w, "no submissions")
		return
	}
	for _, sub := range subs {
		fmt.Fprintf(w, "%s  %-20s %-28s %-9s %s\n",
			sub.CreatedAt.Format(time.RFC3339), sub.Form.Name, sub.Form.Email, sub.Form.Interest, sub.Form.Message)
	}
}
