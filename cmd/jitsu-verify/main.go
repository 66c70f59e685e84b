// Command jitsu-verify checks the belt rules in process and smoke tests a
// running academy server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/jitsu/internal/verify"
	"github.com/okian/jitsu/pkg/logger"
)

// defaultRunTimeout bounds a whole smoke run.
const defaultRunTimeout = 2 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "jitsu-verify",
		Short:        "Verify the belt rules and a running jitsu server",
		SilenceUsage: true,
	}
	root.AddCommand(newRulesCmd(), newSmokeCmd())
	return root
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Check belt ordering, successors and time in grade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := verify.Rules(time.Now())
			report.Print(cmd.OutOrStdout())
			return report.Err()
		},
	}
}

func newSmokeCmd() *cobra.Command {
	var (
		cfg      verify.Config
		total    time.Duration
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Drive the HTTP API end to end",
		Long: `Smoke checks a running server: health, belt ladder, roster order,
member lookup, concurrent check-ins with duplicate replay, attendance and
promotion rejection. Each check prints a [PASS] or [FAIL] line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if err := logger.SetLevelString(logLevel); err != nil {
				return err
			}
			cfg.Logger = logger.Get()

			ctx, cancel := context.WithTimeout(cmd.Context(), total)
			defer cancel()

			report, err := verify.Smoke(ctx, cfg)
			report.Print(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return report.Err()
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.DurationVar(&cfg.Timeout, "timeout", verify.DefaultTimeout, "HTTP request timeout")
	f.IntVar(&cfg.Workers, "workers", 0, "concurrent check-in workers (default NumCPU)")
	f.IntVar(&cfg.Members, "members", verify.DefaultMembers, "roster members to check in")
	f.StringVar(&cfg.SessionID, "session", "", "session to check into (default first upcoming)")
	f.DurationVar(&cfg.Settle, "settle", verify.DefaultSettle, "how long attendance may take to catch up")
	f.DurationVar(&total, "deadline", defaultRunTimeout, "overall run timeout")
	f.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	return cmd
}
