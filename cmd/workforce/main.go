/*
main.go - Batch compliance, cost and rollout tool

PURPOSE:
  Loads a configuration document and a set of shifts and runs the engine on
  them from the command line. No network surface: this is a batch tool for
  schedulers and CI checks.

COMMANDS:
  check    Validate one week against the active rule set and price it
  preview  Project a template or rotation group without writing anything

PERSISTENT FLAGS:
  --config      Configuration YAML (required)
  --shifts      Shift records YAML; imported into --db when both are given
  --db          SQLite database path
  --log-level   debug, info, warn, error (default: info)
  --log-format  json or console (default: console)

EXIT CODES:
  0  success
  1  bad input or failure
  2  check found at least one critical violation

EXAMPLES:
  workforce check --config=cao.yaml --shifts=week11.yaml --week=2025-03-10
  workforce preview --config=cao.yaml --db=shifts.db --rotation=two-week --start=2025-03-10 --cycles=2

SEE ALSO:
  - planner/planner.go: ValidateWeek, WeeklyCost, PreviewRollout
  - factory/config.go, factory/shifts.go: Input documents
  - store/sqlite/sqlite.go, store/memory/memory.go: Shift sources
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/warp/workforce-engine/factory"
	"github.com/warp/workforce-engine/logging"
	"github.com/warp/workforce-engine/planner"
	"github.com/warp/workforce-engine/store/memory"
	"github.com/warp/workforce-engine/store/sqlite"
	"go.uber.org/zap"
)

// App holds what every command needs once flags are parsed.
type App struct {
	cfg     *factory.Config
	planner *planner.Planner
	logger  *zap.Logger
	out     io.Writer
	close   func()
}

type globalFlags struct {
	configPath string
	shiftsPath string
	dbPath     string
	logLevel   string
	logFormat  string
}

var errCritical = errors.New("critical violations found")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &App{out: os.Stdout}
	err := newRootCmd(app).ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errCritical) {
		if app.logger != nil {
			app.logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	app.shutdown()

	switch {
	case errors.Is(err, errCritical):
		os.Exit(2)
	case err != nil:
		os.Exit(1)
	}
}

func newRootCmd(app *App) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "workforce",
		Short:         "Work-time compliance and wage cost reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.Context(), flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "configuration YAML")
	root.PersistentFlags().StringVar(&flags.shiftsPath, "shifts", "", "shift records YAML")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "console", "log format: json or console")
	root.MarkPersistentFlagRequired("config")

	root.AddCommand(checkCmd(app))
	root.AddCommand(previewCmd(app))
	return root
}

// init sets up the logger, configuration, shift source and planner.
func (a *App) init(ctx context.Context, flags globalFlags) error {
	var err error
	a.logger, err = logging.New(logging.Config{Level: flags.logLevel, Format: logging.Format(flags.logFormat)})
	if err != nil {
		return err
	}

	if a.cfg, err = factory.LoadFromPath(flags.configPath); err != nil {
		return err
	}
	a.logger.Info("loaded configuration",
		zap.String("rule_set", a.cfg.ActiveRuleSet.ID),
		zap.Int("supplement_rules", len(a.cfg.SupplementRules)),
		zap.Int("holidays", a.cfg.Calendar.Len()),
	)

	source, closeSource, err := openSource(ctx, flags, a.logger)
	if err != nil {
		return err
	}
	a.close = closeSource
	a.planner = planner.FromConfig(source, a.cfg, a.logger)
	return nil
}

func (a *App) shutdown() {
	if a.close != nil {
		a.close()
		a.close = nil
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func openSource(ctx context.Context, flags globalFlags, logger *zap.Logger) (planner.ShiftSource, func(), error) {
	if flags.shiftsPath == "" && flags.dbPath == "" {
		return nil, nil, errors.New("one of --shifts and --db is required")
	}

	var records []byte
	if flags.shiftsPath != "" {
		var err error
		if records, err = os.ReadFile(flags.shiftsPath); err != nil {
			return nil, nil, fmt.Errorf("failed to read shifts file: %w", err)
		}
	}
	shifts, err := factory.ParseShifts(records)
	if err != nil {
		return nil, nil, err
	}

	if flags.dbPath == "" {
		st, err := memory.New(shifts...)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	}

	st, err := sqlite.New(flags.dbPath)
	if err != nil {
		return nil, nil, err
	}
	if len(shifts) > 0 {
		if err := st.Add(ctx, shifts...); err != nil {
			st.Close()
			return nil, nil, err
		}
		logger.Info("imported shifts", zap.Int("count", len(shifts)), zap.String("db", flags.dbPath))
	}
	return st, func() { st.Close() }, nil
}
