package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/hydrate/pkg/config"
	"github.com/piwi3910/hydrate/pkg/engine"
	"github.com/piwi3910/hydrate/pkg/materialize"
	"github.com/piwi3910/hydrate/pkg/progress"
	"github.com/piwi3910/hydrate/pkg/telemetry"
)

func newRunCommand(version string) *cobra.Command {
	var (
		exclude       string
		workers       int
		suffix        string
		pollInterval  time.Duration
		retryInterval time.Duration
		timeout       time.Duration
		maxCycles     int
		opener        string
		watch         bool
		metricsAddr   string
		trace         bool
	)

	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Materialize every placeholder under a directory",
		Long: `Run convergence cycles until a full traversal of the tree finds no
placeholder left to materialize.

The root directory comes from the argument, the config file, or an
interactive prompt, in that order. Flags override config file values.`,
		Example: `  # Expand everything under the odrive root
  hydrate run ~/odrive

  # Skip anything under a Photos directory, 8 workers
  hydrate run ~/odrive -e '/Photos/' -w 8

  # Serve Prometheus metrics while the run is going
  hydrate run ~/odrive --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Flags override config file values.
			flags := cmd.Flags()
			if flags.Changed("exclude") {
				cfg.ExcludePattern = exclude
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("suffix") {
				cfg.Suffix = suffix
			}
			if flags.Changed("poll-interval") {
				cfg.PollInterval = config.Duration(pollInterval)
			}
			if flags.Changed("retry-interval") {
				cfg.RetryInterval = config.Duration(retryInterval)
			}
			if flags.Changed("timeout") {
				cfg.Timeout = config.Duration(timeout)
			}
			if flags.Changed("max-cycles") {
				cfg.MaxCycles = maxCycles
			}
			if flags.Changed("opener") {
				cfg.Opener = opener
			}
			if flags.Changed("watch") {
				cfg.Watch = watch
			}
			if flags.Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if flags.Changed("trace") {
				cfg.Trace = trace
			}
			if len(args) == 1 {
				cfg.Root = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Root == "" {
				root, err := promptRoot(cmd)
				if err != nil {
					return err
				}
				cfg.Root = root
			}

			return runConvergence(cmd.Context(), cfg, version)
		},
	}

	cmd.Flags().StringVarP(&exclude, "exclude", "e", "", "regular expression searched in the absolute path of a placeholder; matches are never expanded")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent expansions per cycle (default: number of CPUs)")
	cmd.Flags().StringVar(&suffix, "suffix", engine.DefaultSuffix, "placeholder name suffix")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", engine.DefaultPollInterval, "how often to re-check whether a placeholder is gone")
	cmd.Flags().DurationVar(&retryInterval, "retry-interval", engine.DefaultRetryInterval, "how often to re-trigger materialization while waiting")
	cmd.Flags().DurationVar(&timeout, "timeout", engine.DefaultTimeout, "wait budget per placeholder per cycle")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "stop after this many cycles even without convergence (0 = unbounded)")
	cmd.Flags().StringVar(&opener, "opener", "", "command used to open placeholders (default: platform opener)")
	cmd.Flags().BoolVar(&watch, "watch", false, "use filesystem events to detect materialization sooner")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	cmd.Flags().BoolVar(&trace, "trace", false, "export OpenTelemetry spans to stdout")

	return cmd
}

// runConvergence wires the engine from configuration and runs it to
// convergence (or cancellation).
func runConvergence(ctx context.Context, cfg *config.Config, version string) error {
	telCfg := telemetry.DefaultConfig()
	telCfg.ServiceVersion = version
	telCfg.Logging.Level = cfg.LogLevel
	if verbose {
		telCfg.Logging.Level = "debug"
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	telCfg.Tracing.Enabled = cfg.Trace

	tel, err := telemetry.New(telCfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()
	ctx = tel.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		tel.Metrics.StartServer(cfg.MetricsAddr)
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
	}

	scanner, err := engine.NewScanner(cfg.Root, cfg.Suffix)
	if err != nil {
		return err
	}
	filter, err := engine.NewFilter(cfg.ExcludePattern)
	if err != nil {
		return err
	}

	waiter := engine.NewWaiter(engine.WaiterConfig{
		PollInterval:  cfg.PollInterval.Std(),
		RetryInterval: cfg.RetryInterval.Std(),
		Timeout:       cfg.Timeout.Std(),
	}, materialize.NewCommand(cfg.Opener))

	if cfg.Watch {
		watcher, err := engine.NewVanishWatcher()
		if err != nil {
			log.Warn().Err(err).Msg("filesystem watcher unavailable, polling only")
		} else {
			defer watcher.Close()
			waiter = waiter.WithWatcher(watcher)
		}
	}

	pool := engine.NewPool(cfg.Workers, waiter)
	loop := engine.NewLoop(scanner, filter, pool, engine.LoopConfig{
		MaxCycles: cfg.MaxCycles,
		Reporter: engine.MultiReporter{
			progress.NewConsoleReporter(),
			telemetry.NewReporter(ctx, tel),
		},
	})

	report, err := loop.Run(ctx)
	if err != nil {
		return err
	}
	if report.Converged {
		fmt.Println("All done!")
	}
	return nil
}

// promptRoot asks for the root directory on stdin. Surrounding quotes are
// stripped so a path pasted from a file manager works as-is.
func promptRoot(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter the root directory: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read root directory: %w", err)
	}
	root := strings.TrimSpace(strings.ReplaceAll(line, `"`, ""))
	if root == "" {
		return "", fmt.Errorf("no root directory given")
	}
	return root, nil
}

// loadConfig returns the file-backed configuration when --config was given,
// defaults otherwise.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
