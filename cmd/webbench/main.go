// Package main provides the CLI entry point for webbench, a tool that
// compares how long browser automation libraries take to load and
// interact with a set of static pages.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weiihann/webbench/config"
	"github.com/weiihann/webbench/driver"
	"github.com/weiihann/webbench/harness"
	"github.com/weiihann/webbench/pages"
	"github.com/weiihann/webbench/report"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "webbench",
		Short: "Compare browser automation libraries on static pages",
		Long: `Webbench loads the same static HTML pages with two browser automation
libraries (Selenium and Playwright by default), times page load plus a little
form interaction, and reports which one was faster.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(
		newRunCmd(logger),
		newGenerateCmd(logger),
		newInstallCmd(logger),
		newPagesCmd(),
	)

	return root
}

type runFlags struct {
	configPath   string
	dir          string
	pages        []string
	drivers      []string
	browser      string
	headless     bool
	webdriverURL string
	chromedriver string
	output       string
	noShow       bool
	outputJSON   bool
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark the configured pages with both drivers",
		Long: `Load every configured page with each driver in turn, print per-page
timings and the winner, then print a summary and save a comparison chart.
Missing pages are skipped and driver failures are reported without stopping
the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadRunConfig(cmd, f)
			if err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), logger, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "",
		"Path to a YAML config file")
	flags.StringVar(&f.dir, "dir", "",
		"Directory containing the pages (default: working directory)")
	flags.StringSliceVar(&f.pages, "pages", nil,
		"Page files to benchmark (default: built-in list)")
	flags.StringSliceVar(&f.drivers, "drivers", nil,
		fmt.Sprintf("Two drivers to compare, from %v", driver.Known()))
	flags.StringVar(&f.browser, "browser", "",
		fmt.Sprintf("Playwright browser engine, one of %v", driver.Browsers))
	flags.BoolVar(&f.headless, "headless", true,
		"Run browsers without a window")
	flags.StringVar(&f.webdriverURL, "webdriver-url", "",
		"Existing WebDriver endpoint for selenium (default: start chromedriver)")
	flags.StringVar(&f.chromedriver, "chromedriver", "",
		"chromedriver binary started by selenium")
	flags.StringVar(&f.output, "output", "",
		"Chart file name, relative to --dir")
	flags.BoolVar(&f.noShow, "no-show", false,
		"Do not open the chart after saving it")
	flags.BoolVar(&f.outputJSON, "json", false,
		"Output results as JSON instead of a summary")

	return cmd
}

// loadRunConfig layers explicitly set flags over the loaded config.
func loadRunConfig(cmd *cobra.Command, f runFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("dir") {
		cfg.BaseDir = f.dir
	}
	if flags.Changed("pages") {
		cfg.Pages = f.pages
	}
	if flags.Changed("drivers") {
		cfg.Drivers = f.drivers
	}
	if flags.Changed("browser") {
		cfg.Browser = f.browser
	}
	if flags.Changed("headless") {
		cfg.Headless = f.headless
	}
	if flags.Changed("webdriver-url") {
		cfg.WebDriverURL = f.webdriverURL
	}
	if flags.Changed("chromedriver") {
		cfg.ChromeDriverPath = f.chromedriver
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("no-show") {
		cfg.ShowChart = !f.noShow
	}
	if flags.Changed("json") {
		cfg.JSON = f.outputJSON
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
) error {
	logger.InfoContext(ctx, "starting benchmark",
		slog.String("dir", cfg.BaseDir),
		slog.Int("pages", len(cfg.Pages)),
		slog.Any("drivers", cfg.Drivers),
		slog.String("browser", cfg.Browser),
	)
	logger.DebugContext(ctx, cfg.String())

	opts := cfg.DriverOptions()
	opts.Logger = logger

	drivers := make([]driver.Driver, 0, len(cfg.Drivers))
	for _, name := range cfg.Drivers {
		d, err := driver.New(name, opts)
		if err != nil {
			return err
		}

		drivers = append(drivers, d)
	}

	// Keep stdout clean for the JSON document.
	var progress io.Writer = os.Stdout
	if cfg.JSON {
		progress = os.Stderr
	}

	runner := harness.NewRunner(drivers, cfg.BaseDir, progress, logger)

	start := time.Now()

	results, err := runner.Run(ctx, uuid.NewString(), cfg.Pages)
	if err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}

	if cfg.JSON {
		if err := report.GenerateJSON(os.Stdout, results); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(os.Stdout, results); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	chartPath := cfg.Output
	if !filepath.IsAbs(chartPath) {
		chartPath = filepath.Join(cfg.BaseDir, chartPath)
	}

	if abs, err := filepath.Abs(chartPath); err == nil {
		chartPath = abs
	}

	// Chart problems never fail a run whose timings are already printed.
	if err := report.SaveChart(chartPath, results); err != nil {
		logger.WarnContext(ctx, "failed to save chart",
			slog.String("path", chartPath),
			slog.String("error", err.Error()),
		)
	} else {
		fmt.Fprintf(progress, "\nGraph saved to: %s\n", chartPath)

		if cfg.ShowChart {
			if err := report.Open(chartPath); err != nil {
				logger.WarnContext(ctx, "failed to open chart",
					slog.String("error", err.Error()),
				)
			}
		}
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.String("run_id", results.ID),
		slog.Duration("wall_time", time.Since(start)),
	)

	return nil
}

func newGenerateCmd(logger *slog.Logger) *cobra.Command {
	var (
		dir       string
		names     []string
		minInputs int
		maxInputs int
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write sample pages with form inputs to benchmark against",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			gen := pages.NewGenerator(pages.GeneratorConfig{
				Names:     names,
				MinInputs: minInputs,
				MaxInputs: maxInputs,
				Seed:      seed,
			})

			summary, err := gen.Generate(dir)
			if err != nil {
				return fmt.Errorf("generate pages: %w", err)
			}

			logger.InfoContext(cmd.Context(), "pages generated",
				slog.String("dir", dir),
				slog.Int64("seed", seed),
				slog.Int("pages", summary.PagesWritten),
				slog.Int("text_inputs", summary.TextInputs),
				slog.Int("email_inputs", summary.EmailInputs),
				slog.Int("other_inputs", summary.OtherInputs),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dir, "dir", ".",
		"Directory to write pages into")
	flags.StringSliceVar(&names, "pages", nil,
		"Page file names (default: built-in list)")
	flags.IntVar(&minInputs, "min-inputs", 1,
		"Minimum inputs per page")
	flags.IntVar(&maxInputs, "max-inputs", 6,
		"Maximum inputs per page")
	flags.Int64Var(&seed, "seed", 0,
		"Random seed (0 = use current time)")

	return cmd
}

func newInstallCmd(logger *slog.Logger) *cobra.Command {
	var (
		browsers []string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download the playwright driver and browser engines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.InfoContext(cmd.Context(), "installing playwright",
				slog.Any("browsers", browsers),
			)

			return driver.Install(browsers, verbose)
		},
	}

	cmd.Flags().StringSliceVar(&browsers, "browsers", []string{"chromium"},
		fmt.Sprintf("Browser engines to install, from %v", driver.Browsers))
	cmd.Flags().BoolVar(&verbose, "progress", false,
		"Show installer output")

	return cmd
}

func newPagesCmd() *cobra.Command {
	var (
		configPath string
		dir        string
	)

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List the configured pages and whether they exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("dir") {
				cfg.BaseDir = dir
			}

			return listPages(cmd.OutOrStdout(), cfg.BaseDir, cfg.Pages)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing the pages")

	return cmd
}

func listPages(w io.Writer, baseDir string, names []string) error {
	for _, name := range names {
		p, err := pages.Resolve(baseDir, name)
		if err != nil {
			return err
		}

		exists, err := p.Exists()
		if err != nil {
			return err
		}

		status := "missing"
		if exists {
			status = "ok"
		}

		fmt.Fprintf(w, "%-8s %s\n", status, p.URL)
	}

	return nil
}
