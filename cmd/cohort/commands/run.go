// Package commands implements the cohort CLI's subcommands.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/amedeedaboville/gix-of-theseus/pkg/cohort"
	"github.com/amedeedaboville/gix-of-theseus/pkg/config"
	"github.com/amedeedaboville/gix-of-theseus/pkg/gitlib"
	"github.com/amedeedaboville/gix-of-theseus/pkg/observability"
	"github.com/amedeedaboville/gix-of-theseus/pkg/walk"
)

// runFlags holds the CLI overrides layered on top of config.Load.
type runFlags struct {
	configPath  string
	head        string
	out         string
	languages   []string
	exclude     []string
	whitelist   string
	noVendor    bool
	noVendorSet bool
	sampleDays  int
	workers     int
	metricsAddr string
}

// NewRunCommand builds the `cohort run <repo>` command: the primary entry
// point that drives the History Walker end to end and writes cohorts.json.
func NewRunCommand() *cobra.Command {
	flags := &runFlags{} //nolint:exhaustruct // all fields populated via flag binding below.

	cmd := &cobra.Command{ //nolint:exhaustruct // cobra.Command fields default to zero.
		Use:   "run <repo>",
		Short: "Walk a repository's history and write cohorts.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.noVendorSet = cmd.Flags().Changed("no-vendor")

			return runCohort(args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to .cohort.yaml (default: ./.cohort.yaml)")
	cmd.Flags().StringVar(&flags.head, "head", "", "head ref to walk from (default HEAD)")
	cmd.Flags().StringVar(&flags.out, "out", "", "output path for cohorts.json")
	cmd.Flags().StringSliceVar(&flags.languages, "languages", nil, "restrict tracked files to these enry language names")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "additional path prefixes to exclude")
	cmd.Flags().StringVar(&flags.whitelist, "whitelist", "", "regexp a path must match to be tracked")
	cmd.Flags().BoolVar(&flags.noVendor, "no-vendor", true, "exclude enry-classified vendor paths")
	cmd.Flags().IntVar(&flags.sampleDays, "sample-days", 0, "sampling bucket width in days (default 7)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "worker pool size (default GOMAXPROCS)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "optional address to serve Prometheus /metrics on")

	return cmd
}

func runCohort(repoPath string, flags *runFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	applyFlagOverrides(cfg, repoPath, flags)

	if validateErr := config.Validate(cfg); validateErr != nil {
		return validateErr
	}

	obsCfg := observability.DefaultConfig()
	if levelErr := obsCfg.LogLevel.UnmarshalText([]byte(cfg.Logging.Level)); levelErr != nil {
		return fmt.Errorf("%w: logging level %q: %v", cohort.ErrConfig, cfg.Logging.Level, levelErr)
	}

	obsCfg.LogJSON = cfg.Logging.Format != "text"

	logger := observability.NewLogger(obsCfg)
	log := observability.NewSlogAdapter(logger)

	metrics, err := setupObservability(cfg)
	if err != nil {
		return err
	}

	repo, err := gitlib.OpenRepository(cfg.Repo.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", cohort.ErrConfig, err)
	}
	defer repo.Free()

	predicate, err := walk.NewFilter(walk.FilterOptions{
		SkipVendor:          cfg.Filter.NoVendor,
		BlacklistedPrefixes: append(append([]string{}, walk.DefaultBlacklistedPrefixes...), cfg.Filter.Exclude...),
		WhitelistRegexp:     cfg.Filter.Whitelist,
		Languages:           cfg.Filter.Languages,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", cohort.ErrConfig, err)
	}

	walker := walk.New(walk.NewGitObjectProvider(repo), walk.Options{ //nolint:exhaustruct // zero Predicate/Metrics handled below.
		Head:       cfg.Repo.Head,
		Predicate:  predicate,
		SampleDays: cfg.Sampling.GranularityDays,
		Workers:    cfg.Sampling.Workers,
		Log:        log,
		Metrics:    metrics,
	})

	start := time.Now()

	ctx := context.Background()

	resultTable, runErr := walker.Run(ctx)
	if runErr != nil {
		return runErr
	}

	metrics.WalkDuration.Record(ctx, time.Since(start).Seconds())

	resultTable.Densify(cfg.Sampling.GranularityDays)

	data := resultTable.Build()

	if writeErr := cohort.WriteJSON(cfg.Repo.Out, data); writeErr != nil {
		return writeErr
	}

	printSummary(cfg.Repo.Out, data, time.Since(start))

	return nil
}

// applyFlagOverrides layers explicitly-set CLI flags on top of the loaded
// config; flags take precedence because they are applied last.
func applyFlagOverrides(cfg *config.Config, repoPath string, flags *runFlags) {
	cfg.Repo.Path = repoPath

	if flags.head != "" {
		cfg.Repo.Head = flags.head
	}

	if flags.out != "" {
		cfg.Repo.Out = flags.out
	}

	if len(flags.languages) > 0 {
		cfg.Filter.Languages = flags.languages
	}

	if len(flags.exclude) > 0 {
		cfg.Filter.Exclude = flags.exclude
	}

	if flags.whitelist != "" {
		cfg.Filter.Whitelist = flags.whitelist
	}

	if flags.noVendorSet {
		cfg.Filter.NoVendor = flags.noVendor
	}

	if flags.sampleDays > 0 {
		cfg.Sampling.GranularityDays = flags.sampleDays
	}

	if flags.workers > 0 {
		cfg.Sampling.Workers = flags.workers
	}

	if flags.metricsAddr != "" {
		cfg.Observability.MetricsAddr = flags.metricsAddr
	}
}

// setupObservability builds the OTel/Prometheus provider and walk metrics
// instruments, starting the /metrics HTTP server in the background if an
// address is configured.
func setupObservability(cfg *config.Config) (*observability.WalkMetrics, error) {
	provider, err := observability.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("setup metrics: %w", err)
	}

	metrics, err := observability.NewWalkMetrics(provider.Meter("cohort"))
	if err != nil {
		return nil, fmt.Errorf("setup metrics: %w", err)
	}

	if cfg.Observability.MetricsAddr != "" {
		addr := cfg.Observability.MetricsAddr

		go func() {
			_ = provider.Serve(addr)
		}()
	}

	return metrics, nil
}

func printSummary(outPath string, data cohort.CohortJSON, elapsed time.Duration) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("wrote %s in %s\n", outPath, elapsed.Round(time.Millisecond))

	if len(data.TS) == 0 {
		return
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)

	header := make(table.Row, 0, len(data.Labels)+1)
	header = append(header, "sample")

	for _, label := range data.Labels {
		header = append(header, label)
	}

	tbl.AppendHeader(header)

	last := len(data.TS) - 1

	row := make(table.Row, 0, len(data.YS)+1)
	row = append(row, data.TS[last])

	for _, counts := range data.Data {
		row = append(row, counts[last])
	}

	tbl.AppendRow(row)

	fmt.Println(tbl.Render()) //nolint:forbidigo // intentional CLI output.
}
