package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"oss-activity/activity"
	"oss-activity/apperr"
	"oss-activity/commits"
	"oss-activity/config"
	"oss-activity/github"
	"oss-activity/logger"
	"oss-activity/looker"
	"oss-activity/metrics"
	"oss-activity/narrative"
	"oss-activity/report"
	"oss-activity/sheets"
	"oss-activity/snapshot"
)

const usage = `Usage: oss-activity <command> [flags]

Commands:
  commits        Collect per-author daily commit counts and upload them to Google Sheets
  activity       Extract issues and pull requests, optionally as Markdown reports
  export         Build the unified Looker Studio export
  ai-report      Generate a narrative report from the latest activity snapshot
  sample-config  Write a sample .env file

Run 'oss-activity <command> -h' for the flags of a command.`

func main() {
	err := run(context.Background(), os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case apperr.IsEmpty(err):
		fmt.Printf("Nothing to do: %v\n", err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(apperr.ExitCode(err))
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println(usage)
		return apperr.New(apperr.KindConfig, "no command given")
	}

	switch args[0] {
	case "commits":
		return runCommits(ctx, args[1:])
	case "activity":
		return runActivity(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "ai-report":
		return runAIReport(ctx, args[1:])
	case "sample-config", "--sample-config":
		return runSampleConfig(args[1:])
	case "-h", "--help", "help":
		fmt.Println(usage)
		return nil
	}
	fmt.Println(usage)
	return apperr.New(apperr.KindConfig, "unknown command %q", args[0])
}

// common holds the flags every data command understands.
type common struct {
	configFile string
	outputDir  string
	timezone   string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "Path to a .env override file")
	fs.StringVar(&c.outputDir, "output-dir", "", "Output root (default OUTPUT_DIR or ./data)")
	fs.StringVar(&c.timezone, "timezone", "", "Timezone for window boundaries (default TIMEZONE or UTC)")
}

// setup loads configuration, applies flag overrides and builds the logger.
func (c *common) setup() (config.Config, *time.Location, *zap.Logger, error) {
	cfg, err := config.LoadConfig(c.configFile)
	if err != nil {
		return cfg, nil, nil, apperr.New(apperr.KindConfig, "%v", err)
	}
	if c.outputDir != "" {
		cfg.OutputDir = c.outputDir
	}
	if c.timezone != "" {
		cfg.Timezone = c.timezone
	}

	loc, err := cfg.Location()
	if err != nil {
		return cfg, nil, nil, err
	}

	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, loc, log, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return apperr.New(apperr.KindConfig, "%v", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// newHostClient resolves the token and builds the host client. With
// waitRateLimit the client sleeps through every rate-limit reset instead of
// capping each wait.
func newHostClient(ctx context.Context, cfg config.Config, log *zap.Logger, waitRateLimit bool) (*github.Client, error) {
	token, err := github.ResolveToken(ctx, cfg.GitHubToken)
	if err != nil {
		return nil, err
	}
	client := github.NewClient(ctx, token, log)
	if waitRateLimit {
		p := github.DefaultPolicy()
		p.EventualComplete = true
		p.MaxWaitReset = 0
		client.SetPolicy(p)
	}
	return client, nil
}

func runCommits(ctx context.Context, args []string) error {
	var (
		c           common
		repos       string
		days        int
		noUpload    bool
		clearSheet  bool
		worksheet   string
		metricsFile string
		waitRate    bool
	)
	fs := newFlagSet("commits")
	c.register(fs)
	fs.StringVar(&repos, "repos", "", "Comma-separated repository names (default: every public repository of GITHUB_ORG)")
	fs.IntVar(&days, "days", 7, "Number of days to collect")
	fs.BoolVar(&noUpload, "no-upload", false, "Collect only, skip the Google Sheets upload")
	fs.BoolVar(&clearSheet, "clear-sheet", false, "Clear the worksheet before writing")
	fs.StringVar(&worksheet, "worksheet", sheets.DefaultWorksheet, "Worksheet title")
	fs.StringVar(&metricsFile, "metrics-file", "", "Also write the commit metrics as JSON to this file")
	fs.BoolVar(&waitRate, "wait-rate-limit", false, "Wait through rate-limit resets without a cap")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, loc, log, err := c.setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	fmt.Printf("Collecting commits of %s for the last %d days...\n", cfg.GitHubOrg, days)

	client, err := newHostClient(ctx, cfg, log, waitRate)
	if err != nil {
		return err
	}
	collector := commits.NewCollector(client, log, cfg.GitHubOrg, cfg.OutputDir)
	res, err := collector.Collect(ctx, splitList(repos), days, loc)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Aggregated commits saved to %s\n", res.Path)
	m := metrics.CalculateCommitMetrics(res.Aggregates)
	report.PrintCommitSummary(m)
	if metricsFile != "" {
		if err := report.ExportToJSON(m, metricsFile); err != nil {
			return err
		}
		fmt.Printf("✅ Metrics exported to %s\n", metricsFile)
	}

	if noUpload {
		fmt.Println("Skipping Google Sheets upload (--no-upload)")
		return nil
	}

	svc, err := sheets.NewService(ctx, cfg.GoogleCredentialsFile, cfg.GoogleSpreadsheetID)
	if err != nil {
		return err
	}
	ws, err := svc.LookupOrCreate(ctx, worksheet)
	if err != nil {
		return err
	}
	if err := sheets.NewWriter(ws, log).WriteCommits(ctx, res.Aggregates, clearSheet); err != nil {
		return err
	}
	fmt.Printf("✅ Uploaded %d rows to worksheet %q\n", len(res.Aggregates), worksheet)
	return nil
}

func runActivity(ctx context.Context, args []string) error {
	var (
		c        common
		repos    string
		org      string
		lastDays int
		noPRs    bool
		markdown bool
		output   string
		jsonFile string
		waitRate bool
		userMap  string
	)
	fs := newFlagSet("activity")
	c.register(fs)
	fs.StringVar(&repos, "repo", "", "Repository as owner/name, or comma-separated list")
	fs.StringVar(&org, "org", "", "Owner prepended to bare repository names")
	fs.IntVar(&lastDays, "last-days", 7, "Number of days the window covers")
	fs.BoolVar(&noPRs, "no-prs", false, "Skip pull requests")
	fs.BoolVar(&markdown, "markdown", false, "Also write Markdown reports")
	fs.StringVar(&output, "output", "", "Markdown report file name")
	fs.StringVar(&jsonFile, "json-file", "", "Render the Markdown report of an existing snapshot instead of fetching")
	fs.BoolVar(&waitRate, "wait-rate-limit", false, "Wait through rate-limit resets without a cap")
	fs.StringVar(&userMap, "user-map", "", "Extra display names as login=Name, comma-separated")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, loc, log, err := c.setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	users := report.DefaultUserMapper()
	for _, pair := range splitList(userMap) {
		login, name, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(login) == "" {
			return apperr.New(apperr.KindConfig, "invalid --user-map entry %q", pair)
		}
		users = users.WithMapping(strings.TrimSpace(login), strings.TrimSpace(name))
	}

	if jsonFile != "" {
		out, err := report.GenerateFromFile(jsonFile, output, snapshot.NewResolver(loc), users)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Report saved to %s\n", out)
		return nil
	}

	// Bad repository names fail before any token lookup.
	resolved, err := activity.ResolveRepos(splitList(repos), org)
	if err != nil {
		return err
	}

	client, err := newHostClient(ctx, cfg, log, waitRate)
	if err != nil {
		return err
	}
	extractor := activity.NewExtractor(client, log, cfg.OutputDir, users)
	summaries, err := extractor.ExtractAll(ctx, activity.Options{
		Repos:      resolved,
		Days:       lastDays,
		IncludePRs: !noPRs,
		Markdown:   markdown,
		Output:     output,
		Location:   loc,
	})
	if err != nil {
		return err
	}
	for _, s := range summaries {
		fmt.Printf("✅ %s: %d issues, %d PRs -> %s\n", s.Repo, s.Counts.Issues, s.Counts.PRs, s.File)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	var (
		c          common
		days       int
		format     string
		outputFile string
		statsRepo  string
	)
	fs := newFlagSet("export")
	c.register(fs)
	fs.IntVar(&days, "days", 30, "Period for the pull request statistics")
	fs.StringVar(&format, "format", "flat", "Output format: unified, flat or csv")
	fs.StringVar(&outputFile, "output-file", looker.UnifiedFile, "Output file name under the output root")
	fs.StringVar(&statsRepo, "stats-repo", looker.DefaultStatsRepository, "Repository named on the statistics record")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if format != "unified" && format != "flat" && format != "csv" {
		return apperr.New(apperr.KindConfig, "unknown format %q", format)
	}

	cfg, _, log, err := c.setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	reg, err := snapshot.Scan(cfg.OutputDir)
	if err != nil {
		return err
	}
	exporter := looker.NewExporter(reg, cfg.UsageFile, cfg.PRDataDir, log)
	exporter.StatsRepository = statsRepo

	u, err := exporter.Unify(ctx, days)
	if err != nil {
		return err
	}
	report.PrintExportSummary(u)

	paths, err := writeExport(cfg.OutputDir, outputFile, format, u)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("✅ Export saved to %s\n", p)
	}
	return nil
}

// writeExport always writes the unified file; the flat and csv formats add
// a _flat sibling next to it. It returns the written paths.
func writeExport(dir, outputFile, format string, u looker.UnifiedExport) ([]string, error) {
	base := filepath.Join(dir, outputFile)
	if err := looker.WriteUnified(base, u); err != nil {
		return nil, err
	}
	paths := []string{base}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	switch format {
	case "flat":
		flat := stem + "_flat.json"
		if err := looker.WriteFlat(flat, looker.Flatten(u)); err != nil {
			return paths, err
		}
		paths = append(paths, flat)
	case "csv":
		flat := stem + "_flat.csv"
		if err := report.ExportToCSV(looker.Flatten(u), flat); err != nil {
			return paths, err
		}
		paths = append(paths, flat)
	}
	return paths, nil
}

func runAIReport(ctx context.Context, args []string) error {
	var (
		c          common
		repo       string
		promptFile string
		model      string
		maxTokens  int
		aiDir      string
	)
	fs := newFlagSet("ai-report")
	fs.StringVar(&c.configFile, "config", "", "Path to a .env override file")
	fs.StringVar(&c.outputDir, "data-dir", "", "Snapshot root (default OUTPUT_DIR or ./data)")
	fs.StringVar(&repo, "repo", "", "Repository as owner/name")
	fs.StringVar(&promptFile, "prompt-file", "", "Prompt template file")
	fs.StringVar(&model, "model", narrative.DefaultModel, "Completion model")
	fs.IntVar(&maxTokens, "max-tokens", 0, "Completion token limit (0 for the API default)")
	fs.StringVar(&aiDir, "output-dir", "", "Directory for the report (default <window>/ai_reports)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if repo == "" || promptFile == "" {
		return apperr.New(apperr.KindConfig, "--repo and --prompt-file are required")
	}

	cfg, _, log, err := c.setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	completer, err := narrative.NewOpenAICompleter(cfg.OpenAIAPIKey)
	if err != nil {
		return err
	}
	reg, err := snapshot.Scan(cfg.OutputDir)
	if err != nil {
		return err
	}

	gen := narrative.NewGenerator(reg, completer, narrative.TiktokenCounter{}, log)
	_, err = gen.Generate(ctx, narrative.Options{
		Repo:        repo,
		PromptFile:  promptFile,
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: narrative.DefaultTemperature,
		OutputDir:   aiDir,
	})
	return err
}

func runSampleConfig(args []string) error {
	var path string
	fs := newFlagSet("sample-config")
	fs.StringVar(&path, "path", ".env.sample", "Where to write the sample")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := config.CreateSampleConfig(path); err != nil {
		return fmt.Errorf("error creating sample config: %w", err)
	}
	fmt.Printf("✅ Sample configuration file created: %s\n", path)
	fmt.Println("\nEdit this file with your credentials and rename it to .env")
	return nil
}
