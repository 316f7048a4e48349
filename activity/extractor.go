package activity

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"oss-activity/apperr"
	"oss-activity/github"
	"oss-activity/metrics"
	"oss-activity/report"
	"oss-activity/snapshot"
)

// Host is the part of the repository host the extractor needs.
type Host interface {
	Token(ctx context.Context) (string, error)
	ListIssues(ctx context.Context, repo string) ([]github.Item, error)
	ListPullRequests(ctx context.Context, repo string) ([]github.Item, error)
}

type Counts struct {
	Issues int `json:"issues"`
	PRs    int `json:"prs"`
	Total  int `json:"total"`
}

// RunSummary is the audit record written next to a raw activity snapshot.
type RunSummary struct {
	Repo   string          `json:"repo"`
	Period snapshot.Period `json:"period"`
	Counts Counts          `json:"counts"`
	File   string          `json:"file"`
	RunID  string          `json:"run_id"`
}

// Extractor fetches issues and pull requests and writes raw snapshots.
type Extractor struct {
	host  Host
	log   *zap.Logger
	root  string
	users report.UserMapper
	Now   func() time.Time
}

func NewExtractor(host Host, log *zap.Logger, root string, users report.UserMapper) *Extractor {
	return &Extractor{
		host:  host,
		log:   log,
		root:  root,
		users: users,
		Now:   time.Now,
	}
}

// Extract lists every issue and, when includePRs is set, every pull request
// of repo, then writes {repo}.json and {repo}_summary.json for the window of
// the last days. Listing is not bounded by the window.
func (e *Extractor) Extract(ctx context.Context, repo string, days int, includePRs bool, loc *time.Location) (RunSummary, string, error) {
	if _, err := e.host.Token(ctx); err != nil {
		return RunSummary{}, "", err
	}
	owner, name := github.SplitRepo(repo)
	if owner == "" || name == "" {
		return RunSummary{}, "", apperr.New(apperr.KindConfig, "repository must be owner/name: %q", repo)
	}

	window := snapshot.TrailingWindow(e.Now(), days, loc)
	layout := snapshot.NewLayout(e.root, window)

	fmt.Printf("Fetching issues of %s...\n", repo)
	issues, err := e.host.ListIssues(ctx, repo)
	if err != nil {
		e.log.Error("fetching issues failed", zap.String("repo", repo), zap.Error(apperr.Wrap(apperr.ErrFetch, err)))
		issues = nil
	}

	var prs []github.Item
	if includePRs {
		fmt.Printf("Fetching PRs of %s...\n", repo)
		prs, err = e.host.ListPullRequests(ctx, repo)
		if err != nil {
			e.log.Error("fetching PRs failed", zap.String("repo", repo), zap.Error(apperr.Wrap(apperr.ErrFetch, err)))
			prs = nil
		}
	}

	all := make([]github.Item, 0, len(issues)+len(prs))
	all = append(all, issues...)
	all = append(all, prs...)

	dir, err := layout.EnsureRaw(snapshot.SourceGitHub)
	if err != nil {
		return RunSummary{}, "", err
	}
	path := filepath.Join(dir, snapshot.RepoFile(name))
	if err := snapshot.WriteJSON(path, all); err != nil {
		return RunSummary{}, "", fmt.Errorf("error writing snapshot: %w", err)
	}
	fmt.Printf("Saved %d issues and %d PRs to %s\n", len(issues), len(prs), path)

	summary := RunSummary{
		Repo:   repo,
		Period: window.Period(),
		Counts: Counts{Issues: len(issues), PRs: len(prs), Total: len(all)},
		File:   path,
		RunID:  uuid.NewString(),
	}
	if err := snapshot.WriteJSON(filepath.Join(dir, snapshot.RepoSummaryFile(name)), []RunSummary{summary}); err != nil {
		return RunSummary{}, "", fmt.Errorf("error writing summary: %w", err)
	}

	e.log.Info("activity extracted",
		zap.String("repo", repo),
		zap.Int("issues", len(issues)),
		zap.Int("prs", len(prs)))

	return summary, path, nil
}

// Options configures ExtractAll.
type Options struct {
	Repos      []string // owner/name, or bare names qualified by Org
	Org        string
	Days       int
	IncludePRs bool
	Markdown   bool
	Output     string // Markdown file name; suffixed per repository when several are given
	Location   *time.Location
}

// ResolveRepos qualifies bare repository names with org.
func ResolveRepos(repos []string, org string) ([]string, error) {
	var out []string
	for _, r := range repos {
		r = strings.TrimSpace(r)
		switch {
		case r == "":
			continue
		case strings.Contains(r, "/"):
			out = append(out, r)
		case org != "":
			out = append(out, org+"/"+r)
		default:
			return nil, apperr.New(apperr.KindConfig, "repository %q has no owner; use --org or owner/name", r)
		}
	}
	if len(out) == 0 {
		return nil, apperr.ErrNoRepositories
	}
	return out, nil
}

// ExtractAll runs Extract for every repository and optionally renders the
// Markdown reports, plus a combined report when there are several
// repositories.
func (e *Extractor) ExtractAll(ctx context.Context, opts Options) ([]RunSummary, error) {
	repos, err := ResolveRepos(opts.Repos, opts.Org)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Repositories: %s\n", strings.Join(repos, ", "))

	window := snapshot.TrailingWindow(e.Now(), opts.Days, opts.Location)
	layout := snapshot.NewLayout(e.root, window)

	var (
		summaries []RunSummary
		allItems  []github.Item
	)
	for _, repo := range repos {
		summary, path, err := e.Extract(ctx, repo, opts.Days, opts.IncludePRs, opts.Location)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindConfig {
				return summaries, err
			}
			e.log.Error("extraction failed", zap.String("repo", repo), zap.Error(err))
			continue
		}
		summaries = append(summaries, summary)

		items, skipped, err := github.LoadItems(path)
		if err != nil {
			e.log.Warn("reading snapshot failed", zap.String("path", path), zap.Error(err))
			continue
		}
		if skipped > 0 {
			e.log.Warn("skipped malformed items", zap.String("path", path), zap.Int("count", skipped))
		}
		report.PrintActivitySummary(repo, metrics.CalculateActivityMetrics(items))

		if !opts.Markdown {
			continue
		}
		allItems = append(allItems, items...)

		out, err := e.reportPath(layout, repo, opts.Output, len(repos) > 1)
		if err != nil {
			return summaries, err
		}
		content := report.RenderActivity(items, repo, summary.Period.Start, summary.Period.End, e.users)
		if err := report.WriteMarkdown(out, content); err != nil {
			return summaries, err
		}
		fmt.Printf("Report saved to %s\n", out)
	}

	if opts.Markdown && len(repos) > 1 && len(allItems) > 0 {
		dir, err := layout.EnsureMarkdown(snapshot.SourceGitHub)
		if err != nil {
			return summaries, err
		}
		names := make([]string, len(repos))
		for i, r := range repos {
			names[i] = github.ShortName(r)
		}
		out := filepath.Join(dir, snapshot.CombinedReportFile)
		content := report.RenderActivity(allItems, strings.Join(names, ", "), window.StartDate(), window.EndDate(), e.users)
		if err := report.WriteMarkdown(out, content); err != nil {
			return summaries, err
		}
		fmt.Printf("Combined report saved to %s\n", out)
	}

	return summaries, nil
}

func (e *Extractor) reportPath(layout snapshot.Layout, repo, output string, several bool) (string, error) {
	name := github.ShortName(repo)
	if output == "" {
		dir, err := layout.EnsureMarkdown(snapshot.SourceGitHub)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, snapshot.ReportFile(name)), nil
	}
	if !several {
		return output, nil
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "-" + name + ext, nil
}
