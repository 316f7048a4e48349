package commits

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
	"oss-activity/snapshot"
)

// Host is the part of the repository host the collector needs.
type Host interface {
	Token(ctx context.Context) (string, error)
	ListOrgRepos(ctx context.Context, org string) ([]string, error)
	ListCommits(ctx context.Context, repo string, since time.Time) ([]github.Commit, error)
}

// Summary is the run summary written next to the aggregates.
type Summary struct {
	TotalCommits      int             `json:"total_commits"`
	AggregatedCommits int             `json:"aggregated_commits"`
	RepositoriesCount int             `json:"repositories_count"`
	Period            snapshot.Period `json:"period"`
	Repositories      []string        `json:"repositories"`
	RunID             string          `json:"run_id"`
}

// Result is the outcome of a collection run.
type Result struct {
	Aggregates []Aggregate
	Path       string
	Summary    Summary
}

// Collector gathers commits for a window and writes the aggregated snapshot.
type Collector struct {
	host Host
	log  *zap.Logger
	org  string
	root string
	Now  func() time.Time
}

func NewCollector(host Host, log *zap.Logger, org, root string) *Collector {
	return &Collector{
		host: host,
		log:  log,
		org:  org,
		root: root,
		Now:  time.Now,
	}
}

// Collect fetches commits of the last days for repos (every public
// repository of the org when repos is nil), aggregates them and writes
// aggregated_commits.json and summary.json under raw/commits.
func (c *Collector) Collect(ctx context.Context, repos []string, days int, loc *time.Location) (Result, error) {
	if _, err := c.host.Token(ctx); err != nil {
		return Result{}, err
	}

	if repos == nil {
		listed, err := c.host.ListOrgRepos(ctx, c.org)
		if err != nil {
			c.log.Error("listing repositories failed", zap.String("org", c.org), zap.Error(err))
		}
		repos = listed
		fmt.Printf("Found %d repositories in %s\n", len(repos), c.org)
	} else {
		repos = c.qualify(repos)
	}
	if len(repos) == 0 {
		return Result{}, apperr.ErrNoRepositories
	}

	window := snapshot.TrailingWindow(c.Now(), days, loc)

	var records []Record
	for _, repo := range repos {
		fetched, err := c.host.ListCommits(ctx, repo, window.Start)
		if err != nil {
			c.log.Error("fetching commits failed", zap.String("repo", repo), zap.Error(apperr.Wrap(apperr.ErrFetch, err)))
			continue
		}
		fmt.Printf("%s: %d commits\n", repo, len(fetched))
		for _, cm := range fetched {
			records = append(records, Project(c.org, repo, cm))
		}
	}
	if len(records) == 0 {
		return Result{}, apperr.ErrNoCommits
	}

	aggs := AggregateRecords(records)
	layout := snapshot.NewLayout(c.root, window)
	dir, err := layout.EnsureRaw(snapshot.SourceCommits)
	if err != nil {
		return Result{}, err
	}

	path := filepath.Join(dir, snapshot.AggregatedCommitsFile)
	if err := snapshot.WriteJSON(path, aggs); err != nil {
		return Result{}, fmt.Errorf("error writing aggregates: %w", err)
	}

	summary := Summary{
		TotalCommits:      len(records),
		AggregatedCommits: len(aggs),
		RepositoriesCount: len(repos),
		Period:            window.Period(),
		Repositories:      repos,
		RunID:             uuid.NewString(),
	}
	if err := snapshot.WriteJSON(filepath.Join(dir, snapshot.CommitSummaryFile), []Summary{summary}); err != nil {
		return Result{}, fmt.Errorf("error writing summary: %w", err)
	}

	c.log.Info("commits aggregated",
		zap.Int("total", Total(aggs)),
		zap.Int("aggregated", len(aggs)),
		zap.String("path", path))

	return Result{Aggregates: aggs, Path: path, Summary: summary}, nil
}

// qualify prefixes bare repository names with the org.
func (c *Collector) qualify(repos []string) []string {
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		r = strings.TrimSpace(r)
		switch {
		case r == "":
			continue
		case strings.Contains(r, "/"):
			out = append(out, r)
		default:
			out = append(out, c.org+"/"+r)
		}
	}
	return out
}

// Load reads an aggregated_commits.json snapshot.
func Load(path string) ([]Aggregate, error) {
	var aggs []Aggregate
	if err := snapshot.ReadJSON(path, &aggs); err != nil {
		return nil, err
	}
	return aggs, nil
}
