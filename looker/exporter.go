package looker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"oss-activity/apperr"
	"oss-activity/github"
	"oss-activity/metrics"
	"oss-activity/snapshot"
)

// Export file names under the output root.
const (
	UnifiedFile = "looker_studio_data.json"
	FlatFile    = "looker_studio_data_flat.json"
)

// DefaultStatsRepository is the repository the PR corpus is collected from.
const DefaultStatsRepository = "team-mirai/policy"

// devinPatterns match agent author logins, case-insensitively.
var devinPatterns = []string{"devin-ai-integration[bot]", "devin-ai-integration", "devin"}

// Exporter builds unified exports from a snapshot registry, the usage feed
// and the PR corpus.
type Exporter struct {
	Registry        *snapshot.Registry
	UsageFile       string
	PRDataDir       string
	StatsRepository string
	Now             func() time.Time
	log             *zap.Logger
}

func NewExporter(reg *snapshot.Registry, usageFile, prDataDir string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		Registry:        reg,
		UsageFile:       usageFile,
		PRDataDir:       prDataDir,
		StatsRepository: DefaultStatsRepository,
		Now:             time.Now,
		log:             log,
	}
}

// Unify recomputes the export from scratch. Malformed inputs are skipped.
func (e *Exporter) Unify(ctx context.Context, days int) (UnifiedExport, error) {
	now := e.Now()

	activity, err := e.collectActivity(ctx)
	if err != nil {
		return UnifiedExport{}, err
	}
	usage := e.collectUsage()

	var (
		devinPRs = []DevinPRRecord{}
		stats    = []PRStatisticsRecord{}
	)
	corpus, ok := e.readCorpus(ctx)
	if ok {
		devinPRs = devinRecords(corpus)
		stats = append(stats, PRStatisticsRecord{
			Source:       SourcePRStatistics,
			Type:         "summary",
			Repository:   e.StatsRepository,
			PeriodDays:   days,
			PRStatistics: metrics.CalculatePRStatistics(pullRequests(corpus), now, days),
			GeneratedAt:  now.Format(time.RFC3339),
		})
	}

	total := len(activity) + len(usage) + len(devinPRs) + len(stats)
	return UnifiedExport{
		Metadata: Metadata{
			GeneratedAt:  now.Format(time.RFC3339),
			PeriodDays:   days,
			DataSources:  append([]string(nil), DataSources...),
			TotalRecords: total,
		},
		GitHubActivity: activity,
		DevinUsage:     usage,
		DevinPRs:       devinPRs,
		PRStatistics:   stats,
		Summary: Summary{
			GitHubItems:    len(activity),
			DevinSessions:  len(usage),
			DevinPRs:       len(devinPRs),
			PRStatsRecords: len(stats),
		},
	}, nil
}

func (e *Exporter) collectActivity(ctx context.Context) ([]ActivityRecord, error) {
	records := []ActivityRecord{}
	if e.Registry == nil {
		return records, nil
	}

	for _, entry := range e.Registry.BySource(snapshot.SourceGitHub) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, skipped, err := github.LoadItems(entry.Path)
		if err != nil {
			e.log.Warn("skipping snapshot", zap.String("path", entry.Path), zap.Error(err))
			continue
		}
		if skipped > 0 {
			e.log.Warn("skipped malformed items", zap.String("path", entry.Path), zap.Int("count", skipped))
		}
		for _, it := range items {
			labels := it.LabelNames()
			if labels == nil {
				labels = []string{}
			}
			records = append(records, ActivityRecord{
				Source:        SourceGitHubActivity,
				Repository:    entry.Name,
				Type:          string(it.Kind),
				Number:        it.Number,
				Title:         it.Title,
				State:         it.State,
				CreatedAt:     it.CreatedAt,
				UpdatedAt:     it.UpdatedAt,
				User:          it.AuthorLogin(),
				Labels:        labels,
				CommentsCount: len(it.Comments),
			})
		}
	}
	return records, nil
}

type usageFeed struct {
	Data []struct {
		Session   string  `json:"session"`
		CreatedAt string  `json:"created_at"`
		AcusUsed  float64 `json:"acus_used"`
	} `json:"data"`
}

func (e *Exporter) collectUsage() []UsageRecord {
	records := []UsageRecord{}
	if e.UsageFile == "" {
		return records
	}

	raws, err := snapshot.ReadArray(e.UsageFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			e.log.Warn("skipping usage feed", zap.String("path", e.UsageFile), zap.Error(err))
		}
		return records
	}
	if len(raws) == 0 {
		return records
	}

	var feed usageFeed
	if err := json.Unmarshal(raws[0], &feed); err != nil {
		e.log.Warn("skipping usage feed", zap.String("path", e.UsageFile),
			zap.Error(apperr.Wrap(apperr.ErrParse, err)))
		return records
	}
	for _, s := range feed.Data {
		records = append(records, UsageRecord{
			Source:      SourceDevinUsage,
			SessionName: s.Session,
			CreatedAt:   s.CreatedAt,
			AcusUsed:    s.AcusUsed,
			Type:        "usage",
		})
	}
	return records
}

type corpusFile struct {
	BasicInfo struct {
		Number    int    `json:"number"`
		Title     string `json:"title"`
		State     string `json:"state"`
		CreatedAt string `json:"created_at"`
		MergedAt  string `json:"merged_at"`
		User      struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"basic_info"`
}

type corpusPR struct {
	metrics.PullRequest
	createdText string
}

// readCorpus loads the PR corpus in file name order. ok is false when the
// corpus directory does not exist.
func (e *Exporter) readCorpus(ctx context.Context) ([]corpusPR, bool) {
	if e.PRDataDir == "" {
		return nil, false
	}
	if info, err := os.Stat(e.PRDataDir); err != nil || !info.IsDir() {
		return nil, false
	}

	files, err := filepath.Glob(filepath.Join(e.PRDataDir, "*.json"))
	if err != nil {
		return nil, true
	}
	sort.Strings(files)

	var prs []corpusPR
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		raws, err := snapshot.ReadArray(f)
		if err != nil {
			e.log.Debug("skipping PR file", zap.String("path", f), zap.Error(err))
			continue
		}
		if len(raws) == 0 {
			continue
		}
		var cf corpusFile
		if err := json.Unmarshal(raws[0], &cf); err != nil {
			e.log.Debug("skipping PR file", zap.String("path", f), zap.Error(apperr.Wrap(apperr.ErrParse, err)))
			continue
		}
		bi := cf.BasicInfo
		created, _ := time.Parse(time.RFC3339, bi.CreatedAt)
		prs = append(prs, corpusPR{
			PullRequest: metrics.PullRequest{
				Number:    bi.Number,
				Title:     bi.Title,
				State:     bi.State,
				Author:    bi.User.Login,
				CreatedAt: created,
				MergedAt:  bi.MergedAt,
			},
			createdText: bi.CreatedAt,
		})
	}
	return prs, true
}

func pullRequests(corpus []corpusPR) []metrics.PullRequest {
	out := make([]metrics.PullRequest, len(corpus))
	for i, c := range corpus {
		out[i] = c.PullRequest
	}
	return out
}

// IsDevinLogin reports whether login belongs to the coding agent.
func IsDevinLogin(login string) bool {
	lower := strings.ToLower(login)
	for _, p := range devinPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func devinRecords(corpus []corpusPR) []DevinPRRecord {
	records := []DevinPRRecord{}
	for _, c := range corpus {
		if !IsDevinLogin(c.Author) {
			continue
		}
		records = append(records, DevinPRRecord{
			Source:    SourceDevinPR,
			PRNumber:  c.Number,
			Title:     c.Title,
			State:     c.State,
			CreatedAt: c.createdText,
			MergedAt:  c.MergedAt,
			Type:      "devin_pr",
		})
	}
	return records
}

// WriteUnified writes the nested export.
func WriteUnified(path string, u UnifiedExport) error {
	return snapshot.WriteJSON(path, u)
}

// WriteFlat writes the flat projection.
func WriteFlat(path string, records []FlatRecord) error {
	if records == nil {
		records = []FlatRecord{}
	}
	return snapshot.WriteJSON(path, records)
}
