package metrics

import (
	"fmt"
	"strings"
	"time"

	"oss-activity/commits"
	"oss-activity/github"
)

// Metric structures
type CommitMetrics struct {
	TotalCommits        int            `json:"total_commits"`
	CommitsPerDay       float64        `json:"commits_per_day"`
	CommitsByAuthor     map[string]int `json:"commits_by_author"`
	CommitsByRepository map[string]int `json:"commits_by_repository"`
	CommitsByWeekday    map[string]int `json:"commits_by_weekday"`
	Contributors        int            `json:"contributors"`
	ActiveDays          int            `json:"active_days"`
	DateRange           string         `json:"date_range"`
}

type ActivityMetrics struct {
	TotalItems        int            `json:"total_items"`
	Issues            int            `json:"issues"`
	PullRequests      int            `json:"pull_requests"`
	Open              int            `json:"open"`
	Closed            int            `json:"closed"`
	MergedPRs         int            `json:"merged_prs"`
	AvgCycleTimeHours float64        `json:"avg_cycle_time_hours"`
	AvgPRSize         float64        `json:"avg_pr_size"`
	ItemsByAuthor     map[string]int `json:"items_by_author"`
}

// PullRequest is one entry of an external PR corpus. A zero CreatedAt
// marks an entry whose creation time could not be read.
type PullRequest struct {
	Number    int
	Title     string
	State     string
	Author    string
	CreatedAt time.Time
	MergedAt  string
}

type PRStatistics struct {
	TotalPRs  int     `json:"total_prs"`
	MergedPRs int     `json:"merged_prs"`
	OpenPRs   int     `json:"open_prs"`
	MergeRate float64 `json:"merge_rate"`
}

// CalculateCommitMetrics computes metrics from aggregated commits
func CalculateCommitMetrics(aggs []commits.Aggregate) CommitMetrics {
	metrics := CommitMetrics{
		CommitsByAuthor:     make(map[string]int),
		CommitsByRepository: make(map[string]int),
		CommitsByWeekday:    make(map[string]int),
	}

	if len(aggs) == 0 {
		return metrics
	}

	activeDaysMap := make(map[string]bool)
	var minDate, maxDate time.Time
	for _, a := range aggs {
		metrics.TotalCommits += a.Count
		metrics.CommitsByAuthor[a.Author] += a.Count
		metrics.CommitsByRepository[a.Repository] += a.Count

		d, err := time.Parse("2006-01-02", a.Date)
		if err != nil {
			continue
		}
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		if maxDate.IsZero() || d.After(maxDate) {
			maxDate = d
		}
		metrics.CommitsByWeekday[d.Weekday().String()] += a.Count
		activeDaysMap[a.Date] = true
	}

	metrics.Contributors = len(metrics.CommitsByAuthor)
	metrics.ActiveDays = len(activeDaysMap)
	if !minDate.IsZero() {
		// both ends of the range count as days
		days := maxDate.Sub(minDate).Hours()/24 + 1
		metrics.CommitsPerDay = float64(metrics.TotalCommits) / days
		metrics.DateRange = fmt.Sprintf("%s to %s", minDate.Format("2006-01-02"), maxDate.Format("2006-01-02"))
	}

	return metrics
}

// CalculateActivityMetrics computes metrics from issues and pull requests.
// States compare case-insensitively.
func CalculateActivityMetrics(items []github.Item) ActivityMetrics {
	metrics := ActivityMetrics{
		ItemsByAuthor: make(map[string]int),
	}

	var totalCycleTime, totalSize float64
	var cycleTimeCount int

	for _, it := range items {
		metrics.TotalItems++
		if login := it.AuthorLogin(); login != "" {
			metrics.ItemsByAuthor[login]++
		}

		switch {
		case strings.EqualFold(it.State, "open"):
			metrics.Open++
		case strings.EqualFold(it.State, "closed"):
			metrics.Closed++
		}

		if !it.IsPullRequest() {
			metrics.Issues++
			continue
		}
		metrics.PullRequests++
		if strings.EqualFold(it.State, "merged") {
			metrics.MergedPRs++
		}
		totalSize += float64(it.Additions + it.Deletions)

		created, err1 := time.Parse(time.RFC3339, it.CreatedAt)
		merged, err2 := time.Parse(time.RFC3339, it.MergedAt)
		if err1 == nil && err2 == nil {
			totalCycleTime += merged.Sub(created).Hours()
			cycleTimeCount++
		}
	}

	if cycleTimeCount > 0 {
		metrics.AvgCycleTimeHours = totalCycleTime / float64(cycleTimeCount)
	}
	if metrics.PullRequests > 0 {
		metrics.AvgPRSize = totalSize / float64(metrics.PullRequests)
	}

	return metrics
}

// CalculatePRStatistics summarizes the corpus entries created within the last
// days before now. Merged means closed with a merge timestamp.
func CalculatePRStatistics(prs []PullRequest, now time.Time, days int) PRStatistics {
	var stats PRStatistics
	cutoff := now.AddDate(0, 0, -days)

	for _, pr := range prs {
		if pr.CreatedAt.IsZero() || pr.CreatedAt.Before(cutoff) {
			continue
		}
		stats.TotalPRs++
		switch {
		case strings.EqualFold(pr.State, "closed") && pr.MergedAt != "":
			stats.MergedPRs++
		case strings.EqualFold(pr.State, "open"):
			stats.OpenPRs++
		}
	}

	if stats.TotalPRs > 0 {
		stats.MergeRate = float64(stats.MergedPRs) / float64(stats.TotalPRs)
	}
	return stats
}
