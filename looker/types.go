package looker

import "oss-activity/metrics"

// Record sources.
const (
	SourceGitHubActivity = "github_activity"
	SourceDevinUsage     = "devin_usage"
	SourceDevinPR        = "devin_pr"
	SourcePRStatistics   = "pr_statistics"
)

// DataSources lists every source in export order.
var DataSources = []string{SourceGitHubActivity, SourceDevinUsage, SourceDevinPR, SourcePRStatistics}

// ActivityRecord is one issue or pull request from a raw activity snapshot.
type ActivityRecord struct {
	Source        string   `json:"source"`
	Repository    string   `json:"repository"`
	Type          string   `json:"type"`
	Number        int      `json:"number"`
	Title         string   `json:"title"`
	State         string   `json:"state"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	User          string   `json:"user"`
	Labels        []string `json:"labels"`
	CommentsCount int      `json:"comments_count"`
}

// UsageRecord is one agent session from the usage feed.
type UsageRecord struct {
	Source      string  `json:"source"`
	SessionName string  `json:"session_name"`
	CreatedAt   string  `json:"created_at"`
	AcusUsed    float64 `json:"acus_used"`
	Type        string  `json:"type"`
}

// DevinPRRecord is a corpus pull request opened by the agent.
type DevinPRRecord struct {
	Source    string `json:"source"`
	PRNumber  int    `json:"pr_number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
	MergedAt  string `json:"merged_at"`
	Type      string `json:"type"`
}

// PRStatisticsRecord summarizes the PR corpus over the export period.
type PRStatisticsRecord struct {
	Source     string `json:"source"`
	Type       string `json:"type"`
	Repository string `json:"repository"`
	PeriodDays int    `json:"period_days"`
	metrics.PRStatistics
	GeneratedAt string `json:"generated_at"`
}

type Metadata struct {
	GeneratedAt  string   `json:"generated_at"`
	PeriodDays   int      `json:"period_days"`
	DataSources  []string `json:"data_sources"`
	TotalRecords int      `json:"total_records"`
}

type Summary struct {
	GitHubItems    int `json:"github_items"`
	DevinSessions  int `json:"devin_sessions"`
	DevinPRs       int `json:"devin_prs"`
	PRStatsRecords int `json:"pr_stats_records"`
}

// UnifiedExport is the merged record set, one list per source.
type UnifiedExport struct {
	Metadata       Metadata             `json:"metadata"`
	GitHubActivity []ActivityRecord     `json:"github_activity"`
	DevinUsage     []UsageRecord        `json:"devin_usage"`
	DevinPRs       []DevinPRRecord      `json:"devin_pr"`
	PRStatistics   []PRStatisticsRecord `json:"pr_statistics"`
	Summary        Summary              `json:"summary"`
}

// FlatRecord is the fixed spreadsheet row shape shared by every source.
type FlatRecord struct {
	SourceType    string  `json:"source_type"`
	Repository    string  `json:"repository"`
	ItemType      string  `json:"item_type"`
	Title         string  `json:"title"`
	State         string  `json:"state"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	User          string  `json:"user"`
	Labels        string  `json:"labels"`
	CommentsCount int     `json:"comments_count"`
	NumericValue  float64 `json:"numeric_value"`
}

// FlatColumns is the header of the flat projection.
var FlatColumns = []string{
	"source_type", "repository", "item_type", "title", "state",
	"created_at", "updated_at", "user", "labels", "comments_count", "numeric_value",
}
