package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"oss-activity/looker"
	"oss-activity/metrics"
	"oss-activity/snapshot"
)

// ExportToJSON saves v to a JSON file
func ExportToJSON(v interface{}, filename string) error {
	return snapshot.WriteJSON(filename, v)
}

// ExportToCSV saves flat export rows to a CSV file. The file is replaced
// atomically, so a failed export leaves any previous file intact.
func ExportToCSV(records []looker.FlatRecord, filename string) error {
	var buf bytes.Buffer
	if err := WriteFlatCSV(&buf, records); err != nil {
		return err
	}
	return snapshot.WriteFile(filename, buf.Bytes())
}

// WriteFlatCSV writes a header row followed by one row per record.
func WriteFlatCSV(w io.Writer, records []looker.FlatRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(looker.FlatColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(r.Row()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// PrintCommitSummary displays a formatted commit summary to the console
func PrintCommitSummary(m metrics.CommitMetrics) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("COMMIT ACTIVITY REPORT")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("Total Commits: %d\n", m.TotalCommits)
	fmt.Printf("Contributors: %d\n", m.Contributors)
	fmt.Printf("Commits Per Day: %.2f\n", m.CommitsPerDay)
	fmt.Printf("Active Days: %d\n", m.ActiveDays)
	fmt.Printf("Date Range: %s\n", m.DateRange)

	printCounts("Commits by Repository:", m.CommitsByRepository)
	printCounts("Commits by Author:", m.CommitsByAuthor)

	fmt.Println("\n" + strings.Repeat("=", 60))
}

// PrintActivitySummary displays issue and pull request counts of one repository
func PrintActivitySummary(repo string, m metrics.ActivityMetrics) {
	fmt.Println("\n" + strings.Repeat("-", 60))
	fmt.Printf("%s\n", repo)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Issues: %d | PRs: %d (Merged: %d)\n", m.Issues, m.PullRequests, m.MergedPRs)
	fmt.Printf("Open: %d | Closed: %d\n", m.Open, m.Closed)
	fmt.Printf("Avg Cycle Time: %.2f hours\n", m.AvgCycleTimeHours)
	fmt.Printf("Avg PR Size: %.0f lines\n", m.AvgPRSize)
}

// PrintExportSummary displays per-source record counts of a unified export
func PrintExportSummary(u looker.UnifiedExport) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("UNIFIED EXPORT")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("GitHub items: %d\n", u.Summary.GitHubItems)
	fmt.Printf("Devin sessions: %d\n", u.Summary.DevinSessions)
	fmt.Printf("Devin PRs: %d\n", u.Summary.DevinPRs)
	fmt.Printf("PR statistics records: %d\n", u.Summary.PRStatsRecords)
	fmt.Printf("Total records: %d\n", u.Metadata.TotalRecords)
}

func printCounts(title string, counts map[string]int) {
	fmt.Println("\n" + title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  - %s: %d commits\n", k, counts[k])
	}
}
