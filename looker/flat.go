package looker

import (
	"fmt"
	"strings"
)

// Flatten projects every record of u onto the flat row shape, in source
// order. It filters nothing.
func Flatten(u UnifiedExport) []FlatRecord {
	out := make([]FlatRecord, 0, u.Metadata.TotalRecords)

	for _, r := range u.GitHubActivity {
		out = append(out, FlatRecord{
			SourceType:    r.Source,
			Repository:    r.Repository,
			ItemType:      r.Type,
			Title:         r.Title,
			State:         r.State,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
			User:          r.User,
			Labels:        strings.Join(r.Labels, "|"),
			CommentsCount: r.CommentsCount,
			NumericValue:  float64(r.CommentsCount),
		})
	}

	for _, r := range u.DevinUsage {
		out = append(out, FlatRecord{
			SourceType:   r.Source,
			ItemType:     r.Type,
			Title:        r.SessionName,
			CreatedAt:    r.CreatedAt,
			User:         "devin",
			NumericValue: r.AcusUsed,
		})
	}

	for _, r := range u.DevinPRs {
		out = append(out, FlatRecord{
			SourceType:   r.Source,
			ItemType:     r.Type,
			Title:        fmt.Sprintf("PR #%d", r.PRNumber),
			State:        r.State,
			CreatedAt:    r.CreatedAt,
			User:         "devin",
			NumericValue: float64(r.PRNumber),
		})
	}

	for _, r := range u.PRStatistics {
		out = append(out, FlatRecord{
			SourceType:    r.Source,
			Repository:    r.Repository,
			ItemType:      r.Type,
			Title:         fmt.Sprintf("PR Statistics (%d days)", r.PeriodDays),
			State:         "summary",
			CreatedAt:     r.GeneratedAt,
			User:          "system",
			CommentsCount: r.TotalPRs,
			NumericValue:  r.MergeRate,
		})
	}

	return out
}

// Row returns r as strings in FlatColumns order.
func (r FlatRecord) Row() []string {
	return []string{
		r.SourceType,
		r.Repository,
		r.ItemType,
		r.Title,
		r.State,
		r.CreatedAt,
		r.UpdatedAt,
		r.User,
		r.Labels,
		fmt.Sprint(r.CommentsCount),
		fmt.Sprint(r.NumericValue),
	}
}
