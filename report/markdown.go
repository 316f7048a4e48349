package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"oss-activity/github"
	"oss-activity/metrics"
	"oss-activity/snapshot"
)

// PreviewRunes is the body length shown before truncation.
const PreviewRunes = 200

// RenderActivity renders the activity report of repo for the period start
// to end. Items are listed by updatedAt, most recent first.
func RenderActivity(items []github.Item, repo, start, end string, users UserMapper) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s GitHub活動レポート (%s ~ %s)\n\n", github.ShortName(repo), start, end)

	if len(items) == 0 {
		b.WriteString("この期間中に活動はありませんでした。\n")
		return b.String()
	}

	m := metrics.CalculateActivityMetrics(items)

	b.WriteString("## 概要\n\n")
	fmt.Fprintf(&b, "- **総アイテム数**: %d\n", m.TotalItems)
	fmt.Fprintf(&b, "- **Issue数**: %d\n", m.Issues)
	fmt.Fprintf(&b, "- **PR数**: %d\n\n", m.PullRequests)

	b.WriteString("### 状態別統計\n\n")
	fmt.Fprintf(&b, "- **オープン**: %d\n", m.Open)
	fmt.Fprintf(&b, "- **クローズ**: %d\n", m.Closed)
	if m.MergedPRs > 0 {
		fmt.Fprintf(&b, "- **マージ済みPR**: %d\n", m.MergedPRs)
	}
	b.WriteString("\n")

	sorted := append([]github.Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt > sorted[j].UpdatedAt
	})

	b.WriteString("## 詳細\n\n")
	for _, it := range sorted {
		writeItem(&b, it, users)
	}

	return b.String()
}

func writeItem(b *strings.Builder, it github.Item, users UserMapper) {
	kind := "Issue"
	if it.IsPullRequest() {
		kind = "PR"
	}
	title := it.Title
	if title == "" {
		title = "タイトルなし"
	}
	state := it.State
	if state == "" {
		state = "unknown"
	}

	fmt.Fprintf(b, "## %s #%d: %s\n\n", kind, it.Number, title)
	fmt.Fprintf(b, "- **状態**: %s\n", state)
	fmt.Fprintf(b, "- **作成者**: %s\n", users.Map(it.AuthorLogin()))
	fmt.Fprintf(b, "- **作成日**: %s\n", isoDate(it.CreatedAt))
	fmt.Fprintf(b, "- **更新日**: %s\n", isoDate(it.UpdatedAt))
	if labels := it.LabelNames(); len(labels) > 0 {
		fmt.Fprintf(b, "- **ラベル**: %s\n", strings.Join(labels, ", "))
	}
	if n := len(it.Comments); n > 0 {
		fmt.Fprintf(b, "- **コメント数**: %d\n", n)
	}
	fmt.Fprintf(b, "- **URL**: %s\n\n", it.URL)

	if it.Body != "" {
		fmt.Fprintf(b, "**概要**:\n%s\n\n", Preview(it.Body))
	}

	if it.IsPullRequest() {
		if it.MergedAt != "" {
			fmt.Fprintf(b, "- **マージ日**: %s\n", isoDate(it.MergedAt))
		}
		if it.Additions != 0 || it.Deletions != 0 || it.ChangedFiles != 0 {
			fmt.Fprintf(b, "- **変更**: +%d -%d (%dファイル)\n", it.Additions, it.Deletions, it.ChangedFiles)
		}
	}

	b.WriteString("\n---\n\n")
}

// Preview truncates body to PreviewRunes characters followed by "...".
func Preview(body string) string {
	if utf8.RuneCountInString(body) <= PreviewRunes {
		return body
	}
	runes := []rune(body)
	return string(runes[:PreviewRunes]) + "..."
}

func isoDate(ts string) string {
	if ts == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Format("2006-01-02")
	}
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

// WriteMarkdown atomically writes a rendered report.
func WriteMarkdown(path, content string) error {
	return snapshot.WriteFile(path, []byte(content))
}
