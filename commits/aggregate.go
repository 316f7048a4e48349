package commits

import (
	"strings"
	"time"

	"oss-activity/github"
)

// UnknownAuthor stands in for commits without an author name.
const UnknownAuthor = "unknown"

// Record is one commit projected onto the aggregation key.
type Record struct {
	Repository string
	Author     string
	Date       string
}

// Aggregate is the number of commits by one author to one repository on
// one calendar day.
type Aggregate struct {
	Repository string `json:"repository"`
	Author     string `json:"author"`
	Date       string `json:"date"`
	Count      int    `json:"count"`
}

type key struct {
	repository, author, date string
}

// AggregateRecords reduces records by (repository, author, date). Output
// order is the order in which each key first appears.
func AggregateRecords(records []Record) []Aggregate {
	index := make(map[key]int)
	out := []Aggregate{}
	for _, r := range records {
		k := key{r.Repository, r.Author, r.Date}
		if i, ok := index[k]; ok {
			out[i].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, Aggregate{
			Repository: r.Repository,
			Author:     r.Author,
			Date:       r.Date,
			Count:      1,
		})
	}
	return out
}

// Project maps a host commit of repo onto a Record. The org prefix is
// stripped from the repository name.
func Project(org, repo string, c github.Commit) Record {
	author := strings.TrimSpace(c.Author)
	if author == "" {
		author = UnknownAuthor
	}
	return Record{
		Repository: strings.TrimPrefix(repo, org+"/"),
		Author:     author,
		Date:       truncateDate(c.Date),
	}
}

// truncateDate returns the calendar date of an ISO 8601 timestamp, or its
// first ten characters when it does not parse.
func truncateDate(ts string) string {
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

// Total returns the sum of counts.
func Total(aggs []Aggregate) int {
	n := 0
	for _, a := range aggs {
		n += a.Count
	}
	return n
}
