package github

import (
	"encoding/json"
	"strings"
)

// types.go - Data structures for GitHub integration

// Commit represents a git commit as returned for a collection window
type Commit struct {
	SHA     string `json:"sha"`
	Author  string `json:"author"`
	Email   string `json:"email"`
	Date    string `json:"date"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// ItemKind tags an activity item as an issue or a pull request.
type ItemKind string

const (
	KindIssue       ItemKind = "issue"
	KindPullRequest ItemKind = "pull_request"
)

// Actor is a GitHub account reference.
type Actor struct {
	Login string `json:"login"`
}

// Label is an issue or pull request label.
type Label struct {
	Name string `json:"name"`
}

// Comment is a conversation comment on an issue or pull request.
type Comment struct {
	Author    Actor  `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// Item is an issue or pull request. Kind is decided once when the item is
// built or decoded and never re-derived downstream. Timestamps keep the
// host's ISO 8601 text form.
type Item struct {
	Kind      ItemKind
	Number    int
	Title     string
	Body      string
	State     string
	CreatedAt string
	UpdatedAt string
	ClosedAt  string
	Author    *Actor
	Assignees []Actor
	Labels    []Label
	Comments  []Comment
	URL       string

	// pull request only
	MergedAt     string
	Mergeable    string
	Additions    int
	Deletions    int
	ChangedFiles int
}

// IsPullRequest reports whether the item is a pull request.
func (it Item) IsPullRequest() bool {
	return it.Kind == KindPullRequest
}

// AuthorLogin returns the author's login, or "" when the author is unknown.
func (it Item) AuthorLogin() string {
	if it.Author == nil {
		return ""
	}
	return it.Author.Login
}

// LabelNames returns the non-empty label names in order.
func (it Item) LabelNames() []string {
	var names []string
	for _, l := range it.Labels {
		if l.Name != "" {
			names = append(names, l.Name)
		}
	}
	return names
}

// issueJSON is the on-disk shape shared by issues and pull requests.
type issueJSON struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
	ClosedAt  string    `json:"closedAt"`
	Author    *Actor    `json:"author"`
	Assignees []Actor   `json:"assignees"`
	Labels    []Label   `json:"labels"`
	Comments  []Comment `json:"comments"`
	URL       string    `json:"url"`
}

type pullRequestJSON struct {
	issueJSON
	MergedAt     string `json:"mergedAt"`
	Mergeable    string `json:"mergeable"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	ChangedFiles int    `json:"changedFiles"`
}

// pullRequestKeys are the keys only pull requests carry. Their presence is
// the single classification rule for untagged JSON.
var pullRequestKeys = []string{"mergeable", "mergedAt", "additions"}

// Classify applies the pull request rule to the keys of a JSON object.
func Classify(keys map[string]json.RawMessage) ItemKind {
	for _, k := range pullRequestKeys {
		if _, ok := keys[k]; ok {
			return KindPullRequest
		}
	}
	return KindIssue
}

// MarshalJSON writes the host's shape; pull request keys appear only on
// pull requests.
func (it Item) MarshalJSON() ([]byte, error) {
	base := issueJSON{
		Number:    it.Number,
		Title:     it.Title,
		Body:      it.Body,
		State:     it.State,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
		ClosedAt:  it.ClosedAt,
		Author:    it.Author,
		Assignees: nonNil(it.Assignees),
		Labels:    nonNilLabels(it.Labels),
		Comments:  nonNilComments(it.Comments),
		URL:       it.URL,
	}
	if !it.IsPullRequest() {
		return json.Marshal(base)
	}
	return json.Marshal(pullRequestJSON{
		issueJSON:    base,
		MergedAt:     it.MergedAt,
		Mergeable:    it.Mergeable,
		Additions:    it.Additions,
		Deletions:    it.Deletions,
		ChangedFiles: it.ChangedFiles,
	})
}

// UnmarshalJSON decodes either shape and tags the item via Classify.
func (it *Item) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	var raw pullRequestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*it = Item{
		Kind:         Classify(keys),
		Number:       raw.Number,
		Title:        raw.Title,
		Body:         raw.Body,
		State:        raw.State,
		CreatedAt:    raw.CreatedAt,
		UpdatedAt:    raw.UpdatedAt,
		ClosedAt:     raw.ClosedAt,
		Author:       raw.Author,
		Assignees:    raw.Assignees,
		Labels:       raw.Labels,
		Comments:     raw.Comments,
		URL:          raw.URL,
		MergedAt:     raw.MergedAt,
		Mergeable:    raw.Mergeable,
		Additions:    raw.Additions,
		Deletions:    raw.Deletions,
		ChangedFiles: raw.ChangedFiles,
	}
	return nil
}

func nonNil(a []Actor) []Actor {
	if a == nil {
		return []Actor{}
	}
	return a
}

func nonNilLabels(l []Label) []Label {
	if l == nil {
		return []Label{}
	}
	return l
}

func nonNilComments(c []Comment) []Comment {
	if c == nil {
		return []Comment{}
	}
	return c
}

// SplitRepo splits "owner/name". A bare name yields an empty owner.
func SplitRepo(repo string) (owner, name string) {
	if i := strings.Index(repo, "/"); i >= 0 {
		return repo[:i], repo[i+1:]
	}
	return "", repo
}

// ShortName returns the repository name without its owner.
func ShortName(repo string) string {
	_, name := SplitRepo(repo)
	return name
}

// RepoFromURL extracts "owner/repo" from a github.com URL such as
// https://github.com/owner/repo/issues/1.
func RepoFromURL(u string) (string, bool) {
	if !strings.Contains(u, "github.com") {
		return "", false
	}
	parts := strings.Split(u, "/")
	if len(parts) < 5 {
		return "", false
	}
	return parts[3] + "/" + parts[4], true
}
