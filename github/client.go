package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v61/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"oss-activity/apperr"
)

const (
	userAgent = "oss-activity"
	perPage   = 100
	// ItemLimit caps issue and pull request listings per repository.
	ItemLimit = 1000
)

// Client handles repository host operations through the GitHub REST API
type Client struct {
	api      *gh.Client
	token    string
	policy   Policy
	log      *zap.Logger
	comments map[string]map[int][]Comment
}

// NewClient creates a GitHub client authenticated with token.
func NewClient(ctx context.Context, token string, log *zap.Logger) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	api := gh.NewClient(httpClient)
	api.UserAgent = userAgent
	return newClient(api, token, log)
}

func newClient(api *gh.Client, token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		api:      api,
		token:    token,
		policy:   DefaultPolicy(),
		log:      log,
		comments: make(map[string]map[int][]Comment),
	}
}

// SetPolicy replaces the rate-limit and retry policy.
func (c *Client) SetPolicy(p Policy) { c.policy = p }

// Token returns the token the client authenticates with.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.token == "" {
		return "", apperr.ErrMissingToken
	}
	return c.token, nil
}

// ListOrgRepos returns "org/name" for every public repository of org.
func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]string, error) {
	opt := &gh.RepositoryListByOrgOptions{Type: "public", ListOptions: gh.ListOptions{PerPage: perPage}}
	var repos []string
	for {
		page, resp, err := c.api.Repositories.ListByOrg(ctx, org, opt)
		if err != nil {
			if c.policy.waitIfRateLimited(resp) {
				continue
			}
			return nil, fmt.Errorf("error listing repositories of %s: %w", org, err)
		}
		for _, r := range page {
			name := r.GetFullName()
			if name == "" {
				name = org + "/" + r.GetName()
			}
			repos = append(repos, name)
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
		c.policy.sleepJitter()
	}
	return repos, nil
}

// ListCommits retrieves commits whose author date is at or after since
func (c *Client) ListCommits(ctx context.Context, repo string, since time.Time) ([]Commit, error) {
	owner, name, err := splitFull(repo)
	if err != nil {
		return nil, err
	}

	opt := &gh.CommitsListOptions{Since: since, ListOptions: gh.ListOptions{PerPage: perPage}}
	var commits []Commit
	for {
		page, resp, err := c.api.Repositories.ListCommits(ctx, owner, name, opt)
		if err != nil {
			if c.policy.waitIfRateLimited(resp) {
				continue
			}
			return nil, fmt.Errorf("error fetching commits of %s: %w", repo, err)
		}
		for _, rc := range page {
			author := rc.GetCommit().GetAuthor()
			date := author.GetDate().Time
			// the API filters on committer date; the window is on author date
			if !date.IsZero() && date.Before(since) {
				continue
			}
			commits = append(commits, Commit{
				SHA:     rc.GetSHA(),
				Author:  author.GetName(),
				Email:   author.GetEmail(),
				Date:    formatTime(date),
				Message: rc.GetCommit().GetMessage(),
				URL:     rc.GetHTMLURL(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
		c.policy.sleepJitter()
	}
	return commits, nil
}

// ListIssues retrieves every issue of repo (pull requests excluded), up to
// ItemLimit.
func (c *Client) ListIssues(ctx context.Context, repo string) ([]Item, error) {
	owner, name, err := splitFull(repo)
	if err != nil {
		return nil, err
	}

	opt := &gh.IssueListByRepoOptions{State: "all", ListOptions: gh.ListOptions{PerPage: perPage}}
	var items []Item
	for len(items) < ItemLimit {
		page, resp, err := c.api.Issues.ListByRepo(ctx, owner, name, opt)
		if err != nil {
			if c.policy.waitIfRateLimited(resp) {
				continue
			}
			return nil, fmt.Errorf("error fetching issues of %s: %w", repo, err)
		}
		for _, is := range page {
			if is.IsPullRequest() || len(items) >= ItemLimit {
				continue
			}
			items = append(items, issueItem(is))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
		c.policy.sleepJitter()
	}

	if err := c.attachComments(ctx, owner, name, items); err != nil {
		c.log.Warn("issue comments unavailable", zap.String("repo", repo), zap.Error(err))
	}
	return items, nil
}

// ListPullRequests retrieves every pull request of repo, up to ItemLimit.
// Mergeability and diff stats need a per-PR request; when it fails the
// listing data is kept.
func (c *Client) ListPullRequests(ctx context.Context, repo string) ([]Item, error) {
	owner, name, err := splitFull(repo)
	if err != nil {
		return nil, err
	}

	opt := &gh.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var items []Item
	for len(items) < ItemLimit {
		page, resp, err := c.api.PullRequests.List(ctx, owner, name, opt)
		if err != nil {
			if c.policy.waitIfRateLimited(resp) {
				continue
			}
			return nil, fmt.Errorf("error fetching PRs of %s: %w", repo, err)
		}
		for _, pr := range page {
			if len(items) >= ItemLimit {
				break
			}
			full, err := c.getPullRequest(ctx, owner, name, pr.GetNumber())
			if err != nil {
				c.log.Debug("PR details unavailable",
					zap.String("repo", repo), zap.Int("number", pr.GetNumber()), zap.Error(err))
				full = pr
			}
			items = append(items, pullRequestItem(full))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
		c.policy.sleepJitter()
	}

	if err := c.attachComments(ctx, owner, name, items); err != nil {
		c.log.Warn("PR comments unavailable", zap.String("repo", repo), zap.Error(err))
	}
	return items, nil
}

func (c *Client) getPullRequest(ctx context.Context, owner, name string, number int) (*gh.PullRequest, error) {
	attempts := c.policy.RetriesNonRate
	if attempts < 1 {
		attempts = 1
	}
	for {
		pr, resp, err := c.api.PullRequests.Get(ctx, owner, name, number)
		if err == nil {
			return pr, nil
		}
		if c.policy.waitIfRateLimited(resp) {
			continue
		}
		attempts--
		if isSkippableClientError(resp) || attempts <= 0 || ctx.Err() != nil {
			return nil, err
		}
		c.policy.sleepJitter()
	}
}

// attachComments fills Comments for items that have any, using one
// repository-wide listing cached per repository.
func (c *Client) attachComments(ctx context.Context, owner, name string, items []Item) error {
	byNumber, err := c.repoComments(ctx, owner, name)
	if err != nil {
		return err
	}
	for i := range items {
		if cs, ok := byNumber[items[i].Number]; ok {
			items[i].Comments = cs
		}
	}
	return nil
}

func (c *Client) repoComments(ctx context.Context, owner, name string) (map[int][]Comment, error) {
	key := owner + "/" + name
	if cached, ok := c.comments[key]; ok {
		return cached, nil
	}

	opt := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	byNumber := make(map[int][]Comment)
	for {
		page, resp, err := c.api.Issues.ListComments(ctx, owner, name, 0, opt)
		if err != nil {
			if c.policy.waitIfRateLimited(resp) {
				continue
			}
			return nil, err
		}
		for _, ic := range page {
			number, ok := issueNumberFromURL(ic.GetIssueURL())
			if !ok {
				continue
			}
			byNumber[number] = append(byNumber[number], Comment{
				Author:    Actor{Login: ic.GetUser().GetLogin()},
				Body:      ic.GetBody(),
				CreatedAt: formatTime(ic.GetCreatedAt().Time),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
		c.policy.sleepJitter()
	}

	c.comments[key] = byNumber
	return byNumber, nil
}

func issueItem(is *gh.Issue) Item {
	return Item{
		Kind:      KindIssue,
		Number:    is.GetNumber(),
		Title:     is.GetTitle(),
		Body:      is.GetBody(),
		State:     is.GetState(),
		CreatedAt: formatTime(is.GetCreatedAt().Time),
		UpdatedAt: formatTime(is.GetUpdatedAt().Time),
		ClosedAt:  formatTime(is.GetClosedAt().Time),
		Author:    actor(is.GetUser()),
		Assignees: actors(is.Assignees),
		Labels:    labels(is.Labels),
		URL:       is.GetHTMLURL(),
	}
}

func pullRequestItem(pr *gh.PullRequest) Item {
	state := pr.GetState()
	if !pr.GetMergedAt().Time.IsZero() {
		state = "merged"
	}
	return Item{
		Kind:         KindPullRequest,
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		State:        state,
		CreatedAt:    formatTime(pr.GetCreatedAt().Time),
		UpdatedAt:    formatTime(pr.GetUpdatedAt().Time),
		ClosedAt:     formatTime(pr.GetClosedAt().Time),
		Author:       actor(pr.GetUser()),
		Assignees:    actors(pr.Assignees),
		Labels:       labels(pr.Labels),
		URL:          pr.GetHTMLURL(),
		MergedAt:     formatTime(pr.GetMergedAt().Time),
		Mergeable:    mergeable(pr.Mergeable),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
	}
}

// mergeable maps the REST tri-state onto the CLI's vocabulary.
func mergeable(m *bool) string {
	switch {
	case m == nil:
		return "UNKNOWN"
	case *m:
		return "MERGEABLE"
	default:
		return "CONFLICTING"
	}
}

func actor(u *gh.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{Login: u.GetLogin()}
}

func actors(users []*gh.User) []Actor {
	out := []Actor{}
	for _, u := range users {
		if u != nil {
			out = append(out, Actor{Login: u.GetLogin()})
		}
	}
	return out
}

func labels(ls []*gh.Label) []Label {
	out := []Label{}
	for _, l := range ls {
		if l != nil {
			out = append(out, Label{Name: l.GetName()})
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func issueNumberFromURL(u string) (int, bool) {
	i := strings.LastIndex(u, "/")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(u[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitFull(repo string) (string, string, error) {
	owner, name := SplitRepo(repo)
	if owner == "" || name == "" {
		return "", "", fmt.Errorf("repository must be owner/name: %q", repo)
	}
	return owner, name, nil
}
