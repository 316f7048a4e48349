package report

import (
	"fmt"
	"path/filepath"

	"oss-activity/apperr"
	"oss-activity/github"
	"oss-activity/snapshot"
)

// UnknownRepo names reports whose snapshot carries no repository URL.
const UnknownRepo = "unknown-repo"

// GenerateFromFile renders the Markdown report of an existing raw snapshot.
// The repository comes from the first item URL and the window from the
// snapshot path. When output is empty the report goes to the resolved
// markdown/github directory. It returns the written path.
func GenerateFromFile(jsonFile, output string, resolver snapshot.Resolver, users UserMapper) (string, error) {
	items, _, err := github.LoadItems(jsonFile)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", apperr.Wrap(apperr.ErrEmptySnapshot, fmt.Errorf("%s", jsonFile))
	}

	repo := UnknownRepo
	if r, ok := github.RepoFromURL(items[0].URL); ok {
		repo = r
	}

	res := resolver.Resolve(jsonFile)
	window := res.Layout.Window

	if output == "" {
		dir, err := res.Layout.EnsureMarkdown(snapshot.SourceGitHub)
		if err != nil {
			return "", err
		}
		output = filepath.Join(dir, snapshot.ReportFile(github.ShortName(repo)))
	}

	content := RenderActivity(items, repo, window.StartDate(), window.EndDate(), users)
	if err := WriteMarkdown(output, content); err != nil {
		return "", err
	}
	return output, nil
}
