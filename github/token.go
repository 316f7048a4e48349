package github

import (
	"context"
	"os/exec"
	"strings"

	"oss-activity/apperr"
)

// ghCommand is the CLI asked for a token when none is configured.
var ghCommand = []string{"gh", "auth", "token"}

// ResolveToken returns configured when set, otherwise the token of an
// authenticated gh CLI session.
func ResolveToken(ctx context.Context, configured string) (string, error) {
	if t := strings.TrimSpace(configured); t != "" {
		return t, nil
	}
	out, err := exec.CommandContext(ctx, ghCommand[0], ghCommand[1:]...).Output()
	if err != nil {
		return "", apperr.Wrap(apperr.ErrMissingToken, err)
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", apperr.ErrMissingToken
	}
	return token, nil
}
