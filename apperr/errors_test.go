package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCatalogueIdentity(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrMissingToken, cause)

	assert.ErrorIs(t, err, ErrMissingToken)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestKindOf_WrappedWithFmt(t *testing.T) {
	err := fmt.Errorf("collect: %w", ErrNoCommits)
	assert.Equal(t, KindEmpty, KindOf(err))
	assert.True(t, IsEmpty(err))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.False(t, IsEmpty(errors.New("boom")))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(ErrMissingAPIKey))
	assert.Equal(t, 1, ExitCode(ErrNoRepositories))
	assert.Equal(t, 1, ExitCode(Wrap(ErrFetch, errors.New("404"))))
	assert.Equal(t, 1, ExitCode(errors.New("unknown")))
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrNoCommits, ErrNoRepositories)
	assert.NotErrorIs(t, ErrMissingToken, ErrMissingAPIKey)
}
