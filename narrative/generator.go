package narrative

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"oss-activity/apperr"
	"oss-activity/github"
	"oss-activity/snapshot"
)

// Options selects the snapshot and shapes the request.
type Options struct {
	Repo        string
	PromptFile  string
	Model       string
	MaxTokens   int
	Temperature float32
	OutputDir   string // defaults to <window>/ai_reports
}

// Generator turns the latest raw activity snapshot of a repository into a
// narrative report.
type Generator struct {
	registry  *snapshot.Registry
	completer Completer
	counter   TokenCounter
	log       *zap.Logger
}

// NewGenerator builds a generator. A nil counter skips the prompt estimate.
func NewGenerator(reg *snapshot.Registry, completer Completer, counter TokenCounter, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{registry: reg, completer: completer, counter: counter, log: log}
}

// BuildPrompt joins the template and the indented snapshot JSON.
func BuildPrompt(template string, snapshotJSON []byte) string {
	return template + "\n\n" + string(snapshotJSON)
}

// Generate writes ai_report-{repo}.md and returns its path. An empty
// completion is an error and writes nothing.
func (g *Generator) Generate(ctx context.Context, opts Options) (string, error) {
	template, err := os.ReadFile(opts.PromptFile)
	if err != nil {
		return "", apperr.New(apperr.KindConfig, "prompt file not readable: %v", err)
	}

	name := github.ShortName(opts.Repo)
	entry, ok := g.registry.Latest(snapshot.SourceGitHub, name)
	if !ok {
		return "", apperr.Wrap(apperr.ErrNoSnapshot, fmt.Errorf("%s", snapshot.RepoFile(name)))
	}
	fmt.Printf("Using snapshot %s\n", entry.Path)

	raws, err := snapshot.ReadArray(entry.Path)
	if err != nil {
		return "", err
	}
	if len(raws) == 0 {
		return "", apperr.Wrap(apperr.ErrEmptySnapshot, fmt.Errorf("%s", entry.Path))
	}
	data, err := snapshot.MarshalIndent(raws)
	if err != nil {
		return "", err
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	prompt := BuildPrompt(string(template), data)
	if g.counter != nil {
		if n, err := g.counter.Count(model, prompt); err == nil {
			fmt.Printf("Estimated prompt tokens: %d\n", n)
		} else {
			g.log.Debug("token estimate unavailable", zap.Error(err))
		}
	}

	fmt.Printf("Calling completion API (model: %s)...\n", model)
	text, usage, err := g.completer.Complete(ctx, prompt, model, opts.MaxTokens, opts.Temperature)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.ErrEmptyResponse
	}

	dir := opts.OutputDir
	if dir == "" {
		// <root>/<label>/raw/github/<file>
		windowDir := filepath.Dir(filepath.Dir(filepath.Dir(entry.Path)))
		if snapshot.IsLabel(entry.Label) {
			dir = snapshot.NewLayout(filepath.Dir(windowDir), entry.Window).AIReportDir()
		} else {
			dir = filepath.Join(windowDir, snapshot.AIReportsDir)
		}
	}
	out := filepath.Join(dir, snapshot.AIReportFile(name))
	if err := snapshot.WriteFile(out, []byte(text)); err != nil {
		return "", err
	}

	fmt.Printf("AI report saved to %s\n", out)
	fmt.Printf("Total tokens: %d\n", usage.TotalTokens)
	fmt.Printf("Prompt tokens: %d\n", usage.PromptTokens)
	fmt.Printf("Completion tokens: %d\n", usage.CompletionTokens)

	g.log.Info("narrative report written",
		zap.String("repo", opts.Repo),
		zap.String("model", usage.Model),
		zap.Int("total_tokens", usage.TotalTokens))

	return out, nil
}
