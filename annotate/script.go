// Package annotate drives external tagging of snapshot pages: every page
// without tags is sent to an annotator and produced line tags are collected
// into a new tag snapshot.
package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"bookmerge/config"
	"bookmerge/snapshot"
)

// APIKeyEnv is environment variable annotator receives API key in.
const APIKeyEnv = "BOOKMERGE_API_KEY"

// Annotator produces line tags for a single page.
type Annotator interface {
	Annotate(ctx context.Context, page *snapshot.PageRecord) ([]json.RawMessage, error)
}

// ScriptAnnotator runs external command for every page. Page record is
// written to command stdin as JSON, command prints either a list of line
// tags or a page record with line_tags to stdout.
type ScriptAnnotator struct {
	command []string
	apiKey  config.SecretString
	log     *zap.Logger
}

func NewScriptAnnotator(cfg *config.BatchConfig, log *zap.Logger) (*ScriptAnnotator, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("annotator command is not configured (batch.command)")
	}
	return &ScriptAnnotator{command: cfg.Command, apiKey: cfg.APIKey, log: log}, nil
}

func (a *ScriptAnnotator) Annotate(ctx context.Context, page *snapshot.PageRecord) ([]json.RawMessage, error) {
	in, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare page: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.command[0], a.command[1:]...)
	cmd.Stdin = bytes.NewReader(in)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = os.Environ()
	if key := a.apiKey.Reveal(); key != "" {
		cmd.Env = append(cmd.Env, APIKeyEnv+"="+key)
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("annotator failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("annotator failed: %w", err)
	}
	if stderr.Len() > 0 {
		a.log.Debug("Annotator stderr", zap.Int("page", page.PageNumber), zap.String("output", stderr.String()))
	}
	return parseTags(stdout.Bytes())
}

// parseTags accepts bare list of tags or an object with line_tags.
func parseTags(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("annotator produced no output")
	}

	var tags []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &tags); err != nil {
			return nil, fmt.Errorf("unable to parse annotator output: %w", err)
		}
		return tags, nil
	}

	var rec struct {
		LineTags []json.RawMessage `json:"line_tags"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unable to parse annotator output: %w", err)
	}
	return rec.LineTags, nil
}
