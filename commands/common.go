// Package commands implements program subcommands on top of the merge
// engine, output writers and batch tagging.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"bookmerge/config"
	"bookmerge/merge"
	"bookmerge/model"
	"bookmerge/ranker"
	"bookmerge/resolve"
	"bookmerge/snapshot"
	"bookmerge/state"
)

// mergeOptions translates configuration into engine policy.
func mergeOptions(cfg *config.MergeConfig) merge.Options {
	return merge.Options{
		Primary:   model.BookID(cfg.PrimaryBook),
		Secondary: model.BookID(cfg.SecondaryBook),
		Resolve: resolve.Options{
			IgnoreInsertionPoints: cfg.Fallback.IgnoreInsertionPoints,
		},
		Rank: ranker.Options{
			Order:         cfg.Fallback.Order,
			MinConfidence: cfg.Fallback.MinConfidence,
			UseMonth:      cfg.Fallback.UseMonth,
		},
		CheckCoverage: cfg.CheckCoverage,
	}
}

// sourceArg returns absolute path from positional argument.
func sourceArg(cmd *cli.Command, n int, what string) (string, error) {
	arg := cmd.Args().Get(n)
	if len(arg) == 0 {
		return "", fmt.Errorf("no %s has been specified", what)
	}
	return filepath.Abs(arg)
}

// destinationArg returns absolute directory from positional argument or
// working directory when argument is absent.
func destinationArg(cmd *cli.Command, n int) (dst string, err error) {
	dst = cmd.Args().Get(n)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	return filepath.Abs(dst)
}

func warnExtraArgs(cmd *cli.Command, expected int, log *zap.Logger) {
	if cmd.Args().Len() > expected {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[expected:]))
	}
}

// openSource reads snapshots and puts copies of them into debug report.
func openSource(ctx context.Context, env *state.LocalEnv, path string) (*snapshot.FileSource, error) {
	files := env.Cfg.Merge.Snapshots
	src, err := snapshot.Open(ctx, path, files)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{files.Tags, files.Paragraphs, files.InsertionPoints} {
		if data := src.Raw(name); data != nil {
			env.Rpt.StoreData(filepath.ToSlash(filepath.Join("input", name)), data)
		}
	}
	return src, nil
}

// readTagFile reads tag snapshot either from a JSON file or from a snapshot
// location.
func readTagFile(ctx context.Context, env *state.LocalEnv, path string) (*snapshot.TagFile, error) {
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() && filepath.Ext(path) == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read tag snapshot: %w", err)
		}
		var f snapshot.TagFile
		if err := snapshot.Unmarshal(filepath.Base(path), data, &f); err != nil {
			return nil, err
		}
		return &f, nil
	}
	src, err := snapshot.Open(ctx, path, env.Cfg.Merge.Snapshots)
	if err != nil {
		return nil, err
	}
	return src.Tags(ctx)
}

// errStrict is returned when strict mode is on and input had problems.
var errStrict = errors.New("input has problems (strict mode)")
