package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"bookmerge/common"
	"bookmerge/merge"
	"bookmerge/output"
	"bookmerge/state"
)

// Merge merges snapshots at SOURCE and writes result into DESTINATION
// directory.
func Merge(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("merge")

	src, err := sourceArg(cmd, 0, "input source")
	if err != nil {
		return err
	}
	dst, err := destinationArg(cmd, 1)
	if err != nil {
		return err
	}
	warnExtraArgs(cmd, 2, log)

	if to := cmd.String("to"); len(to) > 0 {
		format, err := common.ParseOutputFmt(to)
		if err != nil {
			log.Warn("Unknown output format requested, using configured one", zap.Stringer("format", env.Cfg.Output.Format), zap.Error(err))
		} else {
			env.Cfg.Output.Format = format
		}
	}
	if b := cmd.String("primary"); len(b) > 0 {
		env.Cfg.Merge.PrimaryBook = b
	}
	if b := cmd.String("secondary"); len(b) > 0 {
		env.Cfg.Merge.SecondaryBook = b
	}
	env.Cfg.Merge.Strict = env.Cfg.Merge.Strict || cmd.Bool("strict")
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", env.Cfg.Output.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = process(ctx, env, src, dst, log)
	return err
}

// process handles merge independently of CLI framework and returns path of
// produced output.
func process(ctx context.Context, env *state.LocalEnv, src, dst string, log *zap.Logger) (string, error) {
	source, err := openSource(ctx, env, src)
	if err != nil {
		return "", fmt.Errorf("unable to open snapshots: %w", err)
	}

	doc, err := merge.Run(ctx, source, mergeOptions(&env.Cfg.Merge), log)
	if err != nil {
		return "", fmt.Errorf("unable to merge: %w", err)
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("document.txt", []byte(doc.String()))
		if err := env.Rpt.StoreJSON("diagnostics.json", doc.Diagnostics); err != nil {
			log.Warn("Unable to store diagnostics in report", zap.Error(err))
		}
	}

	out := output.BuildPath(doc, dst, &env.Cfg.Output, log)
	if _, err := os.Stat(out); err == nil {
		if !env.Overwrite {
			return "", fmt.Errorf("output file already exists: %s", out)
		}
		log.Warn("Output file already exists, overwriting", zap.String("file", out))
	}

	if err := output.Save(out, doc, output.NewOptions(&env.Cfg.Output, log), log); err != nil {
		return "", err
	}
	if err := env.Rpt.StoreCopy(filepath.ToSlash(filepath.Join("output", filepath.Base(out))), out); err != nil {
		log.Warn("Unable to store output in report", zap.Error(err))
	}
	log.Info("Output written", zap.String("file", out), zap.Stringer("id", doc.ID()))

	if n := doc.Problems(); n > 0 {
		if env.Cfg.Merge.Strict {
			return out, fmt.Errorf("%d error(s) in input: %w", n, errStrict)
		}
		log.Warn("Input has problems, see diagnostics", zap.Int("errors", n))
	}
	return out, nil
}
