package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"bookmerge/annotate"
	"bookmerge/diag"
	"bookmerge/snapshot"
	"bookmerge/state"
)

// Tag sends untagged pages of SOURCE tag snapshot to the external annotator
// and writes tagged snapshot to DESTINATION. When DESTINATION already exists
// pages tagged there are kept, so interrupted batch could be resumed.
func Tag(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("tag")

	src, err := sourceArg(cmd, 0, "input source")
	if err != nil {
		return err
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = env.Cfg.Merge.Snapshots.Tags
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	warnExtraArgs(cmd, 2, log)

	if cmd.IsSet("retag") {
		env.Cfg.Batch.Retag = cmd.Bool("retag")
	}
	ann, err := annotate.NewScriptAnnotator(&env.Cfg.Batch, log)
	if err != nil {
		return err
	}

	log.Info("Tagging starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Tagging completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return tag(ctx, env, ann, src, dst, log)
}

func tag(ctx context.Context, env *state.LocalEnv, ann annotate.Annotator, src, dst string, log *zap.Logger) error {
	in, err := readTagFile(ctx, env, src)
	if err != nil {
		return fmt.Errorf("unable to read tag snapshot: %w", err)
	}

	diags := diag.NewList(log)
	parts := []*snapshot.TagFile{in}
	if _, err := os.Stat(dst); err == nil {
		prev, err := readTagFile(ctx, env, dst)
		if err != nil {
			return fmt.Errorf("unable to resume from existing snapshot: %w", err)
		}
		log.Info("Resuming from existing snapshot", zap.String("file", dst))
		// earlier results go first, so their tags win
		parts = []*snapshot.TagFile{prev, in}
	}

	res, runErr := annotate.NewBatch(ann, &env.Cfg.Batch, log).Run(ctx, snapshot.Union(parts, diags), diags)
	if res == nil {
		return runErr
	}

	// partial results are saved even when batch was interrupted
	if err := snapshot.WriteFile(dst, res.File); err != nil {
		return multierr.Combine(runErr, err)
	}
	if err := env.Rpt.StoreCopy("output/"+filepath.Base(dst), dst); err != nil {
		log.Warn("Unable to store output in report", zap.Error(err))
	}
	if len(res.Failures) > 0 {
		if err := env.Rpt.StoreJSON("failures.json", res.Failures); err != nil {
			log.Warn("Unable to store failures in report", zap.Error(err))
		}
	}

	log.Info("Tag snapshot written",
		zap.String("file", dst),
		zap.Int("pages", len(res.File.Pages)),
		zap.Int("tagged", res.Tagged),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", len(res.Failures)))

	if runErr != nil {
		return runErr
	}
	if len(res.Failures) > 0 {
		return fmt.Errorf("%d page(s) could not be tagged, run again to retry them", len(res.Failures))
	}
	return nil
}
