package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"bookmerge/diag"
	"bookmerge/snapshot"
	"bookmerge/state"
)

// Union combines partial tag snapshots SOURCE... into DESTINATION.
func Union(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("union")

	dst, err := sourceArg(cmd, 0, "destination")
	if err != nil {
		return err
	}
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("no partial snapshots have been specified")
	}
	var srcs []string
	for _, arg := range cmd.Args().Slice()[1:] {
		p, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		srcs = append(srcs, p)
	}
	env.Overwrite = cmd.Bool("overwrite")

	return union(ctx, env, dst, srcs, log)
}

func union(ctx context.Context, env *state.LocalEnv, dst string, srcs []string, log *zap.Logger) error {
	if _, err := os.Stat(dst); err == nil && !env.Overwrite {
		return fmt.Errorf("destination already exists: %s", dst)
	}

	parts := make([]*snapshot.TagFile, 0, len(srcs))
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := readTagFile(ctx, env, src)
		if err != nil {
			return fmt.Errorf("unable to read partial snapshot %s: %w", src, err)
		}
		log.Debug("Partial snapshot loaded", zap.String("file", src), zap.Int("pages", len(f.Pages)))
		parts = append(parts, f)
	}

	diags := diag.NewList(log)
	out := snapshot.Union(parts, diags)
	if err := snapshot.WriteFile(dst, out); err != nil {
		return err
	}
	log.Info("Tag snapshot written",
		zap.String("file", dst),
		zap.Int("parts", len(parts)),
		zap.Int("pages", len(out.Pages)),
		zap.Int("conflicts", diags.Count("page_conflict")))
	return nil
}
