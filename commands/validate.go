package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"bookmerge/merge"
	"bookmerge/state"
)

// Validate runs merge without producing output and lists every problem found
// in the snapshots at SOURCE.
func Validate(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("validate")

	src, err := sourceArg(cmd, 0, "input source")
	if err != nil {
		return err
	}
	warnExtraArgs(cmd, 1, log)

	return validate(ctx, env, src, os.Stdout, log)
}

func validate(ctx context.Context, env *state.LocalEnv, src string, w io.Writer, log *zap.Logger) error {
	source, err := openSource(ctx, env, src)
	if err != nil {
		return fmt.Errorf("unable to open snapshots: %w", err)
	}
	doc, err := merge.Run(ctx, source, mergeOptions(&env.Cfg.Merge), log)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := env.Rpt.StoreJSON("diagnostics.json", doc.Diagnostics); err != nil {
		log.Warn("Unable to store diagnostics in report", zap.Error(err))
	}

	for _, d := range doc.Diagnostics {
		fmt.Fprintf(w, "%-7s %-20s %s\n", d.Severity, d.Kind, d.Message)
	}
	warnings := len(doc.Diagnostics) - doc.Problems()
	fmt.Fprintf(w, "%s + %s: %d paragraph(s), %d anchored, %d fallback, %d error(s), %d warning(s)\n",
		doc.Primary, doc.Secondary, doc.Stats.Paragraphs, doc.Stats.Anchored, doc.Stats.Fallback, doc.Problems(), warnings)

	if n := doc.Problems(); n > 0 {
		return fmt.Errorf("%d error(s) in input", n)
	}
	return nil
}
