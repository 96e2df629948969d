package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/sheetwatch/internal/config"
	"git.home.luguber.info/inful/sheetwatch/internal/watcher"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.EnvFile)
	if err != nil {
		return err
	}
	return RunCheck(context.Background(), cfg, os.Stdout)
}

// RunCheck reads every target once and prints one line per target. Read
// failures are printed, not returned.
func RunCheck(ctx context.Context, cfg *config.Config, out io.Writer) error {
	targets, err := loadTargets(cfg)
	if err != nil {
		return err
	}
	reader, err := newReader(ctx, cfg)
	if err != nil {
		return err
	}

	for _, res := range watcher.Check(ctx, targets, reader) {
		if res.Err != nil {
			_, _ = fmt.Fprintf(out, "%s: <unavailable: %v>\n", res.Target.DisplayName, res.Err)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s: %s\n", res.Target.DisplayName, res.Value)
	}
	return nil
}
