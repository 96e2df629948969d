package commands

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"git.home.luguber.info/inful/sheetwatch/internal/config"
	"git.home.luguber.info/inful/sheetwatch/internal/errors"
)

// StateCmd implements the 'state' command.
type StateCmd struct{}

// State commands only need the state settings, so the full validation that
// run and check perform is skipped.
func (s *StateCmd) Run(_ *Global, root *CLI) error {
	if err := config.LoadEnvFile(root.EnvFile, root.EnvFile != ""); err != nil {
		return err
	}
	return RunState(context.Background(), config.FromLookup(os.LookupEnv), os.Stdout)
}

// RunState prints the persisted record as {"last_values": {...}}.
func RunState(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"last_values": store.Load(ctx)}); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode state").Build()
	}
	return nil
}
