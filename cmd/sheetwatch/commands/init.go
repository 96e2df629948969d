package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sheetwatch/internal/config"
	"git.home.luguber.info/inful/sheetwatch/internal/errors"
	"git.home.luguber.info/inful/sheetwatch/internal/registry"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing cells configuration file"`
	Output string `short:"o" name:"output" help:"Path of the cells configuration file (defaults to CELLS_CONFIG_FILE)"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.LoadEnvFile(root.EnvFile, root.EnvFile != ""); err != nil {
		return err
	}
	cfg := config.FromLookup(os.LookupEnv)
	path := i.Output
	if path == "" {
		path = cfg.CellsConfigFile
	}
	return RunInit(path, registryDefaults(cfg), i.Force)
}

// RunInit writes a sample cells configuration to path.
func RunInit(path string, defaults registry.Defaults, force bool) error {
	fmt.Printf("Writing cells configuration to %s\n", path)
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("cells configuration already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	data, err := registry.Sample(path, defaults)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "render sample cells configuration").Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryRegistry, "write cells configuration").
			WithContext("path", path).
			Build()
	}
	fmt.Println("initialized successfully")
	return nil
}
