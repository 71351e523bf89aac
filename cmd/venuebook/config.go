package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/nhle/venuebook/internal/model"
)

func runConfig(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: venuebook config init|show [flags]")
	}
	switch args[0] {
	case "init":
		return runConfigInit(args[1:])
	case "show":
		return runConfigShow(args[1:])
	default:
		return fmt.Errorf("unknown config subcommand: %q", args[0])
	}
}

// effectiveConfig loads the file (or defaults), environment overrides and --db.
func effectiveConfig(common commonFlags) (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(common.configPath)
	if err != nil {
		return nil, err
	}
	if common.dbPath != "" {
		cfg.Database.Path = common.dbPath
	}
	return cfg, nil
}

func runConfigInit(args []string) error {
	var common commonFlags
	var force bool

	flags := pflag.NewFlagSet("config init", pflag.ContinueOnError)
	common.add(flags)
	flags.BoolVar(&force, "force", false, "overwrite an existing file")
	if stop, err := parseFlags(flags, args); stop || err != nil {
		return err
	}

	_, err := os.Stat(common.configPath)
	switch {
	case err == nil && !force:
		return fmt.Errorf("%s already exists (use --force to overwrite)", common.configPath)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("checking %s: %w", common.configPath, err)
	}

	cfg, err := effectiveConfig(common)
	if err != nil {
		return err
	}
	if err := model.SaveConfig(common.configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintln(stdout, common.configPath)
	return nil
}

func runConfigShow(args []string) error {
	var common commonFlags

	flags := pflag.NewFlagSet("config show", pflag.ContinueOnError)
	common.add(flags)
	if stop, err := parseFlags(flags, args); stop || err != nil {
		return err
	}

	cfg, err := effectiveConfig(common)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = stdout.Write(out)
	return err
}
