package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/nhle/venuebook/internal/model"
)

func runResource(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: venuebook resource add|list|remove [flags]")
	}
	switch args[0] {
	case "add":
		return runResourceAdd(args[1:])
	case "list":
		return runResourceList(args[1:])
	case "remove":
		return runResourceRemove(args[1:])
	default:
		return fmt.Errorf("unknown resource subcommand: %q", args[0])
	}
}

func runResourceAdd(args []string) error {
	var common commonFlags
	var res model.Resource

	fs := pflag.NewFlagSet("resource add", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&res.ID, "id", "", "resource ID (generated when empty)")
	fs.StringVar(&res.Name, "name", "", "display name (required)")
	fs.StringVar(&res.Location, "location", "", "where the resource is")
	fs.StringVar(&res.OwnerID, "owner", "", "user ID of the owner (required)")
	fs.Float64Var(&res.HourlyRate, "rate", 0, "price per hour")
	fs.StringVar(&res.OpeningTime, "opens", "", "opening time, HH:MM UTC")
	fs.StringVar(&res.ClosingTime, "closes", "", "closing time, HH:MM UTC")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	if err := requireFlag("owner", res.OwnerID); err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	saved, err := e.dir.Register(context.Background(), res)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, saved.ID)
	return nil
}

func runResourceList(args []string) error {
	var common commonFlags
	var owner string

	fs := pflag.NewFlagSet("resource list", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&owner, "owner", "", "only resources owned by this user")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	var resources []model.Resource
	if owner != "" {
		resources, err = e.dir.ListByOwner(ctx, owner)
	} else {
		resources, err = e.dir.List(ctx)
	}
	if err != nil {
		return err
	}

	writeResources(stdout, resources)
	return nil
}

func runResourceRemove(args []string) error {
	var common commonFlags

	fs := pflag.NewFlagSet("resource remove", pflag.ContinueOnError)
	common.add(fs)
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	id, err := requireArg(fs, "ID")
	if err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	return e.dir.Remove(context.Background(), id)
}
