package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
)

func runNotifications(args []string) error {
	var common commonFlags
	var user string
	var unread bool

	fs := pflag.NewFlagSet("notifications", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&user, "user", "", "recipient user ID (required)")
	fs.BoolVar(&unread, "unread", false, "only unread notifications")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	if err := requireFlag("user", user); err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	ns, err := e.inbox.List(context.Background(), user, unread)
	if err != nil {
		return err
	}
	writeNotifications(stdout, ns)
	return nil
}

func runRead(args []string) error {
	var common commonFlags
	var user string

	fs := pflag.NewFlagSet("read", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&user, "user", "", "recipient user ID (required)")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	id, err := requireArg(fs, "ID")
	if err != nil {
		return err
	}
	if err := requireFlag("user", user); err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.inbox.MarkRead(context.Background(), id, user)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s\n", n.ID, n.Title)
	return nil
}

func runDismiss(args []string) error {
	var common commonFlags
	var user string

	fs := pflag.NewFlagSet("dismiss", pflag.ContinueOnError)
	common.add(fs)
	fs.StringVar(&user, "user", "", "recipient user ID (required)")
	if stop, err := parseFlags(fs, args); stop || err != nil {
		return err
	}
	id, err := requireArg(fs, "ID")
	if err != nil {
		return err
	}
	if err := requireFlag("user", user); err != nil {
		return err
	}

	e, err := openEnv(common)
	if err != nil {
		return err
	}
	defer e.Close()

	return e.inbox.Delete(context.Background(), id, user)
}
