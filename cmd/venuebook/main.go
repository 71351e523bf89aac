// venuebook books venues by the hour. It keeps resources, reservations and
// notifications in a local SQLite database and offers both one-shot
// subcommands and an interactive agenda for a single resource.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nhle/venuebook/internal/model"
)

// stdout receives command output.
var stdout io.Writer = os.Stdout

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, model.ErrNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand, rest := args[0], args[1:]
	switch subcommand {
	case "resource":
		return runResource(rest)
	case "book":
		return runBook(rest)
	case "free":
		return runFree(rest)
	case "confirm", "cancel", "complete":
		return runTransition(subcommand, rest)
	case "delete":
		return runDelete(rest)
	case "list":
		return runList(rest)
	case "show":
		return runShow(rest)
	case "notifications":
		return runNotifications(rest)
	case "read":
		return runRead(rest)
	case "dismiss":
		return runDismiss(rest)
	case "sweep":
		return runSweep(rest)
	case "seed":
		return runSeed(rest)
	case "stats":
		return runStats(rest)
	case "agenda":
		return runAgenda(rest)
	case "config":
		return runConfig(rest)
	case "version", "--version":
		fmt.Fprintf(stdout, "venuebook %s\n", version)
		return nil
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: venuebook <subcommand> [flags]

Resources:
  resource add      Register or update a bookable resource
  resource list     List resources, optionally by owner
  resource remove   Remove a resource

Reservations:
  book              Request a reservation (created pending)
  free              List free time on a resource for one day
  confirm ID        Confirm a reservation
  cancel ID         Cancel a reservation
  complete ID       Mark a confirmed reservation as completed
  delete ID         Delete a reservation without notifying anyone
  list              List reservations by resource or requester
  show ID           Show one reservation

Notifications:
  notifications     List a user's notifications
  read ID           Mark a notification as read
  dismiss ID        Delete a notification

Maintenance:
  sweep             Complete confirmed reservations that have ended
  seed FILE         Import resources and bookings from YAML
  stats             Print record counts
  agenda            Open the interactive agenda for a resource
  config init       Write the effective configuration to --config
  config show       Print the effective configuration
  version           Print version information

Common flags:
  --config PATH     configuration file (default ~/.config/venuebook/config.yaml)
  --db PATH         database file, overrides database.path

Run 'venuebook <subcommand> --help' for subcommand flags.
`)
}
