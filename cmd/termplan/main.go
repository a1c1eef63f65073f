// Command termplan exports course plans, serves them over HTTP and fetches
// them from a running server.
//
//	termplan export -plan plan.yaml -format ics [-o file] [-holidays file]
//	termplan serve [-config termplan.yaml] [-plans dir] [-env .env]
//	termplan fetch [-server url] [-plan id] [-format ics] [-o file]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cyp0633/termplan/planner/holiday"
)

const usage = `usage:
  termplan export -plan plan.yaml -format ics|csv|xlsx|html [-o file] [-holidays file]
  termplan serve [-config termplan.yaml] [-plans dir] [-env .env]
  termplan fetch [-server url] [-plan id] [-format ics|csv|xlsx|html] [-o file]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "termplan:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("missing command")
	}
	switch args[0] {
	case "export":
		return runExport(args[1:], stdout, stderr)
	case "serve":
		return runServe(ctx, args[1:], stderr)
	case "fetch":
		return runFetch(ctx, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// loadHolidays reads path, or returns the built-in table when it is empty.
func loadHolidays(path string) (*holiday.Registry, error) {
	if path == "" {
		return holiday.Default(), nil
	}
	reg, err := holiday.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	return reg, nil
}
