package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cyp0633/termplan/export"
	"github.com/cyp0633/termplan/planclient"
)

// runFetch lists the plans on a server, prints one plan's weeks, or
// downloads an export of it.
func runFetch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	serverURL := fs.String("server", "http://localhost:8080", "termplan server base URL")
	id := fs.String("plan", "", "plan id, lists all plans if empty")
	formatName := fs.String("format", "", "export format; prints the weeks if empty")
	outPath := fs.String("o", "", "output file, \"-\" for stdout (default <course>_schedule.<ext>)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := planclient.New(*serverURL)
	if err != nil {
		return err
	}

	if *id == "" {
		plans, err := client.ListPlans(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCOURSE\tCODE")
		for _, p := range plans {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.CourseName, p.CourseCode)
		}
		return tw.Flush()
	}

	if *formatName == "" {
		weeks, err := client.Weeks(ctx, *id)
		if err != nil {
			return err
		}
		for _, w := range weeks {
			fmt.Fprintf(stdout, "Week %d\n", w.Week)
			for _, d := range w.Dates {
				fmt.Fprintf(stdout, "  %s  %s\n", d.Date, strings.Join(d.Topics, ", "))
			}
		}
		return nil
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	exp, err := client.Export(ctx, *id, format, "")
	if err != nil {
		return err
	}
	if *outPath == "-" {
		_, err := stdout.Write(exp.Body)
		return err
	}

	target := *outPath
	if target == "" {
		p, err := client.Plan(ctx, *id)
		if err != nil {
			return err
		}
		target = format.Filename(p.Summary.CourseName)
	}
	if err := os.WriteFile(target, exp.Body, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d bytes to %s\n", len(exp.Body), target)
	return nil
}
