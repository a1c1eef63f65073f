package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cyp0633/termplan/export"
	"github.com/cyp0633/termplan/plan"
	"github.com/cyp0633/termplan/planner/recurrence"
)

func runExport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	planPath := fs.String("plan", "", "plan file (YAML)")
	formatName := fs.String("format", "ics", "export format: ics, csv, xlsx or html")
	outPath := fs.String("o", "", "output file, \"-\" for stdout (default <course>_schedule.<ext>)")
	holidaysPath := fs.String("holidays", "", "holiday file (.yaml or .ics), built-in table if empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *planPath == "" {
		return fmt.Errorf("export: -plan is required")
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	def, err := plan.LoadFile(*planPath)
	if err != nil {
		return err
	}
	reg, err := loadHolidays(*holidaysPath)
	if err != nil {
		return err
	}

	s, err := def.Build(reg, recurrence.NewEngine())
	if err != nil {
		return err
	}
	doc := export.FromSession(s)

	if *outPath == "-" {
		return export.Write(format, stdout, doc)
	}
	target := *outPath
	if target == "" {
		target = format.Filename(doc.CourseName)
	}

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if err := export.Write(format, f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d teaching days to %s\n", len(doc.Dates), target)
	return nil
}
