package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cyp0633/termplan/internal/logging"
	"github.com/cyp0633/termplan/server/storage"
	"github.com/cyp0633/termplan/server/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `course: {name: Algorithms}
start: 2025-01-01
end: 2025-01-31
weekdays: [Monday, Wednesday]
topics:
  2025-01-06: ["1 - Intro"]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_ExportToFile(t *testing.T) {
	dir := t.TempDir()
	planPath := writeFile(t, dir, "algo.yaml", testPlan)
	out := filepath.Join(dir, "out.csv")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"export", "-plan", planPath, "-format", "csv", "-o", out}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "wrote 9 teaching days")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 10)
	assert.Equal(t, []string{"2025-01-06", "Algorithms", "1 - Intro"}, records[2])
}

func TestRun_ExportToStdoutWithHolidays(t *testing.T) {
	dir := t.TempDir()
	planPath := writeFile(t, dir, "algo.yaml", testPlan+"exclude_holidays: true\n")
	holidays := writeFile(t, dir, "holidays.yaml", "- date: 2025-01-06\n  name: Founders Day\n")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"export", "-plan", planPath, "-format", "csv", "-o", "-", "-holidays", holidays}, &stdout, &stderr)
	require.NoError(t, err)
	assert.NotContains(t, stdout.String(), "2025-01-06")
	assert.Len(t, strings.Split(strings.TrimSpace(stdout.String()), "\n"), 9)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	planPath := writeFile(t, dir, "algo.yaml", testPlan)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"missing plan flag", []string{"export"}},
		{"unknown format", []string{"export", "-plan", planPath, "-format", "pdf"}},
		{"missing plan file", []string{"export", "-plan", filepath.Join(dir, "nope.yaml")}},
		{"missing holidays file", []string{"export", "-plan", planPath, "-holidays", filepath.Join(dir, "nope.ics")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, &bytes.Buffer{}, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestLoadPlans(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "algo.yaml", testPlan)
	writeFile(t, dir, "graphs.yml", strings.Replace(testPlan, "Algorithms", "Graphs", 1))
	writeFile(t, dir, "README.md", "not a plan")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	store := memory.New()
	n, err := loadPlans(context.Background(), store, dir, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := store.GetPlan(context.Background(), "graphs")
	require.NoError(t, err)
	assert.Equal(t, "Graphs", p.Definition.Course.Name)
}

func TestLoadPlans_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "course: {name: A}\nstart: 2025-02-10\nend: 2025-02-01\n")

	_, err := loadPlans(context.Background(), memory.New(), dir, logging.Discard())
	assert.Error(t, err)

	_, err = loadPlans(context.Background(), memory.New(), filepath.Join(dir, "missing"), logging.Discard())
	assert.Error(t, err)
}

func TestLoadPlans_Duplicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "algo.yaml", testPlan)
	writeFile(t, dir, "algo.yml", testPlan)

	_, err := loadPlans(context.Background(), memory.New(), dir, logging.Discard())
	assert.True(t, storage.IsAlreadyExists(err))
}
