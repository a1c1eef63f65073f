// Package plan reads course plan definitions and builds planning sessions
// from them.
package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/cyp0633/termplan/planner/course"
	"github.com/cyp0633/termplan/planner/date"
	"github.com/cyp0633/termplan/planner/holiday"
	"github.com/cyp0633/termplan/planner/recurrence"
	"github.com/cyp0633/termplan/planner/session"
	"github.com/cyp0633/termplan/planner/topics"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRange reports a range whose end precedes its start.
var ErrInvalidRange = errors.New("end date is before start date")

// CourseInfo describes the course a plan is for.
type CourseInfo struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Code  string `yaml:"code,omitempty" json:"code,omitempty"`
	Notes string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Range is an inclusive span of dates.
type Range struct {
	Start date.Date `yaml:"start" json:"start" validate:"required"`
	End   date.Date `yaml:"end" json:"end" validate:"required"`
}

// Definition is the on-disk form of a course plan.
type Definition struct {
	Course          CourseInfo             `yaml:"course" json:"course"`
	Start           date.Date              `yaml:"start" json:"start" validate:"required"`
	End             date.Date              `yaml:"end" json:"end" validate:"required"`
	Weekdays        []string               `yaml:"weekdays" json:"weekdays" validate:"dive,weekday"`
	ExcludeHolidays bool                   `yaml:"exclude_holidays" json:"exclude_holidays"`
	ExcludedDates   []date.Date            `yaml:"excluded_dates,omitempty" json:"excluded_dates,omitempty"`
	ExcludedRanges  []Range                `yaml:"excluded_ranges,omitempty" json:"excluded_ranges,omitempty" validate:"dive"`
	CustomDates     []date.Date            `yaml:"custom_dates,omitempty" json:"custom_dates,omitempty"`
	Topics          map[date.Date][]string `yaml:"topics,omitempty" json:"topics,omitempty"`
	Catalog         []string               `yaml:"catalog,omitempty" json:"catalog,omitempty" validate:"dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := date.ParseWeekday(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Parse decodes and validates a YAML plan.
func Parse(r io.Reader) (*Definition, error) {
	var def Definition
	if err := yaml.NewDecoder(r).Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile parses the plan at path.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	def, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Validate checks required fields, weekday names and range order.
func (d *Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}
	if d.End.Before(d.Start) {
		return fmt.Errorf("plan range %s..%s: %w", d.Start, d.End, ErrInvalidRange)
	}
	for _, r := range d.ExcludedRanges {
		if r.End.Before(r.Start) {
			return fmt.Errorf("excluded range %s..%s: %w", r.Start, r.End, ErrInvalidRange)
		}
	}
	return nil
}

// Encode writes d as YAML.
func (d *Definition) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}

// Build creates a session from the definition. The holiday rule is applied
// last so it sees the final range.
func (d *Definition) Build(reg *holiday.Registry, eng *recurrence.Engine, opts ...session.Option) (*session.Session, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	weekdays, err := date.ParseWeekdays(d.Weekdays...)
	if err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	c := course.New(reg,
		course.WithName(d.Course.Name),
		course.WithCode(d.Course.Code),
		course.WithNotes(d.Course.Notes),
		course.WithRange(d.Start, d.End))
	c.SetWeekdays(weekdays)
	for _, day := range d.ExcludedDates {
		c.AddExcludedDate(day)
	}
	for _, r := range d.ExcludedRanges {
		c.ExcludeRange(r.Start, r.End)
	}
	c.SetExcludeHolidays(d.ExcludeHolidays)

	opts = append(slices.Clone(opts), session.WithCatalog(topics.NewCatalog(d.Catalog...)))
	s := session.New(c, eng, opts...)
	for _, day := range d.CustomDates {
		s.AddCustomDate(day)
	}
	for day, labels := range d.Topics {
		s.Notes().Set(day, labels)
	}
	return s, nil
}
