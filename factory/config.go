/*
Package factory converts configuration documents into engine objects.

PURPOSE:
  Rule sets, supplement rules, wage ladders, templates, rotation groups and
  holidays are edited by administrators, not developers. This package reads
  them from a YAML document (JSON works too, it is valid YAML) and returns
  typed, validated domain objects. Nothing loosely typed reaches the engine.

YAML SCHEMA:
  default_hourly_rate: "14.50"
  rule_sets:
    - id: cao-2025
      active: true
      max_hours_per_day: 9
      max_hours_per_day_extended: 10
      min_rest_between_shifts: 11
      max_hours_per_week: 40
      max_hours_per_week_average: 48
      break_required_after_hours: 5.5
      min_break_minutes: 30
      break_required_after_hours_long: 8
      min_break_minutes_long: 45
      sunday_off_required: true
      sunday_off_frequency: 2
      warn_at_percent_of_max: 90
  supplement_rules:
    - {id: night, category: night, kind: percentage, amount: 25,
       window_start: "21:00", window_end: "06:00"}
  ladders:
    - id: retail
      levels:
        - {level: 1, hourly_rate: 14.00, min_hours: 0}
        - {level: 2, hourly_rate: 15.50, min_hours: 1000}
  templates:
    - id: A
      entries:
        - {day: 0, function: cashier, start: "08:00", end: "16:00", break_minutes: 30}
  rotation_groups:
    - {id: two-week, templates: [A, B], rotation_length: 2}
  holidays:
    - {name: Christmas Day, rrule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25"}
    - {name: Easter Monday, date: "2025-04-21"}

CHECKS:
  1. Struct tags, via go-playground/validator
  2. Clock and date strings, decimal amounts
  3. Ladder monotonicity, template day range, rotation length
  4. Exactly one active rule set
  5. Rotation groups only reference known templates

  Every failure is a *generic.FieldError naming the offending element,
  e.g. "templates[1].entries[0].start".

USAGE:
  cfg, err := factory.LoadFromPath("workforce.yaml")
  if err != nil {
      return err
  }
  violations := worktime.Validate(shifts, cfg.ActiveRuleSet)

SEE ALSO:
  - worktime/rules.go, pricing/types.go, ladder/ladder.go, rollout/types.go
  - calendar/calendar.go: Holiday calendar built from holidays
*/
package factory

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/calendar"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/ladder"
	"github.com/warp/workforce-engine/pricing"
	"github.com/warp/workforce-engine/rollout"
	"github.com/warp/workforce-engine/worktime"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

// Decimal amounts are strings so that YAML numbers keep their exact text.

type Document struct {
	DefaultHourlyRate string              `yaml:"default_hourly_rate" validate:"omitempty,numeric"`
	RuleSets          []RuleSetYAML       `yaml:"rule_sets" validate:"required,min=1,dive"`
	SupplementRules   []SupplementYAML    `yaml:"supplement_rules" validate:"dive"`
	Ladders           []LadderYAML        `yaml:"ladders" validate:"dive"`
	Employees         []EmployeeYAML      `yaml:"employees" validate:"dive"`
	Templates         []TemplateYAML      `yaml:"templates" validate:"dive"`
	RotationGroups    []RotationGroupYAML `yaml:"rotation_groups" validate:"dive"`
	Holidays          []HolidayYAML       `yaml:"holidays" validate:"dive"`
}

type RuleSetYAML struct {
	ID                          string `yaml:"id" validate:"required"`
	Name                        string `yaml:"name"`
	Active                      bool   `yaml:"active"`
	MaxHoursPerDay              string `yaml:"max_hours_per_day" validate:"omitempty,numeric"`
	MaxHoursPerDayExtended      string `yaml:"max_hours_per_day_extended" validate:"omitempty,numeric"`
	MinRestBetweenShifts        string `yaml:"min_rest_between_shifts" validate:"omitempty,numeric"`
	MaxHoursPerWeek             string `yaml:"max_hours_per_week" validate:"omitempty,numeric"`
	MaxHoursPerWeekAverage      string `yaml:"max_hours_per_week_average" validate:"omitempty,numeric"`
	BreakRequiredAfterHours     string `yaml:"break_required_after_hours" validate:"omitempty,numeric"`
	MinBreakMinutes             int    `yaml:"min_break_minutes" validate:"gte=0"`
	BreakRequiredAfterHoursLong string `yaml:"break_required_after_hours_long" validate:"omitempty,numeric"`
	MinBreakMinutesLong         int    `yaml:"min_break_minutes_long" validate:"gte=0"`
	SundayOffRequired           bool   `yaml:"sunday_off_required"`
	SundayOffFrequency          int    `yaml:"sunday_off_frequency" validate:"gte=0"`
	WarnAtPercentOfMax          string `yaml:"warn_at_percent_of_max" validate:"omitempty,numeric"`
}

type SupplementYAML struct {
	ID          string   `yaml:"id" validate:"required"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category" validate:"required,oneof=night evening weekend holiday"`
	Kind        string   `yaml:"kind" validate:"required,oneof=percentage flat"`
	Amount      string   `yaml:"amount" validate:"required,numeric"`
	WindowStart string   `yaml:"window_start" validate:"required_with=WindowEnd"`
	WindowEnd   string   `yaml:"window_end" validate:"required_with=WindowStart"`
	Weekdays    []string `yaml:"weekdays" validate:"dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
}

type LadderYAML struct {
	ID     string      `yaml:"id" validate:"required"`
	Name   string      `yaml:"name"`
	Levels []LevelYAML `yaml:"levels" validate:"required,min=1,dive"`
}

type LevelYAML struct {
	Level      int    `yaml:"level" validate:"gte=1"`
	HourlyRate string `yaml:"hourly_rate" validate:"required,numeric"`
	MinHours   string `yaml:"min_hours" validate:"omitempty,numeric"`
}

// EmployeeYAML binds an employee to a ladder. AccumulatedHours is the
// baseline worked before the shifts the engine sees.
type EmployeeYAML struct {
	ID               string `yaml:"id" validate:"required"`
	Ladder           string `yaml:"ladder" validate:"required"`
	AccumulatedHours string `yaml:"accumulated_hours" validate:"omitempty,numeric"`
	OverrideLevel    *int   `yaml:"override_level" validate:"omitempty,gte=1"`
}

type TemplateYAML struct {
	ID      string      `yaml:"id" validate:"required"`
	Name    string      `yaml:"name"`
	Entries []EntryYAML `yaml:"entries" validate:"dive"`
}

type EntryYAML struct {
	Day          int    `yaml:"day" validate:"gte=0,lte=6"`
	Function     string `yaml:"function"`
	Start        string `yaml:"start" validate:"required"`
	End          string `yaml:"end" validate:"required"`
	BreakMinutes int    `yaml:"break_minutes" validate:"gte=0"`
	Employee     string `yaml:"employee"`
}

type RotationGroupYAML struct {
	ID             string   `yaml:"id" validate:"required"`
	Name           string   `yaml:"name"`
	Templates      []string `yaml:"templates" validate:"required,min=1,dive,required"`
	RotationLength int      `yaml:"rotation_length" validate:"gte=0"`
	StartingOffset int      `yaml:"starting_offset"`
}

type HolidayYAML struct {
	Name  string `yaml:"name" validate:"required"`
	Date  string `yaml:"date" validate:"required_without=RRule,excluded_with=RRule"`
	RRule string `yaml:"rrule"`
}

// =============================================================================
// OUTPUT
// =============================================================================

// Config holds the engine objects built from a Document.
type Config struct {
	RuleSets          worktime.RuleSets
	ActiveRuleSet     worktime.RuleSet
	SupplementRules   []pricing.SupplementRule
	Ladders           []ladder.Ladder
	Employees         []ladder.Employee
	Templates         []rollout.Template
	RotationGroups    []rollout.RotationGroup
	Calendar          *calendar.Calendar
	DefaultHourlyRate decimal.Decimal
}

func (c *Config) Ladder(id string) (ladder.Ladder, error) {
	for _, l := range c.Ladders {
		if l.ID == id {
			return l, nil
		}
	}
	return ladder.Ladder{}, fmt.Errorf("ladder %q: %w", id, generic.ErrNotFound)
}

// Rates resolves the hourly rate of every configured employee from their
// ladder and baseline hours.
func (c *Config) Rates() map[generic.EmployeeID]decimal.Decimal {
	return ladder.ResolveRates(c.Ladders, c.Employees)
}

func (c *Config) Template(id generic.TemplateID) (rollout.Template, error) {
	for _, t := range c.Templates {
		if t.ID == id {
			return t, nil
		}
	}
	return rollout.Template{}, fmt.Errorf("template %q: %w", id, generic.ErrNotFound)
}

func (c *Config) RotationGroup(id string) (rollout.RotationGroup, error) {
	for _, g := range c.RotationGroups {
		if g.ID == id {
			return g, nil
		}
	}
	return rollout.RotationGroup{}, fmt.Errorf("rotation group %q: %w", id, generic.ErrNotFound)
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts documents to engine objects.
type ConfigFactory struct {
	validate *validator.Validate
}

func NewConfigFactory() *ConfigFactory {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report YAML field names in paths.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ConfigFactory{validate: v}
}

var defaultFactory = NewConfigFactory()

// ParseConfig parses and validates a YAML or JSON document.
func ParseConfig(data []byte) (*Config, error) {
	return defaultFactory.Parse(data)
}

// LoadFromPath reads, parses and validates the document at path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

func (f *ConfigFactory) Parse(data []byte) (*Config, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return f.FromDocument(doc)
}

// FromDocument validates doc and builds the engine objects.
func (f *ConfigFactory) FromDocument(doc Document) (*Config, error) {
	if err := f.validate.Struct(doc); err != nil {
		return nil, validationError(err)
	}

	cfg := &Config{}
	var err error

	if cfg.DefaultHourlyRate, err = parseDecimal("default_hourly_rate", doc.DefaultHourlyRate); err != nil {
		return nil, err
	}

	for i, rj := range doc.RuleSets {
		rs, err := parseRuleSet(fmt.Sprintf("rule_sets[%d]", i), rj)
		if err != nil {
			return nil, err
		}
		cfg.RuleSets = append(cfg.RuleSets, rs)
	}
	if cfg.ActiveRuleSet, err = cfg.RuleSets.Active(); err != nil {
		return nil, &generic.FieldError{Path: "rule_sets", Err: err}
	}

	for i, sj := range doc.SupplementRules {
		rule, err := parseSupplement(fmt.Sprintf("supplement_rules[%d]", i), sj)
		if err != nil {
			return nil, err
		}
		cfg.SupplementRules = append(cfg.SupplementRules, rule)
	}

	for i, lj := range doc.Ladders {
		l, err := parseLadder(fmt.Sprintf("ladders[%d]", i), lj)
		if err != nil {
			return nil, err
		}
		cfg.Ladders = append(cfg.Ladders, l)
	}

	seen := make(map[string]bool, len(doc.Employees))
	for i, ej := range doc.Employees {
		path := fmt.Sprintf("employees[%d]", i)
		if seen[ej.ID] {
			return nil, &generic.FieldError{Path: path + ".id", Err: fmt.Errorf("%w: duplicate employee id %q", generic.ErrInvalidRule, ej.ID)}
		}
		seen[ej.ID] = true
		e, err := parseEmployee(path, ej, cfg)
		if err != nil {
			return nil, err
		}
		cfg.Employees = append(cfg.Employees, e)
	}

	templates := make(map[string]rollout.Template, len(doc.Templates))
	for i, tj := range doc.Templates {
		path := fmt.Sprintf("templates[%d]", i)
		if _, dup := templates[tj.ID]; dup {
			return nil, &generic.FieldError{Path: path + ".id", Err: fmt.Errorf("%w: duplicate template id %q", generic.ErrInvalidTemplate, tj.ID)}
		}
		t, err := parseTemplate(path, tj)
		if err != nil {
			return nil, err
		}
		templates[tj.ID] = t
		cfg.Templates = append(cfg.Templates, t)
	}

	for i, gj := range doc.RotationGroups {
		g, err := parseRotationGroup(fmt.Sprintf("rotation_groups[%d]", i), gj, templates)
		if err != nil {
			return nil, err
		}
		cfg.RotationGroups = append(cfg.RotationGroups, g)
	}

	holidays := make([]calendar.Holiday, 0, len(doc.Holidays))
	for i, hj := range doc.Holidays {
		h := calendar.Holiday{Name: hj.Name, RRule: hj.RRule}
		if hj.Date != "" {
			if h.Date, err = generic.ParseDate(hj.Date); err != nil {
				return nil, &generic.FieldError{Path: fmt.Sprintf("holidays[%d].date", i), Err: err}
			}
		}
		holidays = append(holidays, h)
	}
	if cfg.Calendar, err = calendar.New(holidays...); err != nil {
		return nil, &generic.FieldError{Path: "holidays", Err: err}
	}

	return cfg, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("config validation failed: %w", err)
	}
	fe := verrs[0]
	// Namespace starts with the root type name.
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	return &generic.FieldError{
		Path: path,
		Err:  fmt.Errorf("%w: config validation failed on %q", generic.ErrInvalidRule, fe.Tag()),
	}
}

func parseDecimal(path, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, &generic.FieldError{Path: path, Err: fmt.Errorf("%w: %v", generic.ErrInvalidRule, err)}
	}
	return d, nil
}

func parseClock(path, s string) (generic.ClockTime, error) {
	c, err := generic.ParseClock(s)
	if err != nil {
		return 0, &generic.FieldError{Path: path, Err: err}
	}
	return c, nil
}

func parseRuleSet(path string, rj RuleSetYAML) (worktime.RuleSet, error) {
	rs := worktime.RuleSet{
		ID:                  rj.ID,
		Name:                rj.Name,
		Active:              rj.Active,
		MinBreakMinutes:     rj.MinBreakMinutes,
		MinBreakMinutesLong: rj.MinBreakMinutesLong,
		SundayOffRequired:   rj.SundayOffRequired,
		SundayOffFrequency:  rj.SundayOffFrequency,
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"max_hours_per_day", rj.MaxHoursPerDay, &rs.MaxHoursPerDay},
		{"max_hours_per_day_extended", rj.MaxHoursPerDayExtended, &rs.MaxHoursPerDayExtended},
		{"min_rest_between_shifts", rj.MinRestBetweenShifts, &rs.MinRestBetweenShifts},
		{"max_hours_per_week", rj.MaxHoursPerWeek, &rs.MaxHoursPerWeek},
		{"max_hours_per_week_average", rj.MaxHoursPerWeekAverage, &rs.MaxHoursPerWeekAverage},
		{"break_required_after_hours", rj.BreakRequiredAfterHours, &rs.BreakRequiredAfterHours},
		{"break_required_after_hours_long", rj.BreakRequiredAfterHoursLong, &rs.BreakRequiredAfterHoursLong},
		{"warn_at_percent_of_max", rj.WarnAtPercentOfMax, &rs.WarnAtPercentOfMax},
	} {
		v, err := parseDecimal(path+"."+f.name, f.raw)
		if err != nil {
			return worktime.RuleSet{}, err
		}
		*f.dst = v
	}

	if err := rs.Validate(); err != nil {
		return worktime.RuleSet{}, &generic.FieldError{Path: path, Err: err}
	}
	return rs, nil
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

func parseSupplement(path string, sj SupplementYAML) (pricing.SupplementRule, error) {
	amount, err := parseDecimal(path+".amount", sj.Amount)
	if err != nil {
		return pricing.SupplementRule{}, err
	}

	rule := pricing.SupplementRule{
		ID:       sj.ID,
		Name:     sj.Name,
		Category: pricing.Category(sj.Category),
		Kind:     pricing.AmountKind(sj.Kind),
		Amount:   amount,
	}
	if sj.WindowStart != "" {
		start, err := parseClock(path+".window_start", sj.WindowStart)
		if err != nil {
			return pricing.SupplementRule{}, err
		}
		end, err := parseClock(path+".window_end", sj.WindowEnd)
		if err != nil {
			return pricing.SupplementRule{}, err
		}
		rule.WindowStart, rule.WindowEnd = &start, &end
	}
	for _, name := range sj.Weekdays {
		rule.Weekdays = append(rule.Weekdays, weekdays[name])
	}

	if err := rule.Validate(); err != nil {
		return pricing.SupplementRule{}, &generic.FieldError{Path: path, Err: err}
	}
	return rule, nil
}

func parseEmployee(path string, ej EmployeeYAML, cfg *Config) (ladder.Employee, error) {
	if _, err := cfg.Ladder(ej.Ladder); err != nil {
		return ladder.Employee{}, &generic.FieldError{Path: path + ".ladder", Err: err}
	}
	hours, err := parseDecimal(path+".accumulated_hours", ej.AccumulatedHours)
	if err != nil {
		return ladder.Employee{}, err
	}
	return ladder.Employee{
		ID:               generic.EmployeeID(ej.ID),
		LadderID:         ej.Ladder,
		AccumulatedHours: hours,
		OverrideLevel:    ej.OverrideLevel,
	}, nil
}

func parseLadder(path string, lj LadderYAML) (ladder.Ladder, error) {
	l := ladder.Ladder{ID: lj.ID, Name: lj.Name}
	for i, lv := range lj.Levels {
		levelPath := fmt.Sprintf("%s.levels[%d]", path, i)
		rate, err := parseDecimal(levelPath+".hourly_rate", lv.HourlyRate)
		if err != nil {
			return ladder.Ladder{}, err
		}
		minHours, err := parseDecimal(levelPath+".min_hours", lv.MinHours)
		if err != nil {
			return ladder.Ladder{}, err
		}
		l.Levels = append(l.Levels, ladder.Level{Number: lv.Level, HourlyRate: rate, MinHours: minHours})
	}

	if err := l.Validate(); err != nil {
		return ladder.Ladder{}, &generic.FieldError{Path: path + ".levels", Err: err}
	}
	return l, nil
}

func parseTemplate(path string, tj TemplateYAML) (rollout.Template, error) {
	t := rollout.Template{ID: generic.TemplateID(tj.ID), Name: tj.Name}
	for i, ej := range tj.Entries {
		entryPath := fmt.Sprintf("%s.entries[%d]", path, i)
		start, err := parseClock(entryPath+".start", ej.Start)
		if err != nil {
			return rollout.Template{}, err
		}
		end, err := parseClock(entryPath+".end", ej.End)
		if err != nil {
			return rollout.Template{}, err
		}
		t.Entries = append(t.Entries, rollout.Entry{
			DayOfWeek:    ej.Day,
			FunctionID:   generic.FunctionID(ej.Function),
			Start:        start,
			End:          end,
			BreakMinutes: ej.BreakMinutes,
			EmployeeID:   generic.EmployeeID(ej.Employee),
		})
	}

	if err := t.Validate(); err != nil {
		return rollout.Template{}, &generic.FieldError{Path: path, Err: err}
	}
	return t, nil
}

func parseRotationGroup(path string, gj RotationGroupYAML, templates map[string]rollout.Template) (rollout.RotationGroup, error) {
	g := rollout.RotationGroup{
		ID:             gj.ID,
		Name:           gj.Name,
		RotationLength: gj.RotationLength,
		StartingOffset: gj.StartingOffset,
	}
	for i, id := range gj.Templates {
		t, ok := templates[id]
		if !ok {
			return rollout.RotationGroup{}, &generic.FieldError{
				Path: fmt.Sprintf("%s.templates[%d]", path, i),
				Err:  fmt.Errorf("template %q: %w", id, generic.ErrNotFound),
			}
		}
		g.Templates = append(g.Templates, t)
	}

	if err := g.Validate(); err != nil {
		return rollout.RotationGroup{}, &generic.FieldError{Path: path, Err: err}
	}
	return g, nil
}
