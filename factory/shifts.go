package factory

import (
	"fmt"

	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/shift"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SHIFT RECORDS
// =============================================================================

// ShiftDocument is a list of raw shift records, as exported by a scheduling
// system:
//
//	shifts:
//	  - {id: s1, date: "2025-03-10", function: cashier, employee: alice,
//	     start: "08:00", end: "16:00", break_minutes: 30, status: published}
type ShiftDocument struct {
	Shifts []ShiftYAML `yaml:"shifts" validate:"dive"`
}

type ShiftYAML struct {
	ID           string `yaml:"id" validate:"required"`
	Date         string `yaml:"date" validate:"required"`
	Function     string `yaml:"function"`
	Employee     string `yaml:"employee"`
	Start        string `yaml:"start" validate:"required"`
	End          string `yaml:"end" validate:"required"`
	BreakMinutes int    `yaml:"break_minutes" validate:"gte=0"`
	ActualStart  string `yaml:"actual_start" validate:"required_with=ActualEnd"`
	ActualEnd    string `yaml:"actual_end" validate:"required_with=ActualStart"`
	Status       string `yaml:"status" validate:"omitempty,oneof=draft published cancelled completed"`
}

// ParseShifts parses a shift document with the default factory.
func ParseShifts(data []byte) ([]shift.Instance, error) {
	return defaultFactory.ParseShifts(data)
}

func (f *ConfigFactory) ParseShifts(data []byte) ([]shift.Instance, error) {
	var doc ShiftDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse shifts: %w", err)
	}
	if err := f.validate.Struct(doc); err != nil {
		return nil, validationError(err)
	}

	out := make([]shift.Instance, 0, len(doc.Shifts))
	for i, sj := range doc.Shifts {
		s, err := parseShift(fmt.Sprintf("shifts[%d]", i), sj)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func parseShift(path string, sj ShiftYAML) (shift.Instance, error) {
	date, err := generic.ParseDate(sj.Date)
	if err != nil {
		return shift.Instance{}, &generic.FieldError{Path: path + ".date", Err: err}
	}
	start, err := parseClock(path+".start", sj.Start)
	if err != nil {
		return shift.Instance{}, err
	}
	end, err := parseClock(path+".end", sj.End)
	if err != nil {
		return shift.Instance{}, err
	}

	s := shift.Instance{
		ID:           generic.ShiftID(sj.ID),
		Date:         date,
		FunctionID:   generic.FunctionID(sj.Function),
		EmployeeID:   generic.EmployeeID(sj.Employee),
		Start:        start,
		End:          end,
		BreakMinutes: sj.BreakMinutes,
		Status:       shift.Status(sj.Status),
	}
	if s.Status == "" {
		s.Status = shift.StatusPublished
	}
	if sj.ActualStart != "" {
		as, err := parseClock(path+".actual_start", sj.ActualStart)
		if err != nil {
			return shift.Instance{}, err
		}
		ae, err := parseClock(path+".actual_end", sj.ActualEnd)
		if err != nil {
			return shift.Instance{}, err
		}
		s.ActualStart, s.ActualEnd = &as, &ae
	}
	return s, nil
}
