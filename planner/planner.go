/*
Package planner runs the engine against stored shifts.

PURPOSE:
  The engine packages are pure: they take slices and return values. Something
  has to fetch the shifts, expand the holiday calendar, resolve wage rates
  and hand all of it over. Planner is that caller. It owns the only I/O
  boundary (ShiftSource), the only goroutines and the only logging.

OPERATIONS:
  ValidateWeek     validate every employee of a week in parallel
  WeeklyCost       price a week's shifts
  PreviewRollout   project a template or rotation without writing
  WageStatus       resolve an employee's ladder level from worked shifts

ORDERING:
  ValidateWeek returns one report per employee, ordered by employee ID. Each
  report keeps the validator's severity ordering, so the result does not
  depend on goroutine scheduling.

SEE ALSO:
  - worktime/validator.go, pricing/pricing.go, rollout/rollout.go
  - store/memory/memory.go: In-memory ShiftSource
  - factory/config.go: FromConfig builds a Planner from a config document
*/
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/calendar"
	"github.com/warp/workforce-engine/factory"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/ladder"
	"github.com/warp/workforce-engine/logging"
	"github.com/warp/workforce-engine/pricing"
	"github.com/warp/workforce-engine/rollout"
	"github.com/warp/workforce-engine/shift"
	"github.com/warp/workforce-engine/worktime"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the per-employee validation tasks.
const DefaultConcurrency = 8

// ShiftSource is the persistence collaborator. Results include cancelled
// shifts; the engine filters them.
type ShiftSource interface {
	ShiftsInRange(ctx context.Context, from, to generic.Date) ([]shift.Instance, error)
}

// Options configures a Planner. Zero values are usable: no rules means no
// violations, no calendar means no holidays.
type Options struct {
	Rules       worktime.RuleSet
	Supplements []pricing.SupplementRule
	Ladders     []ladder.Ladder
	DefaultRate decimal.Decimal
	Calendar    *calendar.Calendar

	Validator   *worktime.Validator
	Concurrency int
	Logger      *zap.Logger
}

type Planner struct {
	source ShiftSource
	opts   Options
	log    *zap.Logger
}

func New(source ShiftSource, opts Options) *Planner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Planner{
		source: source,
		opts:   opts,
		log:    logging.OrNop(opts.Logger).Named("planner"),
	}
}

// FromConfig builds a Planner from a parsed configuration, using its active
// rule set.
func FromConfig(source ShiftSource, cfg *factory.Config, logger *zap.Logger) *Planner {
	return New(source, Options{
		Rules:       cfg.ActiveRuleSet,
		Supplements: cfg.SupplementRules,
		Ladders:     cfg.Ladders,
		DefaultRate: cfg.DefaultHourlyRate,
		Calendar:    cfg.Calendar,
		Logger:      logger,
	})
}

func (p *Planner) fetch(ctx context.Context, period generic.Period) ([]shift.Instance, error) {
	shifts, err := p.source.ShiftsInRange(ctx, period.Start, period.End)
	if err != nil {
		p.log.Error("failed to load shifts", zap.Stringer("period", period), zap.Error(err))
		return nil, fmt.Errorf("load shifts %s: %w", period, err)
	}
	return shifts, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

type EmployeeReport struct {
	EmployeeID generic.EmployeeID
	Hours      decimal.Decimal
	Violations []worktime.Violation
	Summary    worktime.Summary
}

type WeekReport struct {
	Week      generic.Period
	Employees []EmployeeReport
	Summary   worktime.Summary
}

// Violations flattens the report, ordered by severity then employee.
func (r WeekReport) Violations() []worktime.Violation {
	var out []worktime.Violation
	for _, e := range r.Employees {
		out = append(out, e.Violations...)
	}
	worktime.SortBySeverity(out)
	return out
}

// ValidateWeek validates the Monday-Sunday week containing day.
func (p *Planner) ValidateWeek(ctx context.Context, day generic.Date) (*WeekReport, error) {
	week := generic.WeekOf(day)
	shifts, err := p.fetch(ctx, week)
	if err != nil {
		return nil, err
	}

	employees := worktime.Employees(shifts)
	sort.Slice(employees, func(i, j int) bool { return employees[i] < employees[j] })

	reports := make([]EmployeeReport, len(employees))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for i, id := range employees {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			vs := p.opts.Validator.ValidateEmployee(id, shifts, p.opts.Rules)
			minutes := 0
			for _, s := range worktime.Prepare(id, shifts) {
				minutes += s.NetMinutes()
			}
			hours := generic.MinutesToHours(minutes)
			reports[i] = EmployeeReport{
				EmployeeID: id,
				Hours:      hours,
				Violations: vs,
				Summary:    worktime.Summarize(vs),
			}
			p.log.Debug("validated employee",
				zap.String("employee", string(id)),
				zap.Stringer("hours", hours),
				zap.Int("violations", len(vs)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &WeekReport{Week: week, Employees: reports}
	for _, r := range reports {
		report.Summary.Critical += r.Summary.Critical
		report.Summary.Warning += r.Summary.Warning
		report.Summary.Info += r.Summary.Info
	}

	p.log.Info("validated week",
		zap.Stringer("week", week),
		zap.Int("shifts", len(shifts)),
		zap.Int("employees", len(reports)),
		zap.Int("critical", report.Summary.Critical),
		zap.Int("warning", report.Summary.Warning),
		zap.Int("info", report.Summary.Info),
	)
	return report, nil
}

// =============================================================================
// COST
// =============================================================================

// WeeklyCost prices the week containing day. Employees missing from rates
// are priced at the default rate.
func (p *Planner) WeeklyCost(ctx context.Context, day generic.Date, rates map[generic.EmployeeID]decimal.Decimal) (pricing.CostBreakdown, error) {
	week := generic.WeekOf(day)
	shifts, err := p.fetch(ctx, week)
	if err != nil {
		return pricing.CostBreakdown{}, err
	}

	cost := pricing.Calculate(pricing.Input{
		Shifts:      shifts,
		Rules:       p.opts.Supplements,
		Rates:       rates,
		DefaultRate: p.opts.DefaultRate,
		Holidays:    p.opts.Calendar.Expand(week.Start, week.End),
	})

	if len(cost.UnpricedShifts) > 0 {
		p.log.Warn("shifts priced at zero for lack of a rate",
			zap.Stringer("week", week),
			zap.Int("count", len(cost.UnpricedShifts)),
		)
	}
	p.log.Info("priced week",
		zap.Stringer("week", week),
		zap.Stringer("hours", cost.TotalHours),
		zap.Stringer("total", cost.TotalCost),
	)
	return cost, nil
}

// =============================================================================
// ROLLOUT PREVIEW
// =============================================================================

// RolloutRequest names what to project. Exactly one of Template and
// Rotation is set. Employees carries the ladder data of employees pinned
// by the templates, for the cost estimate.
type RolloutRequest struct {
	Template *rollout.Template
	Rotation *rollout.RotationGroup

	StartWeek generic.Date
	Weeks     int
	Cycles    int
	Offset    *int

	Policy    rollout.Policy
	Status    shift.Status
	Employees []ladder.Employee
}

type RolloutPreview struct {
	Horizon generic.Period
	Weeks   []rollout.WeeklyProjection
	Summary rollout.Summary
}

// PreviewRollout fetches the shifts and holidays of the horizon and runs the
// projector. Nothing is written.
func (p *Planner) PreviewRollout(ctx context.Context, req RolloutRequest) (*RolloutPreview, error) {
	in := rollout.Input{
		Template:    req.Template,
		Rotation:    req.Rotation,
		StartWeek:   req.StartWeek,
		Weeks:       req.Weeks,
		Cycles:      req.Cycles,
		Offset:      req.Offset,
		Policy:      req.Policy,
		Status:      req.Status,
		Rules:       p.opts.Supplements,
		DefaultRate: p.opts.DefaultRate,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	weeks := generic.Weeks(req.StartWeek, in.Horizon())
	horizon := generic.Period{Start: weeks[0].Start, End: weeks[len(weeks)-1].End}

	existing, err := p.fetch(ctx, horizon)
	if err != nil {
		return nil, err
	}
	in.Existing = shift.Active(existing)
	in.Holidays = p.opts.Calendar.Expand(horizon.Start, horizon.End)
	in.Rates = ladder.ResolveRates(p.opts.Ladders, req.Employees)

	projected, err := rollout.Project(in)
	if err != nil {
		return nil, err
	}
	summary := rollout.Summarize(projected)

	p.log.Info("previewed rollout",
		zap.Stringer("horizon", horizon),
		zap.Int("weeks", summary.Weeks),
		zap.Int("new", summary.New),
		zap.Int("existing", summary.Existing),
		zap.Int("conflicts", summary.Conflicts),
		zap.Int("skipped_holidays", summary.SkippedHolidays),
		zap.Stringer("estimated_cost", summary.EstimatedCost.TotalCost),
	)
	return &RolloutPreview{Horizon: horizon, Weeks: projected, Summary: summary}, nil
}

// =============================================================================
// WAGE STATUS
// =============================================================================

// WageStatus resolves the employee's ladder level as of through, adding the
// completed shifts dated in [since, through] to the stored baseline.
func (p *Planner) WageStatus(ctx context.Context, e ladder.Employee, since, through generic.Date) (*ladder.Resolution, error) {
	var l *ladder.Ladder
	for i := range p.opts.Ladders {
		if p.opts.Ladders[i].ID == e.LadderID {
			l = &p.opts.Ladders[i]
			break
		}
	}
	if l == nil {
		return nil, fmt.Errorf("ladder %q: %w", e.LadderID, generic.ErrNotFound)
	}

	shifts, err := p.fetch(ctx, generic.Period{Start: since, End: through})
	if err != nil {
		return nil, err
	}
	var own []shift.Instance
	for _, s := range shifts {
		if s.EmployeeID == e.ID {
			own = append(own, s)
		}
	}

	hours := ladder.AccumulatedHours(e.AccumulatedHours, own, through)
	res := ladder.Resolve(*l, hours, e.OverrideLevel)

	if res != nil {
		p.log.Debug("resolved wage level",
			zap.String("employee", string(e.ID)),
			zap.Int("level", res.Level.Number),
			zap.Stringer("accumulated_hours", hours),
		)
	}
	return res, nil
}
