package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Spec is a parsed cron expression: five fields (minute, hour, day-of-month,
// month, day-of-week) with ranges, lists, steps, and case-insensitive month
// and weekday names, plus the @hourly … @annually descriptors. When both
// day fields are restricted a time matching either one fires, per the
// traditional union semantics.
type Spec struct {
	expr  string
	sched cron.Schedule
}

// ParseSpec parses expr into a Spec.
func ParseSpec(expr string) (Spec, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return Spec{expr: expr, sched: sched}, nil
}

// String returns the original expression.
func (s Spec) String() string { return s.expr }

// Next returns the first run time strictly after `after`, evaluated in
// local time. An expression with no match within four years is reported as
// unsatisfiable rather than searched forever.
func (s Spec) Next(after time.Time) (time.Time, error) {
	next := s.sched.Next(after)
	if next.IsZero() || next.After(after.AddDate(4, 0, 0)) {
		return time.Time{}, fmt.Errorf("cron expression %q has no run within four years of %s",
			s.expr, after.Format(time.RFC3339))
	}
	return next, nil
}
