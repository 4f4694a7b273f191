// Package recurring materializes due recurring templates into ledger
// transactions and advances their schedules.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/money"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
)

// Result summarizes one processor run for a household.
type Result struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// Processor turns due templates into transactions. Safe to invoke
// concurrently from multiple sessions: each materialization is an atomic
// database transaction guarded by a conditional schedule advance, so a
// due occurrence is applied at most once.
type Processor struct {
	recurring  *store.RecurringStore
	households *store.HouseholdStore
	logger     *slog.Logger
}

func NewProcessor(rs *store.RecurringStore, hs *store.HouseholdStore, logger *slog.Logger) *Processor {
	return &Processor{recurring: rs, households: hs, logger: logger}
}

// Run materializes every due template for one household. Each due template
// yields exactly one transaction dated at its scheduled next_run_date, and
// the schedule advances by exactly one interval; templates due for several
// missed periods catch up one occurrence per run. Failures on one template
// do not stop the others.
func (p *Processor) Run(ctx context.Context, householdID int64, now time.Time) (Result, error) {
	var res Result

	sc := scope.Household(householdID)
	due, err := p.recurring.ListDue(sc, now)
	if err != nil {
		return res, fmt.Errorf("list due templates: %w", err)
	}
	if len(due) == 0 {
		return res, nil
	}

	household, err := p.households.GetByID(householdID)
	if err != nil {
		return res, fmt.Errorf("get household: %w", err)
	}
	if household == nil {
		return res, fmt.Errorf("household %d not found", householdID)
	}

	var firstErr error
	for _, tmpl := range due {
		if err := ctx.Err(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}

		next, err := NextRunDate(tmpl.NextRunDate, tmpl.Interval)
		if err != nil {
			p.logger.Error("skipping template with bad interval",
				"template_id", tmpl.ID, "interval", tmpl.Interval, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		applied, err := p.recurring.Materialize(tmpl, next, household.Currency)
		if err != nil {
			p.logger.Error("materialize template",
				"template_id", tmpl.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !applied {
			// Another run advanced this template between snapshot and
			// write. The occurrence is already covered.
			res.Skipped++
			continue
		}

		res.Processed++
		p.logger.Info("materialized recurring transaction",
			"template_id", tmpl.ID,
			"household_id", householdID,
			"amount", money.String(tmpl.Amount),
			"occurred_at", tmpl.NextRunDate.Format(time.RFC3339),
			"next_run", next.Format(time.RFC3339))
	}

	return res, firstErr
}
