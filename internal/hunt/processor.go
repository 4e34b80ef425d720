package hunt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

// Generator produces candidate leads for one criterion. *llm.Model is the
// production implementation.
type Generator interface {
	HuntLeads(ctx context.Context, criterion string, knownURLs []string) (string, error)
}

// LeadIndex answers whether a URL is already tracked. *db.Client is the
// production implementation.
type LeadIndex interface {
	LeadURLExists(ctx context.Context, url string) (bool, error)
}

// Processor runs hunt jobs: one unit per search criterion. A criterion whose
// generation fails is a failed unit, not a failed job; duplicates of already
// tracked leads make a criterion a skipped unit.
type Processor struct {
	gen   Generator
	leads LeadIndex
	log   *slog.Logger
}

func NewProcessor(gen Generator, leads LeadIndex, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{gen: gen, leads: leads, log: log}
}

func (p *Processor) Kind() models.JobKind {
	return models.KindHunt
}

func (p *Processor) Validate(params map[string]any) error {
	if _, err := criteriaFromParams(params); err != nil {
		return &engine.ValidationError{Msg: err.Error()}
	}
	return nil
}

func (p *Processor) Run(ctx context.Context, rt *engine.Runtime) (engine.Result, error) {
	criteria, err := criteriaFromParams(rt.Job().Params)
	if err != nil {
		return engine.Done, fmt.Errorf("hunt params: %w", err)
	}

	if rt.Job().TotalUnits == 0 {
		if err := rt.SetTotal(ctx, len(criteria)); err != nil {
			return engine.Done, fmt.Errorf("set total: %w", err)
		}
	}

	for i := rt.Job().Checkpoint; i < len(criteria); i++ {
		stopping, err := rt.Stopping(ctx)
		if err != nil {
			return engine.Done, err
		}
		if stopping {
			return engine.Stopped, nil
		}

		criterion := criteria[i]
		task := fmt.Sprintf("hunting criterion %d/%d: %s", i+1, len(criteria), criterion)
		if err := rt.SetTask(ctx, task); err != nil {
			return engine.Done, err
		}

		outcome, unitTask := p.huntOne(ctx, rt, criterion)
		if err := rt.RecordUnit(ctx, outcome, unitTask); err != nil {
			return engine.Done, err
		}
	}

	return engine.ReviewBoundary, nil
}

// huntOne runs a single criterion to completion. It never returns an error:
// generation or persistence trouble is confined to this unit's outcome.
func (p *Processor) huntOne(ctx context.Context, rt *engine.Runtime, criterion string) (models.UnitOutcome, string) {
	output, err := p.gen.HuntLeads(ctx, criterion, nil)
	if err != nil {
		p.log.Warn("lead generation failed", "criterion", criterion, "error", err)
		return models.UnitFailed, fmt.Sprintf("generation failed: %s", criterion)
	}

	candidates := ParseLeads(output)
	added := 0
	for _, candidate := range candidates {
		exists, err := p.leads.LeadURLExists(ctx, candidate.URL)
		if err != nil {
			p.log.Warn("lead lookup failed", "url", candidate.URL, "error", err)
			return models.UnitFailed, fmt.Sprintf("lead lookup failed: %s", criterion)
		}
		if exists {
			continue
		}
		if _, err := rt.AddReviewItem(ctx, candidate); err != nil {
			p.log.Warn("review item create failed", "url", candidate.URL, "error", err)
			return models.UnitFailed, fmt.Sprintf("review item failed: %s", criterion)
		}
		added++
	}

	if added == 0 {
		return models.UnitSkipped, fmt.Sprintf("no new leads: %s", criterion)
	}
	return models.UnitSucceeded, fmt.Sprintf("%d candidates: %s", added, criterion)
}
