package verify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

// LeadStore provides the leads to verify and accepts the verdicts. *db.Client
// is the production implementation. ListActiveLeads must return a stable
// order so the checkpoint stays a valid offset across resume and recovery.
type LeadStore interface {
	ListActiveLeads(ctx context.Context) ([]models.Lead, error)
	MarkLeadVerified(ctx context.Context, id string, verifyStatus string, httpStatus int) error
}

// Processor runs verification jobs: one unit per active lead. Broken links
// and probe errors are failed units; the run always covers every lead.
type Processor struct {
	leads   LeadStore
	checker *Checker
	log     *slog.Logger
}

func NewProcessor(leads LeadStore, checker *Checker, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{leads: leads, checker: checker, log: log}
}

func (p *Processor) Kind() models.JobKind {
	return models.KindVerification
}

// Validate accepts empty params; a verification run needs no input beyond
// the lead table itself.
func (p *Processor) Validate(map[string]any) error {
	return nil
}

func (p *Processor) Run(ctx context.Context, rt *engine.Runtime) (engine.Result, error) {
	leads, err := p.leads.ListActiveLeads(ctx)
	if err != nil {
		return engine.Done, fmt.Errorf("list leads: %w", err)
	}

	if rt.Job().TotalUnits == 0 && len(leads) > 0 {
		if err := rt.SetTotal(ctx, len(leads)); err != nil {
			return engine.Done, fmt.Errorf("set total: %w", err)
		}
	}

	for i := rt.Job().Checkpoint; i < len(leads); i++ {
		stopping, err := rt.Stopping(ctx)
		if err != nil {
			return engine.Done, err
		}
		if stopping {
			return engine.Stopped, nil
		}

		outcome, task := p.verifyOne(ctx, leads[i])
		if err := rt.RecordUnit(ctx, outcome, task); err != nil {
			return engine.Done, err
		}
	}

	return engine.Done, nil
}

func (p *Processor) verifyOne(ctx context.Context, lead models.Lead) (models.UnitOutcome, string) {
	id := models.MustRecordIDString(lead.ID)

	if lead.URL == "" {
		return models.UnitSkipped, fmt.Sprintf("no URL: %s", lead.Title)
	}

	status, err := p.checker.Check(ctx, lead.URL)
	if err != nil {
		p.log.Warn("link probe failed", "lead_id", id, "url", lead.URL, "error", err)
		if merr := p.leads.MarkLeadVerified(ctx, id, models.VerifyError, 0); merr != nil {
			p.log.Warn("record verdict failed", "lead_id", id, "error", merr)
		}
		return models.UnitFailed, fmt.Sprintf("unreachable: %s", lead.URL)
	}

	verdict := models.VerifyBroken
	outcome := models.UnitFailed
	if status < 400 {
		verdict = models.VerifyOK
		outcome = models.UnitSucceeded
	}

	if err := p.leads.MarkLeadVerified(ctx, id, verdict, status); err != nil {
		p.log.Warn("record verdict failed", "lead_id", id, "error", err)
		return models.UnitFailed, fmt.Sprintf("verdict write failed: %s", lead.URL)
	}

	return outcome, fmt.Sprintf("%s (%d): %s", verdict, status, lead.URL)
}
