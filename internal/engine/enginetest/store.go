// Package enginetest provides an in-memory engine.Store for tests. It
// mirrors the conditional-update semantics and sentinel errors of the
// SurrealDB-backed store closely enough to exercise lifecycle races without
// a database container.
package enginetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/10thony/CobecDev-sub005/internal/db"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

type Store struct {
	mu      sync.Mutex
	jobs    map[string]*models.Job
	items   map[string]*models.ReviewItem
	leads   map[string]*models.Lead
	created []string // job ids in insertion order
}

func NewStore() *Store {
	return &Store{
		jobs:  make(map[string]*models.Job),
		items: make(map[string]*models.ReviewItem),
		leads: make(map[string]*models.Lead),
	}
}

func (s *Store) CreateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := models.MustRecordIDString(job.ID)
	now := time.Now().UTC()
	job.CreatedAt = now
	job.LastActivityAt = now

	cp := *job
	s.jobs[id] = &cp
	s.created = append(s.created, id)
	return nil
}

func (s *Store) GetJob(_ context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getJobLocked(id)
}

func (s *Store) getJobLocked(id string) (*models.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *Store) ListJobs(_ context.Context, activeOnly bool) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Job
	for _, id := range s.created {
		job := s.jobs[id]
		if job == nil {
			continue
		}
		if activeOnly && !job.Status.Active() {
			continue
		}
		out = append(out, *job)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivityAt.After(out[j].LastActivityAt)
	})
	return out, nil
}

func (s *Store) TransitionJob(_ context.Context, id string, to models.JobStatus, from ...models.JobStatus) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	matched := false
	for _, f := range from {
		if job.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return nil, db.ErrStatusConflict
	}

	now := time.Now().UTC()
	job.Status = to
	job.LastActivityAt = now
	if to == models.JobRunning && job.StartedAt == nil {
		t := now
		job.StartedAt = &t
	}
	if to.Terminal() && job.CompletedAt == nil {
		t := now
		job.CompletedAt = &t
	}

	cp := *job
	return &cp, nil
}

func (s *Store) FailJob(_ context.Context, id string, jobErr models.JobError) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if job.Status != models.JobRunning && job.Status != models.JobPaused {
		return nil, db.ErrStatusConflict
	}

	now := time.Now().UTC()
	e := jobErr
	job.Status = models.JobFailed
	job.LastError = &e
	job.CurrentTask = jobErr.Message
	job.LastActivityAt = now
	if job.CompletedAt == nil {
		t := now
		job.CompletedAt = &t
	}

	cp := *job
	return &cp, nil
}

func (s *Store) RecordUnit(_ context.Context, id string, outcome models.UnitOutcome, task string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return db.ErrNotFound
	}
	if job.Status != models.JobRunning {
		return db.ErrStatusConflict
	}

	job.ProcessedUnits++
	switch outcome {
	case models.UnitSucceeded:
		job.SucceededUnits++
	case models.UnitSkipped:
		job.SkippedUnits++
	case models.UnitFailed:
		job.FailedUnits++
	}
	job.Checkpoint++
	job.CurrentTask = task
	job.LastActivityAt = time.Now().UTC()
	return nil
}

func (s *Store) SetJobTotal(_ context.Context, id string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return db.ErrNotFound
	}
	job.TotalUnits = total
	job.LastActivityAt = time.Now().UTC()
	return nil
}

func (s *Store) SetJobTask(_ context.Context, id string, task string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return db.ErrNotFound
	}
	job.CurrentTask = task
	job.LastActivityAt = time.Now().UTC()
	return nil
}

func (s *Store) RequestCancel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return db.ErrNotFound
	}
	if !job.Status.Active() {
		return db.ErrStatusConflict
	}
	job.CancellationRequested = true
	job.LastActivityAt = time.Now().UTC()
	return nil
}

func (s *Store) CancellationRequested(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return false, db.ErrNotFound
	}
	return job.CancellationRequested, nil
}

func (s *Store) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.jobs, id)
	for itemID, item := range s.items {
		if models.MustRecordIDString(item.Job) == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *Store) CreateReviewItem(_ context.Context, item *models.ReviewItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.Status = models.ReviewPending
	item.CreatedAt = time.Now().UTC()
	cp := *item
	s.items[models.MustRecordIDString(item.ID)] = &cp
	return nil
}

func (s *Store) GetReviewItem(_ context.Context, id string) (*models.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *Store) ListPendingReview(_ context.Context, jobID string) ([]models.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ReviewItem
	for _, item := range s.items {
		if models.MustRecordIDString(item.Job) == jobID && item.Status == models.ReviewPending {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CountPendingReview(_ context.Context, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		if models.MustRecordIDString(item.Job) == jobID && item.Status == models.ReviewPending {
			n++
		}
	}
	return n, nil
}

func (s *Store) ResolveReviewItem(_ context.Context, id string, accept bool, leadID string) (*models.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if item.Status != models.ReviewPending {
		return nil, db.ErrAlreadyResolved
	}

	now := time.Now().UTC()
	item.ResolvedAt = &now
	if accept {
		item.Status = models.ReviewAccepted
		s.leads[leadID] = &models.Lead{
			Agency: item.Candidate.Agency,
			Title:  item.Candidate.Title,
			URL:    item.Candidate.URL,
			State:  item.Candidate.State,
			Status: models.LeadActive,
			Source: models.LeadSourceHunted,
		}
	} else {
		item.Status = models.ReviewRejected
	}

	cp := *item
	return &cp, nil
}

// Leads returns the leads committed through accepted review items, for
// assertions.
func (s *Store) Leads() []models.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Lead
	for _, l := range s.leads {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}
