package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// JobResponse is the API shape of a job record.
type JobResponse struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Status string         `json:"status"`
	Params map[string]any `json:"params,omitempty"`

	TotalUnits     int `json:"total_units"`
	ProcessedUnits int `json:"processed_units"`
	SucceededUnits int `json:"succeeded_units"`
	SkippedUnits   int `json:"skipped_units"`
	FailedUnits    int `json:"failed_units"`
	Checkpoint     int `json:"checkpoint"`

	CurrentTask           string           `json:"current_task,omitempty"`
	LastError             *models.JobError `json:"last_error,omitempty"`
	CancellationRequested bool             `json:"cancellation_requested"`

	CreatedAt      string  `json:"created_at"`
	StartedAt      *string `json:"started_at,omitempty"`
	LastActivityAt string  `json:"last_activity_at"`
	CompletedAt    *string `json:"completed_at,omitempty"`
}

// ReviewItemResponse is the API shape of a review item.
type ReviewItemResponse struct {
	ID         string               `json:"id"`
	JobID      string               `json:"job_id"`
	Status     string               `json:"status"`
	Candidate  models.CandidateLead `json:"candidate"`
	CreatedAt  string               `json:"created_at"`
	ResolvedAt *string              `json:"resolved_at,omitempty"`
}

// LeadResponse is the API shape of a lead.
type LeadResponse struct {
	ID             string  `json:"id"`
	Agency         string  `json:"agency"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	State          string  `json:"state,omitempty"`
	Status         string  `json:"status"`
	Source         string  `json:"source"`
	VerifyStatus   *string `json:"verify_status,omitempty"`
	HTTPStatus     *int    `json:"http_status,omitempty"`
	LastVerifiedAt *string `json:"last_verified_at,omitempty"`
}

// StatusResponse summarizes the job table.
type StatusResponse struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Pending int `json:"pending"`
	Running int `json:"running"`
	Paused  int `json:"paused"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func jobToResponse(j *models.Job) JobResponse {
	return JobResponse{
		ID:                    models.MustRecordIDString(j.ID),
		Kind:                  string(j.Kind),
		Status:                string(j.Status),
		Params:                j.Params,
		TotalUnits:            j.TotalUnits,
		ProcessedUnits:        j.ProcessedUnits,
		SucceededUnits:        j.SucceededUnits,
		SkippedUnits:          j.SkippedUnits,
		FailedUnits:           j.FailedUnits,
		Checkpoint:            j.Checkpoint,
		CurrentTask:           j.CurrentTask,
		LastError:             j.LastError,
		CancellationRequested: j.CancellationRequested,
		CreatedAt:             formatTime(j.CreatedAt),
		StartedAt:             formatTimePtr(j.StartedAt),
		LastActivityAt:        formatTime(j.LastActivityAt),
		CompletedAt:           formatTimePtr(j.CompletedAt),
	}
}

func reviewToResponse(item *models.ReviewItem) ReviewItemResponse {
	return ReviewItemResponse{
		ID:         models.MustRecordIDString(item.ID),
		JobID:      models.MustRecordIDString(item.Job),
		Status:     string(item.Status),
		Candidate:  item.Candidate,
		CreatedAt:  formatTime(item.CreatedAt),
		ResolvedAt: formatTimePtr(item.ResolvedAt),
	}
}

func leadToResponse(l *models.Lead) LeadResponse {
	return LeadResponse{
		ID:             models.MustRecordIDString(l.ID),
		Agency:         l.Agency,
		Title:          l.Title,
		URL:            l.URL,
		State:          l.State,
		Status:         string(l.Status),
		Source:         l.Source,
		VerifyStatus:   l.VerifyStatus,
		HTTPStatus:     l.HTTPStatus,
		LastVerifiedAt: formatTimePtr(l.LastVerifiedAt),
	}
}

type createJobRequest struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params"`
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	job, err := s.engine.Create(r.Context(), models.JobKind(req.Kind), req.Params)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, jobToResponse(job))
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	var (
		jobs []models.Job
		err  error
	)
	if r.URL.Query().Get("active") == "true" {
		jobs, err = s.engine.ListActive(r.Context())
	} else {
		jobs, err = s.engine.List(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]JobResponse, len(jobs))
	for i := range jobs {
		out[i] = jobToResponse(&jobs[i])
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) startJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.Start(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) resumeJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.Resume(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, jobToResponse(job))
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listReview(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.PendingReview(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]ReviewItemResponse, len(items))
	for i := range items {
		out[i] = reviewToResponse(&items[i])
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) acceptReview(w http.ResponseWriter, r *http.Request) {
	item, err := s.engine.Accept(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reviewToResponse(item))
}

func (s *Server) rejectReview(w http.ResponseWriter, r *http.Request) {
	item, err := s.engine.Reject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reviewToResponse(item))
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	leads, err := s.leads.ListLeads(r.Context(), activeOnly)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]LeadResponse, len(leads))
	for i := range leads {
		out[i] = leadToResponse(&leads[i])
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.engine.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := StatusResponse{Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case models.JobPending:
			resp.Pending++
		case models.JobRunning:
			resp.Running++
		case models.JobPaused:
			resp.Paused++
		}
		if j.Status.Active() {
			resp.Active++
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}
