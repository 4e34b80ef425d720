package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ReviewStatus is the disposition state of a review item.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewAccepted ReviewStatus = "accepted"
	ReviewRejected ReviewStatus = "rejected"
)

// CandidateLead is the provisional lead payload produced by a hunt step.
type CandidateLead struct {
	Agency  string `json:"agency"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	State   string `json:"state"`
	Summary string `json:"summary,omitempty"`
}

// ReviewItem is a provisional result owned by exactly one job, awaiting
// human accept/reject. Items are never mutated once resolved.
type ReviewItem struct {
	ID         surrealmodels.RecordID `json:"id"`
	Job        surrealmodels.RecordID `json:"job"`
	Status     ReviewStatus           `json:"status"`
	Candidate  CandidateLead          `json:"candidate"`
	CreatedAt  time.Time              `json:"created_at"`
	ResolvedAt *time.Time             `json:"resolved_at,omitempty"`
}
