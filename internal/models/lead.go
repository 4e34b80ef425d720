package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// LeadStatus marks whether a lead is still tracked.
type LeadStatus string

const (
	LeadActive   LeadStatus = "active"
	LeadInactive LeadStatus = "inactive"
)

// Lead source values.
const (
	LeadSourceHunted = "hunted"
	LeadSourceManual = "manual"
)

// Verification outcomes written back by the verification processor.
const (
	VerifyOK     = "ok"
	VerifyBroken = "broken"
	VerifyError  = "error"
)

// Lead is an approved procurement link. Accepted review items commit here;
// the verification processor reads active leads and writes its outcome back.
type Lead struct {
	ID     surrealmodels.RecordID `json:"id"`
	Agency string                 `json:"agency"`
	Title  string                 `json:"title"`
	URL    string                 `json:"url"`
	State  string                 `json:"state,omitempty"`
	Status LeadStatus             `json:"status"`
	Source string                 `json:"source"`

	VerifyStatus   *string    `json:"verify_status,omitempty"`
	HTTPStatus     *int       `json:"http_status,omitempty"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
