package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// CreateLead inserts a lead directly (manual entry path).
func (c *Client) CreateLead(ctx context.Context, lead *models.Lead) error {
	id, err := models.RecordIDString(lead.ID)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}

	results, err := surrealdb.Query[[]models.Lead](ctx, c.db, `
		CREATE type::record("lead", $id) SET
			agency = $agency,
			title = $title,
			url = $url,
			state = $state,
			status = $status,
			source = $source
		RETURN AFTER
	`, map[string]any{
		"id":     id,
		"agency": lead.Agency,
		"title":  lead.Title,
		"url":    lead.URL,
		"state":  lead.State,
		"status": string(lead.Status),
		"source": lead.Source,
	})
	if err != nil {
		return fmt.Errorf("create lead: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		*lead = (*results)[0].Result[0]
	}
	return nil
}

// ListLeads returns leads, optionally filtered to active ones, newest first.
func (c *Client) ListLeads(ctx context.Context, activeOnly bool) ([]models.Lead, error) {
	where := ""
	if activeOnly {
		where = `WHERE status = "active"`
	}

	sql := fmt.Sprintf(`SELECT * FROM lead %s ORDER BY created_at DESC`, where)

	results, err := surrealdb.Query[[]models.Lead](ctx, c.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Lead{}, nil
	}
	return (*results)[0].Result, nil
}

// ListActiveLeads returns active leads oldest first, giving the verification
// processor a stable ordering for its checkpoint offsets.
func (c *Client) ListActiveLeads(ctx context.Context) ([]models.Lead, error) {
	results, err := surrealdb.Query[[]models.Lead](ctx, c.db, `
		SELECT * FROM lead WHERE status = "active" ORDER BY created_at ASC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list active leads: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Lead{}, nil
	}
	return (*results)[0].Result, nil
}

// MarkLeadVerified writes a verification outcome back onto the lead.
// httpStatus of 0 means no response was obtained.
func (c *Client) MarkLeadVerified(ctx context.Context, id string, verifyStatus string, httpStatus int) error {
	vars := map[string]any{
		"id":     id,
		"status": verifyStatus,
	}
	httpAssign := "http_status = NONE"
	if httpStatus > 0 {
		httpAssign = "http_status = $http_status"
		vars["http_status"] = httpStatus
	}

	sql := fmt.Sprintf(`
		UPDATE type::record("lead", $id) SET
			verify_status = $status,
			%s,
			last_verified_at = time::now()
	`, httpAssign)

	_, err := surrealdb.Query[any](ctx, c.db, sql, vars)
	if err != nil {
		return fmt.Errorf("mark lead verified: %w", wrapQueryError(err))
	}
	return nil
}

// LeadURLExists reports whether an active lead with the given URL exists.
// The hunt processor uses it to skip duplicate candidates.
func (c *Client) LeadURLExists(ctx context.Context, url string) (bool, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `
		SELECT count() AS c FROM lead WHERE url = $url GROUP ALL
	`, map[string]any{"url": url})
	if err != nil {
		return false, fmt.Errorf("lead url exists: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return false, nil
	}
	return (*results)[0].Result[0].C > 0, nil
}
