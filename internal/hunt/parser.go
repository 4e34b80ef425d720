package hunt

import (
	"strings"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// ParseLeads extracts candidate leads from the model's pipe-delimited output.
// Lines that are not well-formed LEAD records are ignored; models wrap their
// answers in prose often enough that strictness here would fail whole units
// for nothing.
func ParseLeads(output string) []models.CandidateLead {
	var out []models.CandidateLead

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "LEAD|") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}

		candidate := models.CandidateLead{
			Agency: strings.TrimSpace(parts[1]),
			Title:  strings.TrimSpace(parts[2]),
			URL:    strings.TrimSpace(parts[3]),
		}
		if len(parts) > 4 {
			candidate.State = strings.ToUpper(strings.TrimSpace(parts[4]))
		}
		if len(parts) > 5 {
			candidate.Summary = strings.TrimSpace(strings.Join(parts[5:], "|"))
		}

		if candidate.Title == "" || !validURL(candidate.URL) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func validURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
