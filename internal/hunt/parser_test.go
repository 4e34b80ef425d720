package hunt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeads(t *testing.T) {
	t.Run("well formed lines", func(t *testing.T) {
		output := `LEAD|GSA|Janitorial services IDIQ|https://sam.gov/opp/abc123|  |Multi-year custodial contract
LEAD|Texas DOT|Road maintenance RFP|https://txsmartbuy.gov/rfp/99|tx|Regional road repair`

		leads := ParseLeads(output)
		require.Len(t, leads, 2)

		assert.Equal(t, "GSA", leads[0].Agency)
		assert.Equal(t, "Janitorial services IDIQ", leads[0].Title)
		assert.Equal(t, "https://sam.gov/opp/abc123", leads[0].URL)
		assert.Equal(t, "", leads[0].State)
		assert.Equal(t, "Multi-year custodial contract", leads[0].Summary)

		assert.Equal(t, "TX", leads[1].State)
	})

	t.Run("prose and malformed lines are dropped", func(t *testing.T) {
		output := `Here are the opportunities I found:

LEAD|GSA|Cloud migration|https://sam.gov/opp/xyz|VA|Agency-wide cloud move
LEAD|too|short
LEAD|Agency|No URL|not-a-url|CA|Bad link
- a bullet point the model added

Let me know if you need more.`

		leads := ParseLeads(output)
		require.Len(t, leads, 1)
		assert.Equal(t, "Cloud migration", leads[0].Title)
	})

	t.Run("summary keeps embedded pipes", func(t *testing.T) {
		output := "LEAD|DOE|Grid study|https://energy.gov/rfp/1|NM|Phase 1 | Phase 2 combined"
		leads := ParseLeads(output)
		require.Len(t, leads, 1)
		assert.Equal(t, "Phase 1 | Phase 2 combined", leads[0].Summary)
	})

	t.Run("empty output", func(t *testing.T) {
		assert.Empty(t, ParseLeads(""))
		assert.Empty(t, ParseLeads("No matching opportunities found."))
	})
}
