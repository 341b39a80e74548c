package briefing

import (
	"fmt"
	"strings"
)

// systemPrompt frames every generation call. The contract mirrors the brief
// schema exactly; the validator enforces it after parsing.
const systemPrompt = `You are a markets intelligence analyst. You write a structured daily brief grounded strictly in the evidence pack supplied by the user. Respond with a single JSON object and nothing else - no prose, no markdown fences.

The JSON object must contain:
- "brief_topic": non-empty string naming the dominant theme
- "breaking_news": array of 1+ items, each {"tier": 1-3, "headline", "time", "summary", "key_insight", "actionable_advice"} all non-empty
- "key_numbers": array of 1+ items, each {"title", "value", "context"} all non-empty
- "market_pulse": array of 1+ items, each {"asset", "direction", "catalyst", "why_it_matters"} all non-empty
- "crypto_barometer": optional array with the same shape as market_pulse
- "tech_emergence": optional array of {"technology", "stage", "signal"}
- "idea_desk": array of 1+ items, each {"action", "ticker", "rationale"} all non-empty; action is one of BUY, SELL, HOLD, SHORT, LONG, HEDGE
- "final_intel": object {"summary", "investment_horizon", "key_risks": [1+ non-empty strings]}

Only use facts present in the evidence pack. Cite tickers only when the evidence supports them.`

// draftPrompt builds the user message for the initial Drafting state.
func draftPrompt(evidenceText string) string {
	return evidenceText
}

// repairPrompt builds the single repair round-trip: same evidence, the full
// validation error list, and the broken JSON to correct.
func repairPrompt(evidenceText string, errors []string, brokenJSON string) string {
	var sb strings.Builder
	sb.WriteString("Your previous brief failed contract validation. Fix every error listed and return the complete corrected JSON object only.\n\nValidation errors:\n")
	for _, e := range errors {
		sb.WriteString(fmt.Sprintf("- %s\n", e))
	}
	sb.WriteString("\nYour previous output:\n")
	sb.WriteString(brokenJSON)
	sb.WriteString("\n\nEvidence pack (unchanged):\n\n")
	sb.WriteString(evidenceText)
	return sb.String()
}
