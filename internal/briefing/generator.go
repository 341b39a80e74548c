package briefing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/models"
)

// State is one step of the generation/repair cycle.
type State string

const (
	StateDrafting     State = "drafting"
	StateValidating   State = "validating"
	StateRepairing    State = "repairing"
	StateRevalidating State = "revalidating"
	StateAccepted     State = "accepted"
	StateRejected     State = "rejected"
)

// RejectedError is returned when a brief still fails validation after the
// single repair round. It carries the full error list; no artifact is stored.
type RejectedError struct {
	Errors []string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("brief rejected after repair: %s", strings.Join(e.Errors, "; "))
}

// Result is an accepted generation cycle.
type Result struct {
	Brief          *models.Brief
	RawJSON        string
	Prompt         string
	ModelUsed      string
	ProcessingTime time.Duration
	Repaired       bool
}

// Generator drives the Drafting -> Validating -> {Accepted | Repairing ->
// Revalidating -> {Accepted | Rejected}} state machine around one LLM
// collaborator. Rejection is fatal for the run; there is no second repair.
type Generator struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewGenerator creates a brief generator over the given LLM service.
func NewGenerator(llm interfaces.LLMService, logger arbor.ILogger) *Generator {
	return &Generator{
		llm:    llm,
		logger: logger,
	}
}

// Generate runs one full cycle over the evidence pack text. A Brief is only
// returned in the Accepted state.
func (g *Generator) Generate(ctx context.Context, evidenceText string) (*Result, error) {
	start := time.Now()
	state := StateDrafting

	g.logger.Info().
		Str("state", string(state)).
		Int("evidence_chars", len(evidenceText)).
		Msg("Starting brief generation cycle")

	response, err := g.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: draftPrompt(evidenceText)},
	})
	if err != nil {
		return nil, fmt.Errorf("draft generation failed: %w", err)
	}

	state = StateValidating
	brief, errors := parseAndValidate(response)
	if len(errors) == 0 {
		return g.accept(brief, response, evidenceText, start, false), nil
	}

	g.logger.Warn().
		Str("state", string(state)).
		Int("error_count", len(errors)).
		Str("errors", strings.Join(errors, "; ")).
		Msg("Brief failed validation, attempting repair")

	state = StateRepairing
	g.logger.Debug().Str("state", string(state)).Msg("Sending repair prompt")
	repaired, err := g.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: repairPrompt(evidenceText, errors, cleanMarkdownFences(response))},
	})
	if err != nil {
		return nil, fmt.Errorf("repair generation failed: %w", err)
	}

	state = StateRevalidating
	g.logger.Debug().Str("state", string(state)).Msg("Revalidating repaired brief")
	brief, errors = parseAndValidate(repaired)
	if len(errors) == 0 {
		return g.accept(brief, repaired, evidenceText, start, true), nil
	}

	state = StateRejected
	g.logger.Error().
		Str("state", string(state)).
		Str("errors", strings.Join(errors, "; ")).
		Msg("Brief rejected after repair round")

	return nil, &RejectedError{Errors: errors}
}

// parseAndValidate folds parse failures into the validation error list so
// Drafting always proceeds to Validating with a result.
func parseAndValidate(response string) (*models.Brief, []string) {
	brief, parseErrs := ParseBrief(response)
	if len(parseErrs) > 0 {
		return nil, parseErrs
	}
	return brief, ValidateBrief(brief)
}

func (g *Generator) accept(brief *models.Brief, response, evidenceText string, start time.Time, repaired bool) *Result {
	raw := cleanMarkdownFences(response)

	// Re-marshal for canonical stored form when possible
	if compact, err := json.Marshal(brief); err == nil {
		raw = string(compact)
	}

	elapsed := time.Since(start)
	g.logger.Info().
		Str("state", string(StateAccepted)).
		Str("topic", brief.BriefTopic).
		Bool("repaired", repaired).
		Dur("duration", elapsed).
		Msg("Brief accepted")

	return &Result{
		Brief:          brief,
		RawJSON:        raw,
		Prompt:         evidenceText,
		ModelUsed:      g.llm.ModelName(),
		ProcessingTime: elapsed,
		Repaired:       repaired,
	}
}
