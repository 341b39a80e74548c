package briefing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
)

// fakeLLM returns canned responses in order and records the prompts it saw.
type fakeLLM struct {
	responses []string
	errs      []error
	calls     [][]interfaces.Message
}

func (f *fakeLLM) Chat(_ context.Context, messages []interfaces.Message) (string, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, messages)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx >= len(f.responses) {
		return "", errors.New("no canned response")
	}
	return f.responses[idx], nil
}

func (f *fakeLLM) HealthCheck(context.Context) error { return nil }
func (f *fakeLLM) ModelName() string                 { return "fake-model-1" }
func (f *fakeLLM) Close() error                      { return nil }

func TestGenerator_AcceptsFirstDraft(t *testing.T) {
	llm := &fakeLLM{responses: []string{validBriefJSON}}
	gen := NewGenerator(llm, common.GetLogger())

	result, err := gen.Generate(context.Background(), "evidence pack text")
	require.NoError(t, err)

	assert.Equal(t, "Rates and chips", result.Brief.BriefTopic)
	assert.Equal(t, "fake-model-1", result.ModelUsed)
	assert.False(t, result.Repaired)
	assert.Len(t, llm.calls, 1, "no repair call expected")
	assert.JSONEq(t, validBriefJSON, result.RawJSON)
}

func TestGenerator_RepairsInvalidDraft(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"brief_topic": "incomplete"}`, validBriefJSON}}
	gen := NewGenerator(llm, common.GetLogger())

	result, err := gen.Generate(context.Background(), "evidence pack text")
	require.NoError(t, err)

	assert.True(t, result.Repaired)
	require.Len(t, llm.calls, 2)

	// Repair prompt must carry the error list, the broken JSON, and the pack
	repairMsg := llm.calls[1][1].Content
	assert.Contains(t, repairMsg, "Validation errors:")
	assert.Contains(t, repairMsg, "incomplete")
	assert.Contains(t, repairMsg, "evidence pack text")
}

func TestGenerator_RejectsAfterFailedRepair(t *testing.T) {
	llm := &fakeLLM{responses: []string{"garbage", "still garbage"}}
	gen := NewGenerator(llm, common.GetLogger())

	result, err := gen.Generate(context.Background(), "evidence")
	require.Error(t, err)
	assert.Nil(t, result, "rejected cycles produce no artifact")

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.NotEmpty(t, rejected.Errors)

	assert.Len(t, llm.calls, 2, "exactly one repair attempt")
}

func TestGenerator_DraftCallFailure(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("api timeout")}}
	gen := NewGenerator(llm, common.GetLogger())

	_, err := gen.Generate(context.Background(), "evidence")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draft generation failed")
}
