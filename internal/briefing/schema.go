package briefing

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/meridian/internal/models"
)

// briefValidator validates Brief structs against their contract tags,
// reporting field paths using JSON names.
var briefValidator = newBriefValidator()

func newBriefValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseBrief strips optional markdown code fences and unmarshals the model's
// response into a Brief. A parse failure is equivalent to invalid JSON and is
// reported as a single contract error.
func ParseBrief(response string) (*models.Brief, []string) {
	cleaned := cleanMarkdownFences(response)
	if cleaned == "" {
		return nil, []string{"response: empty or non-JSON output"}
	}

	var brief models.Brief
	if err := json.Unmarshal([]byte(cleaned), &brief); err != nil {
		return nil, []string{fmt.Sprintf("response: invalid JSON: %v", err)}
	}
	return &brief, nil
}

// ValidateBrief checks a parsed brief against the fixed contract and returns
// the full error list, one entry per violated field path, not just the first.
func ValidateBrief(brief *models.Brief) []string {
	err := briefValidator.Struct(brief)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{fmt.Sprintf("validation failed: %v", err)}
	}

	var errors []string
	for _, fieldErr := range validationErrs {
		// Namespace is "Brief.breaking_news[0].headline"; drop the root
		path := fieldErr.Namespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		errors = append(errors, fmt.Sprintf("%s: failed '%s' check", path, fieldErr.Tag()))
	}
	return errors
}

// fencePattern matches a response wrapped entirely in markdown code fences.
var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// cleanMarkdownFences removes markdown code fences from an LLM response and
// falls back to the outermost JSON object when extra prose surrounds it.
func cleanMarkdownFences(s string) string {
	s = strings.TrimSpace(s)

	if matches := fencePattern.FindStringSubmatch(s); len(matches) > 1 {
		s = strings.TrimSpace(matches[1])
	}

	if strings.HasPrefix(s, "{") {
		return s
	}

	// Prose around the object: cut to the outermost braces
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return ""
}
