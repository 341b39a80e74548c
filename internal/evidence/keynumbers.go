package evidence

import "regexp"

// MaxKeyNumbers caps how many figures are extracted per evidence item.
const MaxKeyNumbers = 4

// keyNumberPatterns is the fixed, ordered pattern table for "key number"
// extraction. First match per pattern wins; extraction stops at the cap.
var keyNumberPatterns = []*regexp.Regexp{
	// Currency amounts: $4.2 billion, €300m, £1,250
	regexp.MustCompile(`[$€£¥]\s?\d[\d,]*(?:\.\d+)?\s?(?:thousand|million|billion|trillion|[kmbt]n?)?`),
	// Percentages: 3.5%, -0.25%, 12 percent
	regexp.MustCompile(`-?\d+(?:\.\d+)?\s?(?:%|percent|pct)`),
	// Unit-qualified counts: 50 bps, 2 million barrels, 300 jobs
	regexp.MustCompile(`\d[\d,]*(?:\.\d+)?\s(?:bps|basis points|barrels|tonnes|tons|ounces|shares|jobs|units|points)`),
	// Bare 4-digit years
	regexp.MustCompile(`\b(?:19|20)\d{2}\b`),
}

// ExtractKeyNumbers pulls up to MaxKeyNumbers figure strings from text using
// the ordered pattern table, preserving first-found order.
func ExtractKeyNumbers(text string) []string {
	var numbers []string
	seen := map[string]bool{}

	for _, pattern := range keyNumberPatterns {
		if len(numbers) >= MaxKeyNumbers {
			break
		}
		match := pattern.FindString(text)
		if match == "" || seen[match] {
			continue
		}
		seen[match] = true
		numbers = append(numbers, match)
	}

	return numbers
}
