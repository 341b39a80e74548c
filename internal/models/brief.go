package models

import "time"

// Brief is the schema-validated structured output of one generation cycle.
// Field requirements are enforced by the briefing validator; a Brief is only
// persisted once it reaches the Accepted state.
type Brief struct {
	BriefTopic      string          `json:"brief_topic" validate:"required"`
	BreakingNews    []BreakingNews  `json:"breaking_news" validate:"required,min=1,dive"`
	KeyNumbers      []KeyNumber     `json:"key_numbers" validate:"required,min=1,dive"`
	MarketPulse     []MarketPulse   `json:"market_pulse" validate:"required,min=1,dive"`
	CryptoBarometer []MarketPulse   `json:"crypto_barometer,omitempty" validate:"omitempty,dive"`
	TechEmergence   []TechEmergence `json:"tech_emergence,omitempty" validate:"omitempty,dive"`
	IdeaDesk        []IdeaDeskEntry `json:"idea_desk" validate:"required,min=1,dive"`
	FinalIntel      FinalIntel      `json:"final_intel" validate:"required"`
}

// BreakingNews is a tiered headline entry in a brief.
type BreakingNews struct {
	Tier             int    `json:"tier" validate:"min=1,max=3"`
	Headline         string `json:"headline" validate:"required"`
	Time             string `json:"time" validate:"required"`
	Summary          string `json:"summary" validate:"required"`
	KeyInsight       string `json:"key_insight" validate:"required"`
	ActionableAdvice string `json:"actionable_advice" validate:"required"`
}

// KeyNumber is a headline figure surfaced from the evidence.
type KeyNumber struct {
	Title   string `json:"title" validate:"required"`
	Value   string `json:"value" validate:"required"`
	Context string `json:"context" validate:"required"`
}

// MarketPulse captures directional read on one asset.
// Reused for the optional crypto barometer section.
type MarketPulse struct {
	Asset        string `json:"asset" validate:"required"`
	Direction    string `json:"direction" validate:"required"`
	Catalyst     string `json:"catalyst" validate:"required"`
	WhyItMatters string `json:"why_it_matters" validate:"required"`
}

// TechEmergence flags an emerging technology theme.
type TechEmergence struct {
	Technology string `json:"technology" validate:"required"`
	Stage      string `json:"stage" validate:"required"`
	Signal     string `json:"signal" validate:"required"`
}

// IdeaDeskEntry is a trade-style idea; qualifying entries become Recommendations.
type IdeaDeskEntry struct {
	Action    string `json:"action" validate:"required"`
	Ticker    string `json:"ticker" validate:"required"`
	Rationale string `json:"rationale" validate:"required"`
}

// FinalIntel is the closing assessment of a brief.
type FinalIntel struct {
	Summary           string   `json:"summary" validate:"required"`
	InvestmentHorizon string   `json:"investment_horizon" validate:"required"`
	KeyRisks          []string `json:"key_risks" validate:"required,min=1,dive,required"`
}

// Analysis is the persisted record of one accepted brief generation cycle.
// RawResponse holds the accepted Brief verbatim; the record is immutable
// once stored (repairs happen before storage, not after).
type Analysis struct {
	ID             string `badgerhold:"key"`
	CreatedAt      time.Time
	ModelUsed      string
	ArticleCount   int
	ProcessingTime time.Duration
	Topic          string
	Prompt         string
	RawResponse    string
	QualityScore   float64
}
