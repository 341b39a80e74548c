package common

import (
	"github.com/google/uuid"
)

// NewArticleID generates a unique article ID with the "article_" prefix
func NewArticleID() string {
	return "article_" + uuid.New().String()
}

// NewAnalysisID generates a unique analysis ID with the "analysis_" prefix
func NewAnalysisID() string {
	return "analysis_" + uuid.New().String()
}

// NewRecommendationID generates a unique recommendation ID with the "rec_" prefix
func NewRecommendationID() string {
	return "rec_" + uuid.New().String()
}
