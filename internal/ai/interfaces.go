package ai

import (
	"context"

	"github.com/adamstosho/RugRadar/internal/models"
)

// Narrator turns a finished analysis into a short plain-language summary
type Narrator interface {
	// Summarize explains the assessment; it must not change the score
	Summarize(ctx context.Context, analysis *models.TokenAnalysis) (string, error)
}
