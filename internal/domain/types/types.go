// Package types contains the JSON shapes shared by the API, the CLI and the
// repository.
package types

import "time"

// Outcome is the rendered result of scoring one record. Cupping-style kinds
// fill Score/Grade/Quality; roast fills the roast fields instead.
type Outcome struct {
	Kind               string   `json:"kind" yaml:"kind"`
	Score              *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Grade              string   `json:"grade,omitempty" yaml:"grade,omitempty"`
	Quality            string   `json:"quality,omitempty" yaml:"quality,omitempty"`
	RoastLevel         string   `json:"roast_level,omitempty" yaml:"roast_level,omitempty"`
	DevelopmentRatio   *float64 `json:"development_ratio,omitempty" yaml:"development_ratio,omitempty"`
	DevelopmentPercent *float64 `json:"development_percent,omitempty" yaml:"development_percent,omitempty"`
	QualityIndicators  []string `json:"quality_indicators,omitempty" yaml:"quality_indicators,omitempty"`
	Recommendations    []string `json:"recommendations" yaml:"recommendations"`
}

// Evaluation is a stored, scored submission.
type Evaluation struct {
	ID       string    `json:"id"`
	SampleID string    `json:"sample_id,omitempty"`
	Outcome  Outcome   `json:"outcome"`
	ScoredAt time.Time `json:"scored_at"`
}
