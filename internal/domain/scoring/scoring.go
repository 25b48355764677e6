// Package scoring computes SCA-style cupping scores, grade bands, roast
// classifications and the advisories that accompany them.
//
// Every function in this package is pure: inputs are plain numbers, nothing is
// clamped or validated, and identical inputs always produce identical results.
// Callers are expected to normalise raw form values (see package intake)
// before invoking the engine.
package scoring

import (
	"context"
	"fmt"
	"math"
)

// Band is one row of a descending threshold table.
type Band struct {
	// Min is the inclusive lower bound. The last band of a table is the
	// default and its Min is ignored.
	Min             float64
	Grade           string
	Description     string
	Recommendations [2]string
}

// BandTable is ordered from the highest threshold to the default band.
type BandTable []Band

// Classify returns the first band whose Min the score reaches. Scores below
// every threshold, including negative ones, fall into the last band.
func (t BandTable) Classify(score float64) Band {
	if len(t) == 0 {
		return Band{}
	}
	for _, b := range t[:len(t)-1] {
		if score >= b.Min {
			return b
		}
	}
	return t[len(t)-1]
}

// Result is the outcome of a cupping-style scoring pass.
type Result struct {
	Score           float64
	Grade           string
	Quality         string
	Recommendations []string
}

// Scorer is the context-aware entry point used by the service pipeline.
type Scorer interface {
	ScoreCupping(ctx context.Context, p *Profile, in CuppingInput) (Result, error)
	ScoreRoast(ctx context.Context, in RoastInput) (RoastResult, error)
}

// Engine implements Scorer on top of the pure functions of this package.
type Engine struct{}

// NewEngine returns a ready Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ScoreCupping scores in with profile p. The only error is a cancelled ctx.
func (e *Engine) ScoreCupping(ctx context.Context, p *Profile, in CuppingInput) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("score %s: %w", p.Name, err)
	}
	return p.Score(in), nil
}

// ScoreRoast classifies a roast. The only error is a cancelled ctx.
func (e *Engine) ScoreRoast(ctx context.Context, in RoastInput) (RoastResult, error) {
	if err := ctx.Err(); err != nil {
		return RoastResult{}, fmt.Errorf("score roast: %w", err)
	}
	return ClassifyRoast(in), nil
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func round2(x float64) float64 { return math.Round(x*100) / 100 }
