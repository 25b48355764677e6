package intake

import (
	"context"

	"github.com/ismailopm12/coffeeqc/internal/domain/scoring"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
)

// Evaluate normalises f for kind k, scores it with s and renders the outcome.
func Evaluate(ctx context.Context, s scoring.Scorer, k Kind, f Fields) (types.Outcome, error) {
	if k == KindRoast {
		res, err := s.ScoreRoast(ctx, Roast(f))
		if err != nil {
			return types.Outcome{}, err
		}
		return RoastOutcome(res), nil
	}
	p := k.Profile()
	if p == nil {
		return types.Outcome{}, ErrUnknownKind
	}
	res, err := s.ScoreCupping(ctx, p, Cupping(f))
	if err != nil {
		return types.Outcome{}, err
	}
	return CuppingOutcome(k, res), nil
}

// CuppingOutcome renders a cupping-style result.
func CuppingOutcome(k Kind, r scoring.Result) types.Outcome {
	score := r.Score
	return types.Outcome{
		Kind:            string(k),
		Score:           &score,
		Grade:           r.Grade,
		Quality:         r.Quality,
		Recommendations: append([]string{}, r.Recommendations...),
	}
}

// RoastOutcome renders a roast classification.
func RoastOutcome(r scoring.RoastResult) types.Outcome {
	ratio, pct := r.DevelopmentRatio, r.DevelopmentPercent
	return types.Outcome{
		Kind:               string(KindRoast),
		RoastLevel:         r.RoastLevel,
		DevelopmentRatio:   &ratio,
		DevelopmentPercent: &pct,
		QualityIndicators:  append([]string{}, r.QualityIndicators...),
		Recommendations:    append([]string{}, r.Recommendations...),
	}
}
