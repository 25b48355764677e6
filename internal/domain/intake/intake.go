// Package intake normalises raw form records into the typed inputs the
// scoring engine accepts.
//
// Field names are matched case-insensitively and ignore '_' and '-', so
// "clean_cup", "cleanCup" and "Clean-Cup" address the same field. Missing,
// blank or unparseable numbers become 0.
package intake

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/ismailopm12/coffeeqc/internal/domain/scoring"
)

// ErrUnknownKind is returned for kinds the engine does not score.
var ErrUnknownKind = errors.New("unknown scoring kind")

// Kind names one scoring variant.
type Kind string

// Supported kinds.
const (
	KindQuality    Kind = "quality"
	KindCupping    Kind = "cupping"
	KindEvaluation Kind = "evaluation"
	KindRoast      Kind = "roast"
)

// Kinds lists every supported kind in a stable order.
var Kinds = []Kind{KindQuality, KindCupping, KindEvaluation, KindRoast}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Profile returns the cupping profile for k, or nil for roast.
func (k Kind) Profile() *scoring.Profile {
	switch k {
	case KindQuality:
		return scoring.QualityProfile
	case KindCupping:
		return scoring.CuppingProfile
	case KindEvaluation:
		return scoring.EvaluationProfile
	default:
		return nil
	}
}

// Ranked reports whether outcomes of k carry a comparable score.
func (k Kind) Ranked() bool {
	return k != KindRoast
}

// Fields is a flat record of form values as decoded from JSON or YAML.
type Fields map[string]any

func canonical(key string) string {
	key = strings.ToLower(key)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
}

// index builds a lookup keyed by the canonical field name. When two keys
// collapse to the same name the lexically smallest original key wins.
func (f Fields) index() map[string]any {
	out := make(map[string]any, len(f))
	picked := make(map[string]string, len(f))
	for k, v := range f {
		c := canonical(k)
		if prev, ok := picked[c]; ok && prev < k {
			continue
		}
		picked[c] = k
		out[c] = v
	}
	return out
}

// Number coerces v to float64. Anything unparseable is 0, as are booleans,
// NaN and the infinities.
func Number(v any) float64 {
	switch t := v.(type) {
	case bool:
		return 0
	case string:
		v = strings.TrimSpace(t)
	}
	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// Cupping builds a CuppingInput from f. "fragrance" and "aroma" are accepted
// as aliases for fragrance_aroma. Defect counts are truncated toward zero.
func Cupping(f Fields) scoring.CuppingInput {
	idx := f.index()
	num := func(names ...string) float64 {
		for _, n := range names {
			if v, ok := idx[n]; ok {
				return Number(v)
			}
		}
		return 0
	}
	return scoring.CuppingInput{
		Attributes: scoring.Attributes{
			FragranceAroma: num("fragrancearoma", "fragrance", "aroma"),
			Flavor:         num("flavor", "flavour"),
			Aftertaste:     num("aftertaste"),
			Acidity:        num("acidity"),
			Body:           num("body"),
			Balance:        num("balance"),
			Uniformity:     num("uniformity"),
			CleanCup:       num("cleancup"),
			Sweetness:      num("sweetness"),
			Overall:        num("overall"),
		},
		Defects:          math.Trunc(num("defects")),
		PrimaryDefects:   math.Trunc(num("primarydefects")),
		SecondaryDefects: math.Trunc(num("secondarydefects")),
		Moisture:         num("moisture", "moisturecontent"),
	}
}

// Roast builds a RoastInput from f.
func Roast(f Fields) scoring.RoastInput {
	idx := f.index()
	num := func(name string) float64 { return Number(idx[name]) }
	return scoring.RoastInput{
		ChargeTemp:      num("chargetemp"),
		PreheatTemp:     num("preheattemp"),
		FirstCrackTime:  num("firstcracktime"),
		FirstCrackTemp:  num("firstcracktemp"),
		DevelopmentTime: num("developmenttime"),
		DropTemp:        num("droptemp"),
		TotalRoastTime:  num("totalroasttime"),
		BatchSize:       num("batchsize"),
	}
}
