package scoring

// RoastInput carries roast-profile parameters in seconds, °C and grams.
type RoastInput struct {
	ChargeTemp      float64 `json:"charge_temp" yaml:"charge_temp"`
	PreheatTemp     float64 `json:"preheat_temp" yaml:"preheat_temp"`
	FirstCrackTime  float64 `json:"first_crack_time" yaml:"first_crack_time"`
	FirstCrackTemp  float64 `json:"first_crack_temp" yaml:"first_crack_temp"`
	DevelopmentTime float64 `json:"development_time" yaml:"development_time"`
	DropTemp        float64 `json:"drop_temp" yaml:"drop_temp"`
	TotalRoastTime  float64 `json:"total_roast_time" yaml:"total_roast_time"`
	BatchSize       float64 `json:"batch_size" yaml:"batch_size"`
}

// RoastResult is the outcome of ClassifyRoast.
type RoastResult struct {
	RoastLevel       string
	DevelopmentRatio float64
	// DevelopmentPercent is development time as a share of total roast time.
	DevelopmentPercent float64
	QualityIndicators  []string
	Recommendations    []string
}

// RoastLevel is one row of the drop-temperature table.
type RoastLevel struct {
	MinDropTemp float64
	Label       string
	Indicators  [3]string
}

// RoastLevels is ordered from the hottest drop temperature down; the last
// row is the default.
var RoastLevels = []RoastLevel{
	{MinDropTemp: 230, Label: "Dark Roast", Indicators: [3]string{
		"Bold, smoky flavor with bittersweet notes",
		"Low acidity",
		"Heavy body",
	}},
	{MinDropTemp: 210, Label: "Medium-Dark Roast", Indicators: [3]string{
		"Rich, caramelized flavor with chocolate notes",
		"Mild acidity",
		"Full body",
	}},
	{MinDropTemp: 190, Label: "Medium Roast", Indicators: [3]string{
		"Balanced flavor with caramel sweetness",
		"Medium acidity",
		"Medium body",
	}},
	{Label: "Light Roast", Indicators: [3]string{
		"Bright, fruity flavor with floral notes",
		"High acidity",
		"Light body",
	}},
}

// Development ratio window considered optimal, inclusive on both ends.
const (
	minOptimalRatio = 0.30
	maxOptimalRatio = 0.40
)

// Roast indicator and advisory texts.
const (
	IndicatorOptimalDevelopment = "Development ratio is optimal"
	IndicatorEfficientBatch     = "Large batch size: efficient roasting"

	AdviceIncreaseDevelopment = "Development ratio is low: increase development time after first crack"
	AdviceReduceDevelopment   = "Development ratio is high: reduce development time to avoid baked flavors"
	AdviceScorching           = "Charge temperature above 220°C: risk of scorching the beans"
	AdviceExtendedRoast       = "Charge temperature below 170°C: expect an extended roast time"
	AdviceEarlyCrack          = "First crack occurred early: consider lowering heat input"
	AdviceLateCrack           = "First crack occurred late: consider increasing heat input"
	AdviceSmallBatch          = "Small batch size: roasting efficiency may be reduced"
)

// LevelFor returns the roast level for a drop temperature.
func LevelFor(dropTemp float64) RoastLevel {
	for _, l := range RoastLevels[:len(RoastLevels)-1] {
		if dropTemp >= l.MinDropTemp {
			return l
		}
	}
	return RoastLevels[len(RoastLevels)-1]
}

// DevelopmentRatio returns developmentTime/firstCrackTime rounded to two
// decimals, or 0 when first crack time is not positive.
func DevelopmentRatio(developmentTime, firstCrackTime float64) float64 {
	if firstCrackTime <= 0 {
		return 0
	}
	return round2(developmentTime / firstCrackTime)
}

// ClassifyRoast derives the roast level, development ratio, indicators and
// advisories. Each rule is checked independently.
func ClassifyRoast(in RoastInput) RoastResult {
	level := LevelFor(in.DropTemp)
	ratio := DevelopmentRatio(in.DevelopmentTime, in.FirstCrackTime)

	res := RoastResult{
		RoastLevel:        level.Label,
		DevelopmentRatio:  ratio,
		QualityIndicators: []string{level.Indicators[0], level.Indicators[1], level.Indicators[2]},
		Recommendations:   []string{},
	}
	if in.TotalRoastTime > 0 {
		res.DevelopmentPercent = round1(in.DevelopmentTime / in.TotalRoastTime * 100)
	}

	switch {
	case ratio < minOptimalRatio:
		res.Recommendations = append(res.Recommendations, AdviceIncreaseDevelopment)
	case ratio > maxOptimalRatio:
		res.Recommendations = append(res.Recommendations, AdviceReduceDevelopment)
	default:
		res.QualityIndicators = append(res.QualityIndicators, IndicatorOptimalDevelopment)
	}

	if in.ChargeTemp > 220 {
		res.Recommendations = append(res.Recommendations, AdviceScorching)
	}
	if in.ChargeTemp < 170 {
		res.Recommendations = append(res.Recommendations, AdviceExtendedRoast)
	}
	if in.FirstCrackTime < 120 {
		res.Recommendations = append(res.Recommendations, AdviceEarlyCrack)
	}
	if in.FirstCrackTime > 240 {
		res.Recommendations = append(res.Recommendations, AdviceLateCrack)
	}
	if in.BatchSize > 500 {
		res.QualityIndicators = append(res.QualityIndicators, IndicatorEfficientBatch)
	}
	if in.BatchSize < 100 {
		res.Recommendations = append(res.Recommendations, AdviceSmallBatch)
	}
	return res
}
