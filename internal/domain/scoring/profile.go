package scoring

import "math"

// Attributes holds the ten SCA sensory sub-scores. Values are conventionally
// in [0,10] but are used as given.
type Attributes struct {
	FragranceAroma float64 `json:"fragrance_aroma" yaml:"fragrance_aroma"`
	Flavor         float64 `json:"flavor" yaml:"flavor"`
	Aftertaste     float64 `json:"aftertaste" yaml:"aftertaste"`
	Acidity        float64 `json:"acidity" yaml:"acidity"`
	Body           float64 `json:"body" yaml:"body"`
	Balance        float64 `json:"balance" yaml:"balance"`
	Uniformity     float64 `json:"uniformity" yaml:"uniformity"`
	CleanCup       float64 `json:"clean_cup" yaml:"clean_cup"`
	Sweetness      float64 `json:"sweetness" yaml:"sweetness"`
	Overall        float64 `json:"overall" yaml:"overall"`
}

// Uniform returns Attributes with every sub-score set to v.
func Uniform(v float64) Attributes {
	return Attributes{v, v, v, v, v, v, v, v, v, v}
}

// Weighted returns the sum of each attribute multiplied by the matching weight.
func (a Attributes) Weighted(w Attributes) float64 {
	return a.FragranceAroma*w.FragranceAroma +
		a.Flavor*w.Flavor +
		a.Aftertaste*w.Aftertaste +
		a.Acidity*w.Acidity +
		a.Body*w.Body +
		a.Balance*w.Balance +
		a.Uniformity*w.Uniformity +
		a.CleanCup*w.CleanCup +
		a.Sweetness*w.Sweetness +
		a.Overall*w.Overall
}

// CuppingInput is the normalised record every cupping-style profile scores.
// Profiles read only the defect and green-bean fields they care about.
type CuppingInput struct {
	Attributes

	// Defect counts are whole numbers held as float64 so very large
	// counts keep lowering the score instead of overflowing.
	Defects          float64
	PrimaryDefects   float64
	SecondaryDefects float64
	Moisture         float64
}

// DefectPenalty holds points subtracted per recorded defect.
type DefectPenalty struct {
	Single    float64
	Primary   float64
	Secondary float64
}

// Of returns the total penalty for in.
func (d DefectPenalty) Of(in CuppingInput) float64 {
	return in.Defects*d.Single +
		in.PrimaryDefects*d.Primary +
		in.SecondaryDefects*d.Secondary
}

// GreenBlend mixes the cupping total with a green-bean grading score:
// green = 100 - (primary*PrimaryWeight + secondary*SecondaryWeight).
type GreenBlend struct {
	CupShare        float64
	GreenShare      float64
	PrimaryWeight   float64
	SecondaryWeight float64
}

// Apply blends total with the green score derived from in.
func (g GreenBlend) Apply(total float64, in CuppingInput) float64 {
	green := 100 - (in.PrimaryDefects*g.PrimaryWeight + in.SecondaryDefects*g.SecondaryWeight)
	return total*g.CupShare + green*g.GreenShare
}

// Rule appends Advice when Applies reports true.
type Rule struct {
	Applies func(in CuppingInput) bool
	Advice  string
}

// Profile parameterises one scoring variant.
type Profile struct {
	Name        string
	Weights     Attributes
	Penalty     DefectPenalty
	Blend       *GreenBlend
	FloorAtZero bool
	// Bands may be empty, in which case no grade or default
	// recommendations are produced.
	Bands BandTable
	Rules []Rule
}

// Score runs the profile over in. Every rule is evaluated; advisories keep
// the order band defaults first, then rules in declaration order.
func (p *Profile) Score(in CuppingInput) Result {
	total := in.Attributes.Weighted(p.Weights) - p.Penalty.Of(in)
	if p.Blend != nil {
		total = p.Blend.Apply(total, in)
	}
	if p.FloorAtZero {
		total = math.Max(0, total)
	}
	score := round1(total)

	res := Result{Score: score, Recommendations: []string{}}
	if len(p.Bands) > 0 {
		b := p.Bands.Classify(score)
		res.Grade = b.Grade
		res.Quality = b.Description
		res.Recommendations = append(res.Recommendations, b.Recommendations[0], b.Recommendations[1])
	}
	for _, r := range p.Rules {
		if r.Applies(in) {
			res.Recommendations = append(res.Recommendations, r.Advice)
		}
	}
	return res
}

// Advisory texts shared by the profiles.
const (
	AdviceDrying            = "Moisture content exceeds 12%: dry the beans further before storage"
	AdvicePrimarySorting    = "High primary defect count: improve sorting before export"
	AdviceProcessing        = "Low acidity: review processing methods to preserve brightness"
	AdviceRoastAdjustment   = "Light body: adjust the roast profile to build more body"
	AdviceFlavorDevelopment = "Weak flavor: focus on flavor development during roasting"
	AdviceDefectSorting     = "Several defects detected: improve bean sorting"
)

var (
	moistureRule = Rule{Applies: func(in CuppingInput) bool { return in.Moisture > 12 }, Advice: AdviceDrying}
	primaryRule  = Rule{Applies: func(in CuppingInput) bool { return in.PrimaryDefects > 5 }, Advice: AdvicePrimarySorting}
	acidityRule  = Rule{Applies: func(in CuppingInput) bool { return in.Acidity < 4 }, Advice: AdviceProcessing}
	bodyRule     = Rule{Applies: func(in CuppingInput) bool { return in.Body < 4 }, Advice: AdviceRoastAdjustment}
	flavorRule   = Rule{Applies: func(in CuppingInput) bool { return in.Flavor < 5 }, Advice: AdviceFlavorDevelopment}
	defectRule   = Rule{Applies: func(in CuppingInput) bool { return in.Defects > 3 }, Advice: AdviceDefectSorting}
)

// QualityProfile is the combined green-bean and cupping quality calculator.
var QualityProfile = &Profile{
	Name:    "quality",
	Weights: Uniform(1),
	Penalty: DefectPenalty{Primary: 2, Secondary: 1},
	Blend:   &GreenBlend{CupShare: 0.7, GreenShare: 0.3, PrimaryWeight: 1, SecondaryWeight: 0.5},
	Bands: BandTable{
		{Min: 90, Grade: "A", Description: "Exceptional", Recommendations: [2]string{
			"Suitable for specialty micro-lot offerings",
			"Preserve the current processing and storage protocol",
		}},
		{Min: 80, Grade: "B", Description: "Excellent", Recommendations: [2]string{
			"Market as premium specialty coffee",
			"Fine-tune roast development to highlight origin character",
		}},
		{Min: 70, Grade: "C", Description: "Good", Recommendations: [2]string{
			"Suitable for specialty blends",
			"Review processing consistency to lift cup quality",
		}},
		{Min: 60, Grade: "D", Description: "Fair", Recommendations: [2]string{
			"Consider for commercial blends",
			"Audit harvesting and sorting practices",
		}},
		{Grade: "E", Description: "Below Standard", Recommendations: [2]string{
			"Not recommended for specialty use",
			"Investigate processing, drying and storage conditions",
		}},
	},
	Rules: []Rule{moistureRule, primaryRule, acidityRule},
}

// CuppingProfile is the standalone cupping calculator.
var CuppingProfile = &Profile{
	Name:    "cupping",
	Weights: Uniform(1),
	Penalty: DefectPenalty{Single: 2},
	Bands: BandTable{
		{Min: 90, Grade: "Outstanding", Description: "Complex, vibrant cup with exceptional clarity and a long, sweet finish", Recommendations: [2]string{
			"Ideal for single-origin specialty offerings",
			"Use a light to medium roast to showcase origin character",
		}},
		{Min: 85, Grade: "Excellent", Description: "Well-balanced cup with distinct character and pleasant sweetness", Recommendations: [2]string{
			"Suitable for premium single-origin or high-end blends",
			"Experiment with brew ratios to highlight sweetness",
		}},
		{Min: 80, Grade: "Good", Description: "Clean, pleasant cup with moderate complexity", Recommendations: [2]string{
			"Suitable for specialty blends",
			"Adjust the roast profile to develop more sweetness",
		}},
		{Min: 75, Grade: "Fair", Description: "Acceptable cup with limited complexity and some flat notes", Recommendations: [2]string{
			"Best used as a blend component",
			"Review green coffee sourcing and storage",
		}},
		{Grade: "Below Standard", Description: "Muted cup with noticeable defects or off-flavours", Recommendations: [2]string{
			"Not recommended for specialty use",
			"Reassess processing and sorting before roasting",
		}},
	},
	Rules: []Rule{acidityRule, bodyRule, flavorRule, defectRule},
}

// EvaluationProfile backs the persisted cupping evaluation form: a floored
// raw score without grade or advisories.
var EvaluationProfile = &Profile{
	Name:        "evaluation",
	Weights:     Uniform(1),
	Penalty:     DefectPenalty{Single: 2},
	FloorAtZero: true,
}
