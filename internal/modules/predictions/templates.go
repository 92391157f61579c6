package predictions

import "github.com/progressio/prediction-engine/internal/domain"

// Static narrative templates keyed by the prediction's value band.
// These describe the band, not actual feature weights.

var factorTemplates = map[domain.Category][]string{
	domain.CategoryExcellent: {
		"Consistent engagement across recent sessions",
		"Strong progression on the target skill area",
		"Feature profile close to historically successful entities",
	},
	domain.CategoryGood: {
		"Steady session attendance",
		"Positive but uneven progression on the target skill area",
	},
	domain.CategoryAverage: {
		"Irregular engagement in recent sessions",
		"Mixed signals across the model's input features",
	},
	domain.CategoryNeedsImprovement: {
		"Low recent engagement",
		"Feature profile resembles entities that regressed",
		"Several required inputs near the bottom of their observed range",
	},
}

var recommendationTemplates = map[domain.Category][]string{
	domain.CategoryExcellent: {
		"Maintain the current intervention plan",
		"Consider advancing to more challenging objectives",
	},
	domain.CategoryGood: {
		"Keep the current cadence and reinforce weaker areas",
	},
	domain.CategoryAverage: {
		"Review session frequency with the care team",
		"Re-assess the intervention plan within the prediction horizon",
	},
	domain.CategoryNeedsImprovement: {
		"Early intervention advised",
		"Schedule a plan review with the responsible specialist",
		"Increase observation frequency until the next evaluation",
	},
}

// narrativeFor returns the static contributing-factor and recommendation
// text for a value band.
func narrativeFor(category domain.Category) (factors, recommendations []string) {
	return factorTemplates[category], recommendationTemplates[category]
}
