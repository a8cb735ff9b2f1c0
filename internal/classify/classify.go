package classify

import (
	"strings"

	"github.com/rickgao/gas-market-data/internal/model"
)

// Rule pairs a category with the keywords that select it.
type Rule struct {
	Category model.Category
	Keywords []string
}

// DefaultRules is the production keyword table. Order is significant:
// "Cold weather drains storage" is STORAGE, not WEATHER.
var DefaultRules = []Rule{
	{model.CategoryStorage, []string{"storage", "eia storage", "injection"}},
	{model.CategoryLNG, []string{"lng", "liquefied", "natural gas export"}},
	{model.CategoryWeather, []string{"cold", "heat", "winter storm", "hurricane", "freeze", "arctic", "polar vortex"}},
	{model.CategoryOutages, []string{"pipeline", "maintenance", "outage", "capacity", "force majeure"}},
	{model.CategorySupply, []string{
		"production", "output", "dry gas", "lower 48", "associated gas",
		"marcellus", "utica", "haynesville", "permian", "eagle ford",
		"rig count", "gas rig", "drilling", "completion", "frac spread",
		"shut-in", "takeaway capacity", "pipeline constraint", "flaring", "breakeven",
	}},
	{model.CategoryMacro, []string{"rates", "inflation", "dollar", "risk-off", "recession"}},
}

// Classifier matches headlines against an ordered rule table.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier. Keywords are lower-cased once here.
func New(rules []Rule) *Classifier {
	c := &Classifier{rules: make([]Rule, len(rules))}
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		c.rules[i] = Rule{Category: r.Category, Keywords: kws}
	}
	return c
}

// Default is the Classifier built from DefaultRules.
var Default = New(DefaultRules)

// Classify returns the category for title.
func (c *Classifier) Classify(title string) model.Category {
	t := strings.ToLower(title)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(t, kw) {
				return r.Category
			}
		}
	}
	return model.CategoryOther
}

// Classify uses the Default classifier.
func Classify(title string) model.Category {
	return Default.Classify(title)
}
