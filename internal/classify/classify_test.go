package classify

import (
	"testing"

	"github.com/rickgao/gas-market-data/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		want  model.Category
	}{
		{"Cold snap triggers heating demand spike", model.CategoryWeather},
		{"Totally unrelated headline", model.CategoryOther},
		{"EIA storage report shows larger than expected draw", model.CategoryStorage},
		{"Cold weather drains storage", model.CategoryStorage},
		{"New LNG terminal approved on Gulf Coast", model.CategoryLNG},
		{"Liquefied gas cargoes diverted to Europe", model.CategoryLNG},
		{"Hurricane threatens Gulf production", model.CategoryWeather},
		{"Pipeline maintenance cuts flows", model.CategoryOutages},
		{"Haynesville output hits record", model.CategorySupply},
		{"Baker Hughes gas rig count falls", model.CategorySupply},
		{"Fed signals higher rates for longer", model.CategoryMacro},
		{"", model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := Classify(tt.title); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.title, got, tt.want)
			}
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	if got := Classify("POLAR VORTEX SWEEPS MIDWEST"); got != model.CategoryWeather {
		t.Errorf("Classify = %s, want %s", got, model.CategoryWeather)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	title := "Permian takeaway capacity constrained amid freeze"
	first := Classify(title)
	for i := 0; i < 10; i++ {
		if got := Classify(title); got != first {
			t.Fatalf("Classify returned %s then %s", first, got)
		}
	}
	// WEATHER ("freeze") is declared before OUTAGES and SUPPLY.
	if first != model.CategoryWeather {
		t.Errorf("Classify = %s, want %s", first, model.CategoryWeather)
	}
}

func TestNew_CustomRules(t *testing.T) {
	c := New([]Rule{
		{model.CategoryPolicy, []string{"FERC", "Permit"}},
	})

	if got := c.Classify("ferc approves expansion"); got != model.CategoryPolicy {
		t.Errorf("Classify = %s, want %s", got, model.CategoryPolicy)
	}
	if got := c.Classify("storage build"); got != model.CategoryOther {
		t.Errorf("Classify = %s, want %s", got, model.CategoryOther)
	}
}
