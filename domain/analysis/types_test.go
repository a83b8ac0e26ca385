package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("default params should validate: %v", err)
	}
	bad := []Params{
		{Cutoff: 1, Prevalence: 0.5, PartialPercentage: 50},
		{Cutoff: 6, Prevalence: 0.5, PartialPercentage: 50},
		{Cutoff: 3, Prevalence: -0.1, PartialPercentage: 50},
		{Cutoff: 3, Prevalence: 1.1, PartialPercentage: 50},
		{Cutoff: 3, Prevalence: 0.5, PartialPercentage: 0},
		{Cutoff: 3, Prevalence: 0.5, PartialPercentage: 101},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("expected %+v to fail validation", p)
		}
	}
}

func TestTestResultMarshalJSONFinite(t *testing.T) {
	res := TestResult{Statistic: 2.5, DegreesOfFreedom: 9, PValue: 0.034}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded TestResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != res {
		t.Errorf("round trip changed result: got %+v, want %+v", decoded, res)
	}
}

func TestTestResultMarshalJSONInfinite(t *testing.T) {
	res := TestResult{Statistic: math.Inf(1), DegreesOfFreedom: 4, PValue: 0}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal zero-variance sentinel: %v", err)
	}
	if !strings.Contains(string(data), `"statistic":"+Inf"`) {
		t.Errorf("expected statistic rendered as \"+Inf\", got %s", data)
	}

	res.Statistic = math.Inf(-1)
	data, err = json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal negative infinity: %v", err)
	}
	if !strings.Contains(string(data), `"statistic":"-Inf"`) {
		t.Errorf("expected statistic rendered as \"-Inf\", got %s", data)
	}
}
