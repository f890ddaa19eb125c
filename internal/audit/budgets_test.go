package audit

import "testing"

func TestCheckOnlyConfiguredBudgets(t *testing.T) {
	m := &Metrics{DOMContentLoadedMs: 800, LoadMs: 1500}
	results := Check(m, Budgets{LoadMs: 2000})
	if len(results) != 1 {
		t.Fatalf("expected one result, got %v", results)
	}
	if results[0].Metric != "loadMs" || !results[0].Pass {
		t.Errorf("unexpected result %+v", results[0])
	}
}

func TestCheckFailure(t *testing.T) {
	m := &Metrics{LoadMs: 3000}
	results := Check(m, Budgets{LoadMs: 2000})
	if len(results) != 1 || results[0].Pass {
		t.Fatalf("expected a failing row, got %v", results)
	}
	if AllPass(results) {
		t.Error("AllPass should be false with a failing row")
	}
}

func TestCheckUnreportedMetricPasses(t *testing.T) {
	m := &Metrics{} // browser reported nothing
	results := Check(m, Budgets{FirstContentfulPaintMs: 1000})
	if len(results) != 1 || !results[0].Pass {
		t.Fatalf("unreported metric should pass its budget, got %v", results)
	}
}

func TestCheckNoBudgets(t *testing.T) {
	results := Check(&Metrics{LoadMs: 99999}, Budgets{})
	if len(results) != 0 {
		t.Fatalf("no budgets means no rows, got %v", results)
	}
	if !AllPass(results) {
		t.Error("empty result set passes")
	}
}
