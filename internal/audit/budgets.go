package audit

// Budgets are per-page upper bounds on captured metrics. Zero disables a
// check.
type Budgets struct {
	DOMContentLoadedMs     float64 `yaml:"domContentLoadedMs,omitempty" json:"domContentLoadedMs,omitempty"`
	LoadMs                 float64 `yaml:"loadMs,omitempty" json:"loadMs,omitempty"`
	FirstContentfulPaintMs float64 `yaml:"firstContentfulPaintMs,omitempty" json:"firstContentfulPaintMs,omitempty"`
	TransferSizeBytes      float64 `yaml:"transferSizeBytes,omitempty" json:"transferSizeBytes,omitempty"`
}

// BudgetResult is one budget check outcome.
type BudgetResult struct {
	Metric string  `json:"metric"`
	Budget float64 `json:"budget"`
	Actual float64 `json:"actual"`
	Pass   bool    `json:"pass"`
}

// Check evaluates metrics against budgets. Only configured (non-zero)
// budgets produce rows. A metric the browser did not report (zero) passes;
// failing on absence would make every non-paint page fail its FCP budget.
func Check(m *Metrics, b Budgets) []BudgetResult {
	var results []BudgetResult

	check := func(metric string, budget, actual float64) {
		if budget <= 0 {
			return
		}
		results = append(results, BudgetResult{
			Metric: metric,
			Budget: budget,
			Actual: actual,
			Pass:   actual == 0 || actual <= budget,
		})
	}

	check("domContentLoadedMs", b.DOMContentLoadedMs, m.DOMContentLoadedMs)
	check("loadMs", b.LoadMs, m.LoadMs)
	check("firstContentfulPaintMs", b.FirstContentfulPaintMs, m.FirstContentfulPaintMs)
	check("transferSizeBytes", b.TransferSizeBytes, m.TransferSizeBytes)

	return results
}

// AllPass reports whether every budget row passed.
func AllPass(results []BudgetResult) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}
