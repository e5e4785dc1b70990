package consolelog

// Assertion is a single failed check inside a SpecResult.
type Assertion struct {
	Passed   bool   `json:"passed"`
	ErrorMsg string `json:"errorMsg"`
}

// SpecResult describes one reported console entry. Description holds the level name.
type SpecResult struct {
	Description string      `json:"description"`
	Passed      bool        `json:"passed"`
	Assertions  []Assertion `json:"assertions"`
}

// Report is the outcome of one or more audits, in the shape the host reporter consumes.
type Report struct {
	FailedCount int          `json:"failedCount"`
	SpecResults []SpecResult `json:"specResults"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		SpecResults: make([]SpecResult, 0),
	}
}

func failure(e *Entry) SpecResult {
	return SpecResult{
		Description: e.LevelName(),
		Passed:      false,
		Assertions: []Assertion{
			{Passed: false, ErrorMsg: e.Message},
		},
	}
}

// Empty reports whether nothing was recorded.
func (r *Report) Empty() bool {
	return r.FailedCount == 0 && len(r.SpecResults) == 0
}

// Failed reports whether the report should fail the test run.
func (r *Report) Failed() bool {
	return r.FailedCount > 0
}

// Merge appends other into r. Counters add up, results keep their order.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}

	r.FailedCount += other.FailedCount
	r.SpecResults = append(r.SpecResults, other.SpecResults...)
}

// Copy returns a deep copy of the report.
func (r *Report) Copy() *Report {
	cp := &Report{
		FailedCount: r.FailedCount,
		SpecResults: make([]SpecResult, len(r.SpecResults)),
	}

	for i := range r.SpecResults {
		cp.SpecResults[i] = r.SpecResults[i]
		cp.SpecResults[i].Assertions = append([]Assertion(nil), r.SpecResults[i].Assertions...)
	}

	return cp
}
