package runner

import "github.com/go-scripts/gmaps/internal/types"

// Observer is notified as the run progresses.
type Observer interface {
	QueryStarted(index, total int, q types.Query)
	AttemptFailed(q types.Query, attempt int, err error)
	QueryFinished(outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) QueryStarted(int, int, types.Query)     {}
func (nopObserver) AttemptFailed(types.Query, int, error) {}
func (nopObserver) QueryFinished(Outcome)                  {}

// Outcome summarises one query of the run.
type Outcome struct {
	Category  string
	Requested int
	Collected int
	Attempts  int
	// Kind and Err are set when the query was abandoned.
	Kind string
	Err  error
}

// Succeeded reports whether the query made it into the results.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Report lists the outcome of every query in input order.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

func (r *Report) Abandoned() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Collected returns the number of listings collected across the run.
func (r *Report) Collected() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.Collected
	}
	return n
}
