package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"

	"github.com/go-scripts/gmaps/internal/runner"
	"github.com/go-scripts/gmaps/internal/types"
)

// Tracker shows the query being processed and the overall progress of a run.
// It implements runner.Observer.
type Tracker struct {
	out     io.Writer
	bar     progress.Model
	spinner *spinner.Spinner

	mu       sync.Mutex
	total    int
	finished int
}

// New creates a Tracker writing to out.
func New(out io.Writer) *Tracker {
	return &Tracker{
		out:     out,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		spinner: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out)),
	}
}

// QueryStarted indicates that a query is being processed
func (p *Tracker) QueryStarted(index, total int, q types.Query) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.setSuffix(fmt.Sprintf(" %s (%d/%d) collecting %d", q.Category, index+1, total, q.RequestedCount))
	p.spinner.Restart()
}

func (p *Tracker) AttemptFailed(q types.Query, attempt int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setSuffix(fmt.Sprintf(" %s retrying after attempt %d (%s)", q.Category, attempt, runner.Classify(err)))
}

func (p *Tracker) setSuffix(s string) {
	p.spinner.Lock()
	p.spinner.Suffix = s
	p.spinner.Unlock()
}

// QueryFinished stops the spinner and prints the overall progress line.
func (p *Tracker) QueryFinished(outcome runner.Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Stop()
	p.finished++

	status := fmt.Sprintf("%d/%d listings", outcome.Collected, outcome.Requested)
	if !outcome.Succeeded() {
		status = "abandoned: " + outcome.Kind
	}
	fmt.Fprintf(p.out, "%s %d/%d queries  %s  %s\n",
		p.bar.ViewAs(p.fraction()), p.finished, p.total, outcome.Category, status)
}

// Progress returns the share of queries finished so far.
func (p *Tracker) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fraction()
}

func (p *Tracker) fraction() float64 {
	if p.total == 0 {
		return 0
	}
	return float64(p.finished) / float64(p.total)
}

// Stop halts the spinner if a run ended mid-query.
func (p *Tracker) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Stop()
}
