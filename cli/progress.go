package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressReporter prints stage-by-stage progress for long operations like
// bundle exports.
type ProgressReporter struct {
	mu     sync.Mutex
	out    io.Writer
	stages []string
	status map[string]string
	start  time.Time
}

// NewProgressReporter creates a reporter writing to stdout.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		out:    os.Stdout,
		status: make(map[string]string),
		start:  time.Now(),
	}
}

// Update sets the status of a stage and re-renders. Stages appear in the
// order they were first reported.
func (p *ProgressReporter) Update(stage, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, seen := p.status[stage]; !seen {
		p.stages = append(p.stages, stage)
	}
	p.status[stage] = status
	p.render()
}

func (p *ProgressReporter) render() {
	elapsed := time.Since(p.start).Round(time.Second)
	fmt.Fprintf(p.out, "\r\033[K[%s] ", elapsed)

	for i, stage := range p.stages {
		symbol := "…"
		switch p.status[stage] {
		case "done":
			symbol = "✓"
		case "failed":
			symbol = "✗"
		case "running":
			symbol = "~"
		}
		if i > 0 {
			fmt.Fprint(p.out, "  ")
		}
		fmt.Fprintf(p.out, "%s %s", symbol, stage)
	}
}

// Done finishes the line with the total elapsed time.
func (p *ProgressReporter) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.start).Round(time.Millisecond)
	fmt.Fprintf(p.out, "\ncompleted in %s\n", elapsed)
}
