package output

import (
	"fmt"

	"edmrepos/internal/admin"
)

// Run brackets one command invocation with run.started and run.finished
// events and counts the results written in between.
type Run struct {
	mgr     *Manager
	command string
	repo    string
	total   int
	failed  int
}

func (m *Manager) StartRun(command, repo string) (*Run, error) {
	if m == nil {
		return nil, fmt.Errorf("output manager is nil")
	}
	r := &Run{mgr: m, command: command, repo: repo}
	if err := m.Write(Event{Type: EventRunStarted, Command: command, Repo: repo}); err != nil {
		return nil, err
	}
	return r, nil
}

// Record writes one result per outcome, in order.
func (r *Run) Record(outcomes ...admin.Outcome) error {
	for _, o := range outcomes {
		res := ResultFromOutcome(o)
		if res.Repo == "" {
			res.Repo = r.repo
		}
		r.total++
		if !res.OK() {
			r.failed++
		}
		if err := r.mgr.Write(res); err != nil {
			return err
		}
	}
	return nil
}

func (r *Run) Total() int {
	return r.total
}

func (r *Run) Failed() int {
	return r.failed
}

func (r *Run) Finish(exitCode int) error {
	return r.mgr.Write(Event{
		Type:     EventRunFinished,
		Command:  r.command,
		Repo:     r.repo,
		Total:    r.total,
		Failed:   r.failed,
		ExitCode: exitCode,
	})
}
