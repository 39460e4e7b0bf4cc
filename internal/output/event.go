package output

const (
	EventRunStarted  = "run.started"
	EventItemResult  = "item.result"
	EventRunFinished = "run.finished"
)

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line):
// - run.started
// - item.result
// - run.finished
//
// JSON mode remains an aggregate of Result values.
type Event struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Repo    string `json:"repo,omitempty"`
	*Result
	Total    int `json:"total,omitempty"`
	Failed   int `json:"failed,omitempty"`
	ExitCode int `json:"exit_code,omitempty"`
}

func eventFromResult(r Result) Event {
	return Event{Type: EventItemResult, Repo: r.Repo, Result: &r}
}
