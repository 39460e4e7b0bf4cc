package output

import (
	"strconv"

	"edmrepos/internal/admin"
)

const (
	StatusOK   = "OK"
	StatusFail = "FAIL"
)

// Result is the serialized form of one admin.Outcome.
type Result struct {
	Action     string `json:"action"`
	Repo       string `json:"repo"`
	Target     string `json:"target"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
	Body       string `json:"body,omitempty"`
}

func ResultFromOutcome(o admin.Outcome) Result {
	r := Result{
		Action:     string(o.Action),
		Repo:       o.Repo,
		Target:     o.Target,
		Status:     StatusOK,
		StatusCode: o.StatusCode,
		Detail:     o.Detail,
	}
	if !o.OK() {
		r.Status = StatusFail
		r.Error = o.Err.Error()
		r.Body = o.Body
	}
	return r
}

func (r Result) OK() bool {
	return r.Status == StatusOK
}

func (r Result) statusCodeText() string {
	if r.StatusCode == 0 {
		return "-"
	}
	return strconv.Itoa(r.StatusCode)
}
