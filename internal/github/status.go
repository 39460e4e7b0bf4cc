package github

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/go-github/v81/github"
)

// IsSuccessStatus classifies an HTTP status: [200,299] inclusive is success,
// everything else (including 0 for a call that never got a response) is not.
func IsSuccessStatus(code int) bool {
	return code >= 200 && code <= 299
}

// StatusCode returns the HTTP status carried by resp, or 0 when the call
// failed before a response arrived.
func StatusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

// Succeeded reports whether a go-github call completed with a 2xx status and
// no transport or decoding error.
func Succeeded(resp *github.Response, err error) bool {
	return err == nil && IsSuccessStatus(StatusCode(resp))
}

// ResponseBody renders the provider's error payload for diagnostics. It is
// never used for control flow.
func ResponseBody(err error) string {
	if err == nil {
		return ""
	}

	var er *github.ErrorResponse
	if errors.As(err, &er) {
		payload := map[string]any{"message": er.Message}
		if len(er.Errors) > 0 {
			payload["errors"] = er.Errors
		}
		if er.DocumentationURL != "" {
			payload["documentation_url"] = er.DocumentationURL
		}
		b, mErr := json.Marshal(payload)
		if mErr != nil {
			return strings.TrimSpace(er.Message)
		}
		return string(b)
	}

	var rl *github.RateLimitError
	if errors.As(err, &rl) {
		return strings.TrimSpace(rl.Message)
	}

	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return strings.TrimSpace(abuse.Message)
	}

	return err.Error()
}
