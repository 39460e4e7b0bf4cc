package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Client is the authenticated handle shared by every provider call in an
// invocation. It is read-only after construction.
type Client struct {
	Client *github.Client
	HTTP   *http.Client

	authenticated bool
}

type options struct {
	logger  logrus.FieldLogger
	baseURL string
}

type Option func(*options)

// WithLogger routes one debug line per GitHub request and response to log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithBaseURL points the client at a GitHub Enterprise Server API root
// (for example https://ghe.example.com/api/v3/). Empty keeps api.github.com.
func WithBaseURL(raw string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimSpace(raw)
	}
}

// loggingRoundTripper emits a request line and a response line (with
// latency) for every call made through the wrapped transport.
type loggingRoundTripper struct {
	base http.RoundTripper
	log  logrus.FieldLogger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	}).Debug("github api request")

	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		t.log.WithError(err).WithField("duration", dur).Debug("github api transport error")
		return resp, err
	}
	t.log.WithFields(logrus.Fields{
		"method":   req.Method,
		"status":   resp.StatusCode,
		"duration": dur,
	}).Debugf("github api response: %s", http.StatusText(resp.StatusCode))
	return resp, nil
}

// NewClient builds the provider gateway. An empty token yields an
// unauthenticated client, which is only good for public reads.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}

	transport := http.DefaultTransport
	if o.logger != nil {
		transport = &loggingRoundTripper{base: transport, log: o.logger}
	}
	token = strings.TrimSpace(token)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	tc := &http.Client{Transport: transport}

	gc := github.NewClient(tc)
	if o.baseURL != "" {
		var err error
		gc, err = gc.WithEnterpriseURLs(o.baseURL, o.baseURL)
		if err != nil {
			return nil, fmt.Errorf("github client: invalid base url %q: %w", o.baseURL, err)
		}
	}

	return &Client{
		Client:        gc,
		HTTP:          tc,
		authenticated: token != "",
	}, nil
}

// Authenticated reports whether the client carries a credential.
func (c *Client) Authenticated() bool {
	return c != nil && c.authenticated
}
