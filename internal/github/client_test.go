package github

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger(buf *bytes.Buffer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return log
}

func pointAt(t *testing.T, c *Client, raw string) {
	t.Helper()
	u, err := url.Parse(raw + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	c.Client.BaseURL = u
	c.Client.UploadURL = u
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	client, err := NewClient(ctx, "test-token")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Client == nil || client.HTTP == nil {
		t.Fatal("expected client to be initialized")
	}
	if !client.Authenticated() {
		t.Error("expected client with token to be authenticated")
	}

	client, err = NewClient(ctx, "   ")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Authenticated() {
		t.Error("expected blank token to yield an unauthenticated client")
	}
}

func TestNewClient_NilContextReturnsError(t *testing.T) {
	var nilCtx context.Context
	_, err := NewClient(nilCtx, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "ctx is nil") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_WithBaseURL(t *testing.T) {
	c, err := NewClient(context.Background(), "", WithBaseURL("https://ghe.example.com/api/v3/"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if got := c.Client.BaseURL.String(); got != "https://ghe.example.com/api/v3/" {
		t.Fatalf("unexpected base url %q", got)
	}
}

func TestNewClient_WithLogger_LogsAndAuthHeader(t *testing.T) {
	ctx := context.Background()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	tests := []struct {
		name     string
		token    string
		wantAuth bool
	}{
		{name: "unauthenticated", token: "", wantAuth: false},
		{name: "authenticated", token: "test-token", wantAuth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAuth = ""
			var buf bytes.Buffer
			c, err := NewClient(ctx, tt.token, WithLogger(testLogger(&buf)))
			if err != nil {
				t.Fatalf("NewClient failed: %v", err)
			}
			pointAt(t, c, server.URL)

			req, err := c.Client.NewRequest("GET", "rate_limit", nil)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			if _, err := c.Client.Do(ctx, req, nil); err != nil {
				t.Fatalf("Do: %v", err)
			}

			logs := buf.String()
			if !strings.Contains(logs, "github api request") || !strings.Contains(logs, "method=GET") {
				t.Fatalf("expected request log, got: %q", logs)
			}
			if !strings.Contains(logs, "status=200") {
				t.Fatalf("expected response log, got: %q", logs)
			}
			if tt.wantAuth && !strings.Contains(gotAuth, "test-token") {
				t.Fatalf("expected Authorization header to contain token, got %q", gotAuth)
			}
			if !tt.wantAuth && gotAuth != "" {
				t.Fatalf("expected no Authorization header, got %q", gotAuth)
			}
			if strings.Contains(logs, "test-token") {
				t.Fatal("token leaked into logs")
			}
		})
	}
}
