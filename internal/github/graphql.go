package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// graphqlEndpoint derives the GraphQL URL from the REST base:
// https://api.github.com/ -> /graphql, https://<ghes>/api/v3/ -> /api/graphql.
func graphqlEndpoint(base *url.URL) (*url.URL, error) {
	if base == nil {
		return nil, fmt.Errorf("graphql: base url is nil")
	}

	u := *base
	u.RawQuery = ""
	u.Fragment = ""
	if strings.HasSuffix(strings.TrimSuffix(u.Path, "/"), "/api/v3") {
		u.Path = "/api/graphql"
	} else {
		u.Path = "/graphql"
	}
	return &u, nil
}

// GraphQL posts req through the same transport as the REST client, so auth
// and request logging apply. The returned status code is 0 when no response
// was received.
func GraphQL[T any](ctx context.Context, c *Client, req GraphQLRequest) (T, int, error) {
	var zero T
	if ctx == nil {
		return zero, 0, fmt.Errorf("graphql: ctx is nil")
	}
	if c == nil || c.Client == nil || c.HTTP == nil {
		return zero, 0, fmt.Errorf("graphql: client is not initialized")
	}

	endpoint, err := graphqlEndpoint(c.Client.BaseURL)
	if err != nil {
		return zero, 0, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return zero, 0, fmt.Errorf("graphql: marshal request: %w", err)
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return zero, 0, fmt.Errorf("graphql: build request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")

	hresp, err := c.HTTP.Do(hreq)
	if err != nil {
		return zero, 0, fmt.Errorf("graphql: do request: %w", err)
	}
	defer func() { _ = hresp.Body.Close() }()

	if !IsSuccessStatus(hresp.StatusCode) {
		return zero, hresp.StatusCode, fmt.Errorf("graphql: http %d", hresp.StatusCode)
	}

	var out GraphQLResponse[T]
	if err := json.NewDecoder(hresp.Body).Decode(&out); err != nil {
		return zero, hresp.StatusCode, fmt.Errorf("graphql: decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		return zero, hresp.StatusCode, fmt.Errorf("graphql: %s", out.Errors[0].Message)
	}
	return out.Data, hresp.StatusCode, nil
}
