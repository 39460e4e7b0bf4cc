package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProtectionRules(t *testing.T) {
	t.Run("maps nodes and skips blank patterns", func(t *testing.T) {
		env := newTestEnv(t)
		var variables map[string]any
		env.mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var req struct {
				Variables map[string]any `json:"variables"`
			}
			_ = json.Unmarshal(body, &req)
			variables = req.Variables
			writeStatus(w, http.StatusOK, `{"data":{"repository":{"branchProtectionRules":{
				"nodes":[
					{"pattern":"develop","isAdminEnforced":true,"requiresApprovingReviews":true,"requiredApprovingReviewCount":1,
					 "requiresStatusChecks":true,"requiredStatusCheckContexts":["Travis CI - Branch","Travis CI - Pull Request"]},
					{"pattern":"  ","isAdminEnforced":true},
					{"pattern":"master","isAdminEnforced":false}
				],
				"pageInfo":{"hasNextPage":false}}}}}`)
		})

		rules, truncated, err := env.svc.ListProtectionRules(context.Background(), testRef)
		require.NoError(t, err)
		assert.False(t, truncated)
		assert.Equal(t, map[string]any{"owner": "acme", "name": "widgets"}, variables)

		require.Len(t, rules, 2)
		assert.Equal(t, "develop", rules[0].Pattern)
		assert.True(t, rules[0].IsAdminEnforced)
		assert.Equal(t, "enforce_admins=true reviews=1 checks=Travis CI - Branch,Travis CI - Pull Request", rules[0].Summary())
		assert.Equal(t, "master", rules[1].Pattern)
		assert.Equal(t, "enforce_admins=false", rules[1].Summary())
	})

	t.Run("reports truncation", func(t *testing.T) {
		env := newTestEnv(t)
		env.mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusOK, `{"data":{"repository":{"branchProtectionRules":{
				"nodes":[{"pattern":"develop","isAdminEnforced":true}],"pageInfo":{"hasNextPage":true}}}}}`)
		})

		rules, truncated, err := env.svc.ListProtectionRules(context.Background(), testRef)
		require.NoError(t, err)
		assert.True(t, truncated)
		assert.Len(t, rules, 1)
	})

	t.Run("missing repository is a lookup error", func(t *testing.T) {
		env := newTestEnv(t)
		env.mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusOK, `{"data":{"repository":null},"errors":[{"message":"Could not resolve to a Repository"}]}`)
		})

		_, _, err := env.svc.ListProtectionRules(context.Background(), testRef)
		var lerr *LookupError
		require.True(t, errors.As(err, &lerr), "got %v", err)
		assert.Equal(t, http.StatusOK, lerr.StatusCode)
		assert.Contains(t, lerr.Body, "Could not resolve to a Repository")
	})

	t.Run("http failure keeps the status", func(t *testing.T) {
		env := newTestEnv(t)
		env.mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
		})

		_, _, err := env.svc.ListProtectionRules(context.Background(), testRef)
		var lerr *LookupError
		require.True(t, errors.As(err, &lerr))
		assert.Equal(t, http.StatusUnauthorized, lerr.StatusCode)
		assert.Equal(t, 1, env.calls.count("POST /graphql"))
	})
}
