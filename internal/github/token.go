package github

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

type TokenSource string

const (
	TokenSourceFlag      TokenSource = "flag"
	TokenSourceEnv       TokenSource = "env:GITHUB_TOKEN"
	TokenSourceGitHubCLI TokenSource = "gh"
)

const ghTokenTimeout = 5 * time.Second

// Token is a resolved credential and where it came from. Value is never
// logged.
type Token struct {
	Value  string
	Source TokenSource
}

func (t Token) Empty() bool {
	return t.Value == ""
}

// ResolveToken picks the credential for this invocation.
//
// Precedence:
//  1. provided (the --token flag or a config value), if non-empty
//  2. GITHUB_TOKEN
//  3. `gh auth token -h github.com`, when gh is installed and logged in
//
// An empty Token with a nil error means no credential is available.
func ResolveToken(ctx context.Context, provided string) (Token, error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return Token{Value: tok, Source: TokenSourceFlag}, nil
	}
	if tok := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); tok != "" {
		return Token{Value: tok, Source: TokenSourceEnv}, nil
	}

	tok, err := tokenFromGitHubCLI(ctx)
	if err != nil {
		return Token{}, err
	}
	if tok == "" {
		return Token{}, nil
	}
	return Token{Value: tok, Source: TokenSourceGitHubCLI}, nil
}

func tokenFromGitHubCLI(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return "", nil
	}

	cmdCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, ghTokenTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, "gh", "auth", "token", "-h", "github.com")
	env := make([]string, 0, len(os.Environ())+1)
	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, "GH_PAGER=") {
			continue
		}
		env = append(env, entry)
	}
	cmd.Env = append(env, "GH_PAGER=cat")

	out, err := cmd.CombinedOutput()
	if err != nil {
		if cmdCtx.Err() != nil {
			return "", cmdCtx.Err()
		}
		// Not logged in, or some other gh failure: no token. The output is
		// dropped so nothing sensitive reaches the logs.
		return "", nil
	}

	tok := strings.TrimSpace(string(out))
	if strings.ContainsAny(tok, " \t\n\r") {
		return "", errors.New("invalid token returned by gh: contains whitespace")
	}
	return tok, nil
}
