package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"shootingrange/rangesim/internal/auth"
)

func TestRunIssuesVerifiableToken(t *testing.T) {
	now := time.Now()
	var out bytes.Buffer
	if err := run([]string{"-secret", "range-secret", "-subject", "marksman", "-ttl", "5m"}, &out, func() time.Time { return now }); err != nil {
		t.Fatalf("run: %v", err)
	}

	verifier, err := auth.NewVerifier("range-secret", time.Second)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	claims, err := verifier.Verify(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "marksman" {
		t.Fatalf("expected subject marksman, got %q", claims.Subject)
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	t.Setenv("RANGE_WS_SECRET", "")
	cases := map[string][]string{
		"missing secret":  {"-subject", "marksman"},
		"missing subject": {"-secret", "range-secret"},
		"negative ttl":    {"-secret", "range-secret", "-subject", "marksman", "-ttl", "-1m"},
	}
	for name, args := range cases {
		var out bytes.Buffer
		if err := run(args, &out, time.Now); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}
