// Command issue_token signs a player token the range websocket accepts.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"shootingrange/rangesim/internal/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, now func() time.Time) error {
	flags := flag.NewFlagSet("issue_token", flag.ContinueOnError)
	secret := flags.String("secret", os.Getenv("RANGE_WS_SECRET"), "HMAC secret shared with the daemon (defaults to RANGE_WS_SECRET)")
	subject := flags.String("subject", "", "player name carried in the token")
	ttl := flags.Duration("ttl", time.Hour, "token lifetime")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	token, err := auth.Issue(*secret, *subject, now(), *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, token)
	return err
}
