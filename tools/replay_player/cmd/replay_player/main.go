package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	replayplayer "shootingrange/rangesim/tools/replay_player"
)

func main() {
	path := flag.String("path", "", "Path to a replay session directory")
	frames := flag.Bool("frames", false, "Include per-frame summaries in the output")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "path flag is required")
		os.Exit(1)
	}

	summary, err := replayplayer.Summarise(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	if !*frames {
		summary.Frames = nil
	}

	//1.- Render the summary as JSON so callers can pipe the output elsewhere.
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		fmt.Fprintln(os.Stderr, "encode error:", err)
		os.Exit(3)
	}
}
