package main

import (
	"flag"
	"fmt"
	"os"

	replaycatalog "shootingrange/rangesim/tools/replay_catalog"
)

func main() {
	root := flag.String("dir", "replays", "replay root directory")
	jsonFlag := flag.Bool("json", false, "emit JSON instead of human-readable output")
	flag.Parse()

	entries, err := replaycatalog.List(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *jsonFlag {
		payload, err := replaycatalog.MarshalEntries(entries)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(payload))
		return
	}

	for _, entry := range entries {
		status := "recording"
		if entry.Complete() {
			status = "complete"
		}
		fmt.Printf("%s (%s)\n", entry.Header.SessionID, status)
		fmt.Printf("  created: %s\n", entry.Header.CreatedAt.Format("2006-01-02 15:04:05Z07:00"))
		fmt.Printf("  seed: %d  tick rate: %d Hz  catalog: %s\n", entry.Header.Seed, entry.Header.TickRate, entry.Header.CatalogChecksum)
		if entry.Manifest != nil {
			fmt.Printf("  events: %d  frames: %d  ticks: %d-%d\n",
				entry.Manifest.Events, entry.Manifest.Frames, entry.Manifest.FirstTick, entry.Manifest.LastTick)
		}
		fmt.Printf("  dir: %s\n", entry.Dir)
	}
}
