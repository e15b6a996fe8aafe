package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/input"
)

// ControlDoc describes one player control and the websocket intent it sends.
type ControlDoc struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Shortcut    string     `json:"shortcut,omitempty"`
	Intent      input.Kind `json:"intent"`
	Example     string     `json:"example"`
}

var baseControlDocs = []ControlDoc{
	{
		ID:          "fire",
		Label:       "Fire",
		Description: "Pull the trigger. Automatic weapons keep firing until release.",
		Shortcut:    "Left mouse button (down)",
		Intent:      input.KindPress,
		Example:     `{"type":"press","seq":1}`,
	},
	{
		ID:          "cease",
		Label:       "Cease Fire",
		Description: "Release the trigger and stop any automatic fire.",
		Shortcut:    "Left mouse button (up)",
		Intent:      input.KindRelease,
		Example:     `{"type":"release","seq":2}`,
	},
	{
		ID:          "aim",
		Label:       "Aim",
		Description: "Set camera yaw and pitch in radians. Negative pitch looks up.",
		Shortcut:    "Mouse move",
		Intent:      input.KindAim,
		Example:     `{"type":"aim","seq":3,"yaw":0.1,"pitch":-0.05}`,
	},
}

// controlDocs adds a slot and a switch entry per catalog weapon to the base controls.
func controlDocs(catalog *combat.Catalog) []ControlDoc {
	docs := append([]ControlDoc(nil), baseControlDocs...)
	if catalog != nil {
		file := catalog.File()
		for _, name := range catalog.Names() {
			entry := file.Weapons[name]
			if entry.Slot != 0 {
				docs = append(docs, ControlDoc{
					ID:          "slot-" + name,
					Label:       fmt.Sprintf("Slot %d", entry.Slot),
					Description: "Select " + name + " by its number key.",
					Shortcut:    fmt.Sprintf("Keyboard %d", entry.Slot),
					Intent:      input.KindSlot,
					Example:     fmt.Sprintf(`{"type":"slot","slot":%d}`, entry.Slot),
				})
			}
			docs = append(docs, ControlDoc{
				ID:          "switch-" + name,
				Label:       "Switch to " + name,
				Description: "Select " + name + " by name.",
				Intent:      input.KindSwitch,
				Example:     fmt.Sprintf(`{"type":"switch","weapon":%q}`, name),
			})
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Label == docs[j].Label {
			return strings.Compare(docs[i].ID, docs[j].ID) < 0
		}
		return strings.Compare(docs[i].Label, docs[j].Label) < 0
	})
	return docs
}

// registerControlDocEndpoints serves the control reference so clients and
// tooling can discover the intent vocabulary without reading code.
func registerControlDocEndpoints(mux *http.ServeMux, catalog *combat.Catalog) {
	docs := controlDocs(catalog)
	mux.HandleFunc("/api/controls", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(docs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
