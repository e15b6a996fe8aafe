package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"shootingrange/rangesim/internal/input"
)

// MetricsHandler emits Prometheus compatible text metrics.
func (h *HandlerSet) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetric(w, "rangesim_uptime_seconds", "Daemon uptime in seconds.", "gauge", h.now().Sub(h.started).Seconds())
		writeMetric(w, "rangesim_websocket_clients", "Connected websocket players.", "gauge", h.SocketCount())

		if h.rng != nil {
			if snap := h.rng.Snapshot(); snap != nil {
				writeMetric(w, "rangesim_tick", "Last completed simulation tick.", "counter", snap.Tick)
				writeMetric(w, "rangesim_score", "Accumulated player score.", "gauge", snap.Score)
				writeMetric(w, "rangesim_shots_total", "Shots fired by the player.", "counter", snap.Shots)
				writeMetric(w, "rangesim_throttled_shots_total", "Shots suppressed by the fire cadence.", "counter", snap.Throttled)
				writeMetric(w, "rangesim_projectiles", "Live projectiles.", "gauge", snap.Projectiles)
				writeMetric(w, "rangesim_shells", "Live ejected shells.", "gauge", snap.Shells)
				writeMetric(w, "rangesim_blood_drops", "Live blood drops.", "gauge", snap.BloodDrops)
				writeMetric(w, "rangesim_impacts", "Live impact decals.", "gauge", snap.Impacts)
				writeMetric(w, "rangesim_trails", "Live projectile trails.", "gauge", snap.Trails)
				writeMetric(w, "rangesim_lights_in_use", "Pooled lights currently borrowed.", "gauge", snap.LightsInUse)
				writeMetric(w, "rangesim_light_misses_total", "Light requests refused by an exhausted pool.", "counter", snap.LightMisses)
				writeMetric(w, "rangesim_active_targets", "Targets currently standing.", "gauge", snap.ActiveTargets)
				writeMetric(w, "rangesim_recoil_dropped_total", "Shots ignored while recoil was animating.", "counter", snap.RecoilDropped)
				writeMetric(w, "rangesim_target_hits_total", "Projectiles that struck a target.", "counter", snap.Hits)
				writeMetric(w, "rangesim_wall_impacts_total", "Projectiles that struck range geometry.", "counter", snap.WallImpacts)
				writeMetric(w, "rangesim_projectiles_expired_total", "Projectiles retired past their range or lifetime.", "counter", snap.Expired)
				writeMetric(w, "rangesim_intents_accepted_total", "Intents queued for the simulation.", "counter", snap.InboxAccepted)
				writeMetric(w, "rangesim_intents_inbox_dropped_total", "Intents dropped by a full inbox.", "counter", snap.InboxDropped)
			}
		}

		if h.events != nil {
			stats := h.events.Stats()
			writeMetric(w, "rangesim_events_published_total", "Range events published.", "counter", stats.Published)
			writeMetric(w, "rangesim_events_delivered_total", "Live event deliveries to subscribers.", "counter", stats.Delivered)
			writeMetric(w, "rangesim_events_dropped_total", "Live deliveries skipped because a subscriber buffer was full.", "counter", stats.Dropped)
			writeMetric(w, "rangesim_events_lost_total", "Unacknowledged events evicted from the backlog.", "counter", stats.Lost)
			writeMetric(w, "rangesim_events_retained", "Events retained for late subscribers.", "gauge", stats.Retained)
			writeMetric(w, "rangesim_event_subscribers", "Known event subscribers.", "gauge", stats.Subscribers)
		}

		if h.ticks != nil {
			ticks := h.ticks()
			fmt.Fprintf(w, "# HELP rangesim_tick_duration_seconds Simulation step duration.\n")
			fmt.Fprintf(w, "# TYPE rangesim_tick_duration_seconds summary\n")
			fmt.Fprintf(w, "rangesim_tick_duration_seconds{quantile=\"0.5\"} %.6f\n", ticks.P50.Seconds())
			fmt.Fprintf(w, "rangesim_tick_duration_seconds{quantile=\"0.95\"} %.6f\n", ticks.P95.Seconds())
			fmt.Fprintf(w, "rangesim_tick_duration_seconds{quantile=\"1\"} %.6f\n", ticks.Max.Seconds())
			fmt.Fprintf(w, "rangesim_tick_duration_seconds_count %d\n", ticks.Samples)
			writeMetric(w, "rangesim_tick_overruns_total", "Steps that exceeded the tick budget.", "counter", ticks.Overruns)
		}
		if h.loopStats != nil {
			_, skipped := h.loopStats()
			writeMetric(w, "rangesim_ticks_skipped_total", "Steps dropped past the catch-up limit.", "counter", skipped)
		}

		h.writeIntentMetrics(w)

		if h.replayStats != nil {
			stats := h.replayStats()
			writeMetric(w, "rangesim_replay_events_total", "Events written to the active recording.", "counter", stats.Events)
			writeMetric(w, "rangesim_replay_frames_total", "Snapshots written to the active recording.", "counter", stats.Frames)
			writeMetric(w, "rangesim_replay_flushes_total", "Replay flushes completed.", "counter", stats.Flushes)
			writeMetric(w, "rangesim_replay_dropped_frames_total", "Snapshots dropped by a full recorder queue.", "counter", stats.DroppedFrames)
			writeMetric(w, "rangesim_replay_write_errors_total", "Replay writes that failed.", "counter", stats.WriteErrors)
		}
		if h.storageStats != nil {
			storage := h.storageStats()
			writeMetric(w, "rangesim_replay_sessions", "Recordings kept on disk.", "gauge", storage.Sessions)
			writeMetric(w, "rangesim_replay_bytes", "Disk usage of kept recordings.", "gauge", storage.Bytes)
			writeMetric(w, "rangesim_replay_removed_total", "Recordings pruned by retention.", "counter", storage.Removed)
		}
	}
}

func (h *HandlerSet) writeIntentMetrics(w io.Writer) {
	retired := h.retiredSnapshot()
	if h.gate != nil {
		totals := map[input.DropReason]uint64{
			input.DropReasonSequence:    retired.drops.Sequence,
			input.DropReasonStale:       retired.drops.Stale,
			input.DropReasonRateLimited: retired.drops.RateLimited,
		}
		for _, counters := range h.gate.Metrics() {
			totals[input.DropReasonSequence] += counters.Sequence
			totals[input.DropReasonStale] += counters.Stale
			totals[input.DropReasonRateLimited] += counters.RateLimited
		}
		fmt.Fprintf(w, "# HELP rangesim_intents_gated_total Intents dropped by ordering, freshness or aim throttling.\n")
		fmt.Fprintf(w, "# TYPE rangesim_intents_gated_total counter\n")
		for _, reason := range []input.DropReason{input.DropReasonSequence, input.DropReasonStale, input.DropReasonRateLimited} {
			fmt.Fprintf(w, "rangesim_intents_gated_total{reason=%q} %d\n", string(reason), totals[reason])
		}
	}
	if h.validator != nil {
		violations := retired.violations
		disconnects := retired.disconnects
		for _, counters := range h.validator.Metrics() {
			for reason, count := range counters.Violations {
				violations[reason] += count
			}
			disconnects += counters.Disconnects
		}
		if len(violations) > 0 {
			reasons := make([]string, 0, len(violations))
			for reason := range violations {
				reasons = append(reasons, string(reason))
			}
			sort.Strings(reasons)
			fmt.Fprintf(w, "# HELP rangesim_intents_invalid_total Intents rejected by validation.\n")
			fmt.Fprintf(w, "# TYPE rangesim_intents_invalid_total counter\n")
			for _, reason := range reasons {
				fmt.Fprintf(w, "rangesim_intents_invalid_total{reason=%q} %d\n", reason, violations[input.ValidationReason(reason)])
			}
		}
		writeMetric(w, "rangesim_validation_disconnects_total", "Players disconnected after repeated invalid bursts.", "counter", disconnects)
	}
}

func writeMetric(w io.Writer, name, help, kind string, value any) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	switch v := value.(type) {
	case float64:
		fmt.Fprintf(w, "%s %.3f\n", name, v)
	default:
		fmt.Fprintf(w, "%s %d\n", name, v)
	}
}
