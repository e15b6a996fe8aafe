package arena

import (
	"time"

	"shootingrange/rangesim/internal/ballistics"
	"shootingrange/rangesim/internal/targets"
)

// Snapshot is an immutable view of the range after one tick. It is shared
// between goroutines, so nothing mutates it after publication.
type Snapshot struct {
	Tick      uint64    `json:"tick" msgpack:"tick"`
	At        time.Time `json:"at" msgpack:"at"`
	Score     int       `json:"score" msgpack:"score"`
	Health    float64   `json:"health" msgpack:"health"`
	Weapon    string    `json:"weapon" msgpack:"weapon"`
	Held      bool      `json:"trigger_held" msgpack:"trigger_held"`
	Yaw       float64   `json:"yaw" msgpack:"yaw"`
	Pitch     float64   `json:"pitch" msgpack:"pitch"`
	Shots     uint64    `json:"shots" msgpack:"shots"`
	Throttled uint64    `json:"throttled_shots" msgpack:"throttled_shots"`

	Projectiles   int    `json:"projectiles" msgpack:"projectiles"`
	Shells        int    `json:"shells" msgpack:"shells"`
	BloodDrops    int    `json:"blood_drops" msgpack:"blood_drops"`
	Impacts       int    `json:"impacts" msgpack:"impacts"`
	Trails        int    `json:"trails" msgpack:"trails"`
	LightsInUse   int    `json:"lights_in_use" msgpack:"lights_in_use"`
	LightMisses   uint64 `json:"light_misses" msgpack:"light_misses"`
	ActiveTargets int    `json:"active_targets" msgpack:"active_targets"`
	RecoilDropped uint64 `json:"recoil_dropped" msgpack:"recoil_dropped"`

	Hits          uint64 `json:"hits" msgpack:"hits"`
	WallImpacts   uint64 `json:"wall_impacts" msgpack:"wall_impacts"`
	Expired       uint64 `json:"expired" msgpack:"expired"`
	InboxAccepted uint64 `json:"inbox_accepted" msgpack:"inbox_accepted"`
	InboxDropped  uint64 `json:"inbox_dropped" msgpack:"inbox_dropped"`

	Targets          []targets.Target   `json:"targets" msgpack:"targets"`
	ProjectileStates []ballistics.State `json:"projectile_states" msgpack:"projectile_states"`
}

func (a *Arena) capture() *Snapshot {
	camera := a.player.Camera()
	stats := a.ballistics.Stats()
	accepted, dropped := a.InboxStats()
	snap := &Snapshot{
		Tick:      a.tick,
		At:        a.sched.Now(),
		Score:     a.player.Score(),
		Health:    a.player.Health(),
		Weapon:    a.weapons.CurrentName(),
		Held:      a.player.Held(),
		Yaw:       camera.Yaw,
		Pitch:     camera.Pitch,
		Shots:     a.player.Shots(),
		Throttled: a.player.Throttled(),

		Projectiles:   stats.Live,
		Shells:        a.shells.Live(),
		BloodDrops:    a.blood.Live(),
		Impacts:       a.impacts.Live(),
		Trails:        a.trails.Live(),
		LightsInUse:   a.pool.InUse(),
		LightMisses:   a.pool.Misses(),
		ActiveTargets: a.targets.ActiveCount(),

		Hits:          stats.Hits,
		WallImpacts:   stats.Impacts,
		Expired:       stats.Expired,
		InboxAccepted: accepted,
		InboxDropped:  dropped,

		Targets:          a.targets.Targets(),
		ProjectileStates: a.ballistics.Snapshot(),
	}
	for _, recoil := range a.recoils {
		snap.RecoilDropped += recoil.Dropped()
	}
	return snap
}
