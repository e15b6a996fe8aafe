// Package lights bounds how many emissive point lights exist at once by
// lending pooled lights to muzzle flashes and projectiles.
package lights

import (
	"fmt"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
)

// Profile is the state an acquired light starts in.
type Profile struct {
	Intensity float64
	Range     float64
	Color     host.Color
}

// DefaultProfile is the warm muzzle light.
var DefaultProfile = Profile{Intensity: 15, Range: 25, Color: host.Color{R: 1, G: 0.7, B: 0}}

// Options configure a pool.
type Options struct {
	Max     int
	Profile Profile
	Logger  *logging.Logger
}

type slot struct {
	handle host.LightHandle
	inUse  bool
}

// Pool lends lights created through the host. It is single-threaded.
type Pool struct {
	host    host.Lights
	max     int
	profile Profile
	slots   []slot
	index   map[host.LightHandle]int
	inUse   int
	misses  uint64
	log     *logging.Logger
}

// NewPool pre-creates half of max lights in the neutral state.
func NewPool(lights host.Lights, opts Options) *Pool {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	profile := opts.Profile
	if profile == (Profile{}) {
		profile = DefaultProfile
	}
	p := &Pool{
		host:    lights,
		max:     opts.Max,
		profile: profile,
		index:   make(map[host.LightHandle]int),
		log:     logger.With(logging.String("component", "light_pool")),
	}
	for i := 0; i < opts.Max/2; i++ {
		p.grow()
	}
	return p
}

func (p *Pool) grow() int {
	h := p.host.CreateLight(fmt.Sprintf("pooled-light-%d", len(p.slots)))
	p.host.SetLight(h, host.LightState{})
	p.slots = append(p.slots, slot{handle: h})
	p.index[h] = len(p.slots) - 1
	return len(p.slots) - 1
}

// Acquire lends a light set to the pool profile. ok is false when every light
// is in use and the pool already holds Max lights; callers skip the light then.
func (p *Pool) Acquire() (host.LightHandle, bool) {
	if p == nil || p.host == nil {
		return 0, false
	}
	//1.- Reuse the first free light.
	free := -1
	for i := range p.slots {
		if !p.slots[i].inUse {
			free = i
			break
		}
	}
	//2.- Otherwise grow while under the cap.
	if free < 0 {
		if len(p.slots) >= p.max {
			p.misses++
			p.log.Debug("light pool exhausted", logging.Int("max", p.max))
			return 0, false
		}
		free = p.grow()
	}
	p.slots[free].inUse = true
	p.inUse++
	h := p.slots[free].handle
	p.host.SetLight(h, host.LightState{Intensity: p.profile.Intensity, Range: p.profile.Range, Color: p.profile.Color})
	return h, true
}

// Release resets h to zero intensity without a parent and returns it to the
// free set. Unknown or already free handles are ignored.
func (p *Pool) Release(h host.LightHandle) bool {
	if p == nil {
		return false
	}
	i, ok := p.index[h]
	if !ok || !p.slots[i].inUse {
		return false
	}
	p.slots[i].inUse = false
	p.inUse--
	p.host.SetLight(h, host.LightState{})
	return true
}

// Profile returns the state acquired lights start in.
func (p *Pool) Profile() Profile {
	if p == nil {
		return DefaultProfile
	}
	return p.profile
}

// InUse reports lent lights.
func (p *Pool) InUse() int {
	if p == nil {
		return 0
	}
	return p.inUse
}

// Size reports created lights.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.slots)
}

// Max reports the capacity.
func (p *Pool) Max() int {
	if p == nil {
		return 0
	}
	return p.max
}

// Misses counts acquisitions that found no light.
func (p *Pool) Misses() uint64 {
	if p == nil {
		return 0
	}
	return p.misses
}

// Close disposes every light, lent or free.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	for _, s := range p.slots {
		p.host.DisposeLight(s.handle)
	}
	p.slots = nil
	p.index = make(map[host.LightHandle]int)
	p.inUse = 0
}
