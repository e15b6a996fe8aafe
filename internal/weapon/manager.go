package weapon

import (
	"errors"
	"fmt"
	"time"

	"shootingrange/rangesim/internal/logging"
)

var (
	// ErrUnknownWeapon is returned for names that were never registered.
	ErrUnknownWeapon = errors.New("unknown weapon")
	// ErrDuplicateWeapon is returned when a name is registered twice.
	ErrDuplicateWeapon = errors.New("weapon already registered")
)

// SwitchListener observes successful weapon changes.
type SwitchListener func(previous, current string)

// Manager owns every registered weapon and tracks which one is selected.
type Manager struct {
	weapons  map[string]*Weapon
	order    []string
	current  string
	onSwitch []SwitchListener
	log      *logging.Logger
}

// NewManager creates an empty manager.
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.L()
	}
	return &Manager{weapons: make(map[string]*Weapon), log: logger.With(logging.String("component", "weapon_manager"))}
}

// OnSwitch registers a listener for weapon changes.
func (m *Manager) OnSwitch(fn SwitchListener) {
	if m == nil || fn == nil {
		return
	}
	m.onSwitch = append(m.onSwitch, fn)
}

// Register adds w under name. The first registered weapon becomes current and
// visible; the rest start hidden.
func (m *Manager) Register(name string, w *Weapon) error {
	if m == nil || w == nil {
		return ErrNilWeapon
	}
	if _, exists := m.weapons[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateWeapon, name)
	}
	m.weapons[name] = w
	m.order = append(m.order, name)
	if m.current == "" {
		m.current = name
		w.SetVisible(true)
	} else {
		w.SetVisible(false)
	}
	m.log.Info("weapon registered", logging.String("weapon", name), logging.Bool("current", m.current == name))
	return nil
}

// Switch selects name, hiding the previous weapon and showing the new one.
// Switching to the current weapon is a no-op that reports true; unknown names
// report false.
func (m *Manager) Switch(name string) bool {
	if m == nil {
		return false
	}
	next, ok := m.weapons[name]
	if !ok {
		m.log.Warn("switch to unknown weapon", logging.String("weapon", name))
		return false
	}
	if name == m.current {
		return true
	}
	previous := m.current
	if prev := m.weapons[previous]; prev != nil {
		prev.SetVisible(false)
	}
	next.SetVisible(true)
	m.current = name
	for _, fn := range m.onSwitch {
		fn(previous, name)
	}
	return true
}

// AddModule attaches module to the named weapon.
func (m *Manager) AddModule(name string, module Module) error {
	if m == nil {
		return ErrUnknownWeapon
	}
	w, ok := m.weapons[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWeapon, name)
	}
	return w.Attach(module)
}

// Current returns the selected weapon, nil when none is registered.
func (m *Manager) Current() *Weapon {
	if m == nil {
		return nil
	}
	return m.weapons[m.current]
}

// CurrentName returns the selected weapon's name.
func (m *Manager) CurrentName() string {
	if m == nil {
		return ""
	}
	return m.current
}

// Get returns the weapon registered under name.
func (m *Manager) Get(name string) (*Weapon, bool) {
	if m == nil {
		return nil, false
	}
	w, ok := m.weapons[name]
	return w, ok
}

// Names lists weapons in registration order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.order...)
}

// Update ticks every weapon so background modules (recoil return, flashes) progress.
func (m *Manager) Update(dt time.Duration) {
	if m == nil {
		return
	}
	for _, name := range m.order {
		m.weapons[name].Update(dt)
	}
}

// Dispose disposes every weapon.
func (m *Manager) Dispose() {
	if m == nil {
		return
	}
	for _, name := range m.order {
		m.weapons[name].Dispose()
	}
}
