package combat

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	_ "embed"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/weapon"
)

// ModuleKind enumerates the weapon behaviours a catalog entry may attach.
type ModuleKind string

const (
	ModuleRecoil         ModuleKind = "recoil"
	ModuleEnhancedRecoil ModuleKind = "enhanced_recoil"
	ModuleMuzzleFlash    ModuleKind = "muzzle_flash"
	ModuleShellEjection  ModuleKind = "shell_ejection"
	ModuleProjectile     ModuleKind = "projectile"
)

func (k ModuleKind) known() bool {
	switch k {
	case ModuleRecoil, ModuleEnhancedRecoil, ModuleMuzzleFlash, ModuleShellEjection, ModuleProjectile:
		return true
	}
	return false
}

// RecoilSettings are the baseline recoil kick values.
type RecoilSettings struct {
	Backward    float64 `json:"backward"`
	Upward      float64 `json:"upward"`
	Rotation    float64 `json:"rotation"`
	DurationMs  float64 `json:"durationMs"`
	ReturnMs    float64 `json:"returnMs"`
	EasingPower float64 `json:"easingPower"`
}

// MuzzleFlashSettings are the baseline flash values.
type MuzzleFlashSettings struct {
	LightDurationMs float64 `json:"lightDurationMs"`
	FlashDurationMs float64 `json:"flashDurationMs"`
	FlashSize       float64 `json:"flashSize"`
	Offset          float64 `json:"offset"`
}

// ProjectileSettings are the baseline projectile values.
type ProjectileSettings struct {
	Speed          float64    `json:"speed"`
	LifetimeMs     float64    `json:"lifetimeMs"`
	MaxRange       float64    `json:"maxRange"`
	Size           float64    `json:"size"`
	Color          host.Color `json:"color"`
	LightIntensity float64    `json:"lightIntensity"`
	LightRange     float64    `json:"lightRange"`
	TrailWidth     float64    `json:"trailWidth"`
	EmitRate       float64    `json:"emitRate"`
}

// Falloff scales damage down between StartMeters and EndMeters.
type Falloff struct {
	StartMeters float64 `json:"startMeters"`
	EndMeters   float64 `json:"endMeters"`
	MinFactor   float64 `json:"minFactor"`
}

// Defaults is the baseline every weapon entry starts from.
type Defaults struct {
	FireRateMs   float64             `json:"fireRateMs"`
	Damage       float64             `json:"damage"`
	Spread       float64             `json:"spread"`
	RecoilAmount float64             `json:"recoilAmount"`
	Pellets      int                 `json:"pellets"`
	MountOffset  physics.Vec3        `json:"mountOffset"`
	BodySize     host.Dimensions     `json:"bodySize"`
	Falloff      Falloff             `json:"falloff"`
	Recoil       RecoilSettings      `json:"recoil"`
	MuzzleFlash  MuzzleFlashSettings `json:"muzzleFlash"`
	Projectile   ProjectileSettings  `json:"projectile"`
}

// RecoilOverride customises recoil for one module entry.
type RecoilOverride struct {
	Backward    *float64 `json:"backward,omitempty"`
	Upward      *float64 `json:"upward,omitempty"`
	Rotation    *float64 `json:"rotation,omitempty"`
	DurationMs  *float64 `json:"durationMs,omitempty"`
	ReturnMs    *float64 `json:"returnMs,omitempty"`
	EasingPower *float64 `json:"easingPower,omitempty"`
}

// MuzzleFlashOverride customises the flash for one module entry.
type MuzzleFlashOverride struct {
	LightDurationMs *float64 `json:"lightDurationMs,omitempty"`
	FlashDurationMs *float64 `json:"flashDurationMs,omitempty"`
	FlashSize       *float64 `json:"flashSize,omitempty"`
	Offset          *float64 `json:"offset,omitempty"`
}

// ProjectileOverride customises projectiles for one module entry.
type ProjectileOverride struct {
	Speed          *float64    `json:"speed,omitempty"`
	LifetimeMs     *float64    `json:"lifetimeMs,omitempty"`
	MaxRange       *float64    `json:"maxRange,omitempty"`
	Size           *float64    `json:"size,omitempty"`
	Color          *host.Color `json:"color,omitempty"`
	LightIntensity *float64    `json:"lightIntensity,omitempty"`
	LightRange     *float64    `json:"lightRange,omitempty"`
	TrailWidth     *float64    `json:"trailWidth,omitempty"`
	EmitRate       *float64    `json:"emitRate,omitempty"`
}

// ModuleEntry attaches one behaviour to a weapon.
type ModuleEntry struct {
	Kind        ModuleKind           `json:"kind"`
	Multiplier  *float64             `json:"multiplier,omitempty"`
	Side        string               `json:"side,omitempty"`
	Recoil      *RecoilOverride      `json:"recoil,omitempty"`
	MuzzleFlash *MuzzleFlashOverride `json:"muzzleFlash,omitempty"`
	Projectile  *ProjectileOverride  `json:"projectile,omitempty"`
}

// WeaponEntry customises the defaults for one weapon.
type WeaponEntry struct {
	Slot         int           `json:"slot"`
	FireRateMs   *float64      `json:"fireRateMs,omitempty"`
	Damage       *float64      `json:"damage,omitempty"`
	Spread       *float64      `json:"spread,omitempty"`
	Automatic    bool          `json:"automatic"`
	RecoilAmount *float64      `json:"recoilAmount,omitempty"`
	Pellets      *int          `json:"pellets,omitempty"`
	Muzzle       physics.Vec3  `json:"muzzle"`
	Falloff      *Falloff      `json:"falloff,omitempty"`
	Modules      []ModuleEntry `json:"modules"`
}

// Scoring converts hits into points.
type Scoring struct {
	PointsPerHit int `json:"pointsPerHit"`
}

// CatalogFile mirrors the structure of weapons.json.
type CatalogFile struct {
	Defaults Defaults               `json:"defaults"`
	Scoring  Scoring                `json:"scoring"`
	Weapons  map[string]WeaponEntry `json:"weapons"`
}

// RecoilProfile is a resolved recoil configuration.
type RecoilProfile struct {
	Backward    float64
	Upward      float64
	Rotation    float64
	Duration    time.Duration
	Return      time.Duration
	EasingPower float64
}

// FlashProfile is a resolved muzzle flash configuration.
type FlashProfile struct {
	LightDuration time.Duration
	FlashDuration time.Duration
	FlashSize     float64
	Offset        float64
}

// ProjectileProfile is a resolved projectile configuration.
type ProjectileProfile struct {
	Speed          float64
	Lifetime       time.Duration
	MaxRange       float64
	Size           float64
	Color          host.Color
	LightIntensity float64
	LightRange     float64
	TrailWidth     float64
	EmitRate       float64
}

// ModuleSpec is a resolved module entry.
type ModuleSpec struct {
	Kind       ModuleKind
	Multiplier float64
	Side       string
	Recoil     RecoilProfile
	Flash      FlashProfile
	Projectile ProjectileProfile
}

// Loadout is everything needed to build one weapon.
type Loadout struct {
	Slot       int
	Descriptor weapon.Descriptor
	Falloff    Falloff
	Modules    []ModuleSpec
}

// Catalog is a parsed and validated weapon catalog.
type Catalog struct {
	file     CatalogFile
	checksum string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

//go:embed weapons.json
var defaultPayload []byte

// Default returns the embedded catalog, parsed once and shared.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		//1.- Parse the embedded payload once so every caller shares the same data.
		defaultCatalog, defaultErr = LoadCatalog(defaultPayload)
	})
	return defaultCatalog, defaultErr
}

// LoadCatalog parses and validates a catalog payload, reporting every problem.
func LoadCatalog(data []byte) (*Catalog, error) {
	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode weapon catalog: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, fmt.Errorf("invalid weapon catalog: %w", err)
	}
	sum := sha256.Sum256(data)
	return &Catalog{file: file, checksum: hex.EncodeToString(sum[:])}, nil
}

func (f CatalogFile) validate() error {
	var problems []error
	if !(f.Defaults.FireRateMs > 0) {
		problems = append(problems, errors.New("defaults.fireRateMs must be positive"))
	}
	if !(f.Defaults.Projectile.Speed > 0) || !(f.Defaults.Projectile.MaxRange > 0) {
		problems = append(problems, errors.New("defaults.projectile speed and maxRange must be positive"))
	}
	if len(f.Weapons) == 0 {
		problems = append(problems, errors.New("at least one weapon is required"))
	}
	slots := make(map[int]string)
	for name, entry := range f.Weapons {
		if other, taken := slots[entry.Slot]; taken && entry.Slot != 0 {
			problems = append(problems, fmt.Errorf("%s: slot %d already used by %s", name, entry.Slot, other))
		}
		slots[entry.Slot] = name
		if entry.FireRateMs != nil && !(*entry.FireRateMs > 0) {
			problems = append(problems, fmt.Errorf("%s: fireRateMs must be positive", name))
		}
		if entry.Spread != nil && *entry.Spread < 0 {
			problems = append(problems, fmt.Errorf("%s: spread must be non-negative", name))
		}
		if entry.Pellets != nil && *entry.Pellets < 1 {
			problems = append(problems, fmt.Errorf("%s: pellets must be at least 1", name))
		}
		for i, module := range entry.Modules {
			if !module.Kind.known() {
				problems = append(problems, fmt.Errorf("%s: module %d has unknown kind %q", name, i, module.Kind))
			}
			if module.Kind == ModuleShellEjection && module.Side != "" && module.Side != "left" && module.Side != "right" {
				problems = append(problems, fmt.Errorf("%s: module %d side must be left or right", name, i))
			}
		}
	}
	return errors.Join(problems...)
}

// Checksum identifies the exact payload, recorded in replay headers.
func (c *Catalog) Checksum() string { return c.checksum }

// Scoring returns the scoring table.
func (c *Catalog) Scoring() Scoring {
	scoring := c.file.Scoring
	if scoring.PointsPerHit <= 0 {
		scoring.PointsPerHit = 10
	}
	return scoring
}

// File returns a copy of the parsed payload.
func (c *Catalog) File() CatalogFile {
	clone := c.file
	clone.Weapons = make(map[string]WeaponEntry, len(c.file.Weapons))
	for name, entry := range c.file.Weapons {
		clone.Weapons[name] = entry
	}
	return clone
}

// Names lists weapons ordered by slot, then name.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.file.Weapons))
	for name := range c.file.Weapons {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if sa, sb := c.file.Weapons[a].Slot, c.file.Weapons[b].Slot; sa != sb {
			return sa - sb
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return names
}

// Loadouts resolves every weapon in slot order.
func (c *Catalog) Loadouts() ([]Loadout, error) {
	names := c.Names()
	loadouts := make([]Loadout, 0, len(names))
	for _, name := range names {
		loadout, err := c.Resolve(name)
		if err != nil {
			return nil, err
		}
		loadouts = append(loadouts, loadout)
	}
	return loadouts, nil
}

// Resolve merges the defaults with the named weapon entry.
func (c *Catalog) Resolve(name string) (Loadout, error) {
	entry, ok := c.file.Weapons[name]
	if !ok {
		return Loadout{}, fmt.Errorf("%w: %s", weapon.ErrUnknownWeapon, name)
	}
	base := c.file.Defaults

	//1.- Blend the weapon parameters with the shared defaults.
	pellets := base.Pellets
	if entry.Pellets != nil {
		pellets = *entry.Pellets
	}
	falloff := base.Falloff
	if entry.Falloff != nil {
		falloff = *entry.Falloff
	}
	loadout := Loadout{
		Slot: entry.Slot,
		Descriptor: weapon.Descriptor{
			Name:         name,
			FireRate:     durationFromMillis(pickFloat(base.FireRateMs, entry.FireRateMs, false)),
			Damage:       pickFloat(base.Damage, entry.Damage, true),
			Spread:       pickFloat(base.Spread, entry.Spread, true),
			Automatic:    entry.Automatic,
			RecoilAmount: pickFloat(base.RecoilAmount, entry.RecoilAmount, true),
			Pellets:      pellets,
			Muzzle:       weapon.Muzzle{Offset: entry.Muzzle, Orientation: physics.Identity},
			MountOffset:  base.MountOffset,
			BodySize:     base.BodySize,
		},
		Falloff: falloff,
	}

	//2.- Resolve each module against its own block of defaults.
	for _, module := range entry.Modules {
		spec := ModuleSpec{Kind: module.Kind, Side: pickString("right", module.Side), Multiplier: 1}
		switch module.Kind {
		case ModuleRecoil:
			spec.Recoil = resolveRecoil(base.Recoil, module.Recoil)
		case ModuleEnhancedRecoil:
			spec.Multiplier = pickFloat(1.5, module.Multiplier, false)
		case ModuleMuzzleFlash:
			spec.Flash = resolveFlash(base.MuzzleFlash, module.MuzzleFlash)
		case ModuleProjectile:
			spec.Projectile = resolveProjectile(base.Projectile, module.Projectile)
		}
		loadout.Modules = append(loadout.Modules, spec)
	}
	return loadout, nil
}

func resolveRecoil(base RecoilSettings, o *RecoilOverride) RecoilProfile {
	if o == nil {
		o = &RecoilOverride{}
	}
	return RecoilProfile{
		Backward:    pickFloat(base.Backward, o.Backward, true),
		Upward:      pickFloat(base.Upward, o.Upward, true),
		Rotation:    pickFloat(base.Rotation, o.Rotation, true),
		Duration:    durationFromMillis(pickFloat(base.DurationMs, o.DurationMs, false)),
		Return:      durationFromMillis(pickFloat(base.ReturnMs, o.ReturnMs, false)),
		EasingPower: pickFloat(base.EasingPower, o.EasingPower, false),
	}
}

func resolveFlash(base MuzzleFlashSettings, o *MuzzleFlashOverride) FlashProfile {
	if o == nil {
		o = &MuzzleFlashOverride{}
	}
	return FlashProfile{
		LightDuration: durationFromMillis(pickFloat(base.LightDurationMs, o.LightDurationMs, false)),
		FlashDuration: durationFromMillis(pickFloat(base.FlashDurationMs, o.FlashDurationMs, false)),
		FlashSize:     pickFloat(base.FlashSize, o.FlashSize, false),
		Offset:        pickFloat(base.Offset, o.Offset, true),
	}
}

func resolveProjectile(base ProjectileSettings, o *ProjectileOverride) ProjectileProfile {
	if o == nil {
		o = &ProjectileOverride{}
	}
	color := base.Color
	if o.Color != nil {
		color = *o.Color
	}
	return ProjectileProfile{
		Speed:          pickFloat(base.Speed, o.Speed, false),
		Lifetime:       durationFromMillis(pickFloat(base.LifetimeMs, o.LifetimeMs, true)),
		MaxRange:       pickFloat(base.MaxRange, o.MaxRange, false),
		Size:           pickFloat(base.Size, o.Size, false),
		Color:          color,
		LightIntensity: pickFloat(base.LightIntensity, o.LightIntensity, true),
		LightRange:     pickFloat(base.LightRange, o.LightRange, true),
		TrailWidth:     pickFloat(base.TrailWidth, o.TrailWidth, true),
		EmitRate:       pickFloat(base.EmitRate, o.EmitRate, true),
	}
}

func pickFloat(base float64, override *float64, allowZero bool) float64 {
	//1.- Use the override when present unless it would zero a field that must stay positive.
	if override != nil {
		if !allowZero && *override <= 0 {
			return base
		}
		return *override
	}
	if base < 0 {
		return 0
	}
	return base
}

func pickString(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func durationFromMillis(ms float64) time.Duration {
	//1.- Guard against invalid configuration so negative durations never reach the scheduler.
	if !(ms > 0) {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}
