package combat

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"shootingrange/rangesim/internal/weapon"
)

func TestDefaultCatalogResolvesRangeWeapons(t *testing.T) {
	catalog, err := Default()
	if err != nil {
		t.Fatalf("Default() returned error: %v", err)
	}
	if names := catalog.Names(); len(names) != 2 || names[0] != "assaultRifle" || names[1] != "shotgun" {
		t.Fatalf("unexpected slot order %v", names)
	}

	rifle, err := catalog.Resolve("assaultRifle")
	if err != nil {
		t.Fatalf("resolve rifle: %v", err)
	}
	d := rifle.Descriptor
	if d.FireRate != 100*time.Millisecond || d.Damage != 15 || d.Spread != 0.03 || !d.Automatic {
		t.Fatalf("unexpected rifle descriptor %+v", d)
	}
	if d.Muzzle.Offset.Z != 0.9 || d.RecoilAmount != 0.1 || d.Pellets != 1 {
		t.Fatalf("rifle defaults not merged: %+v", d)
	}
	if len(rifle.Modules) != 4 || rifle.Modules[0].Kind != ModuleRecoil || rifle.Modules[3].Kind != ModuleProjectile {
		t.Fatalf("unexpected rifle modules %+v", rifle.Modules)
	}
	recoil := rifle.Modules[0].Recoil
	if recoil.Duration != 80*time.Millisecond || recoil.Return != 150*time.Millisecond || recoil.Backward != 0.2 {
		t.Fatalf("unexpected recoil profile %+v", recoil)
	}
	//1.- The projectile override keeps every default it does not mention.
	projectile := rifle.Modules[3].Projectile
	if projectile.Speed != 150 || projectile.MaxRange != 100 || projectile.Lifetime != 2*time.Second || projectile.Size != 0.05 {
		t.Fatalf("unexpected rifle projectile %+v", projectile)
	}
}

func TestShotgunOverrides(t *testing.T) {
	catalog, _ := Default()
	shotgun, err := catalog.Resolve("shotgun")
	if err != nil {
		t.Fatalf("resolve shotgun: %v", err)
	}
	if shotgun.Descriptor.Automatic || shotgun.Descriptor.FireRate != 800*time.Millisecond || shotgun.Descriptor.Pellets != 1 {
		t.Fatalf("unexpected shotgun descriptor %+v", shotgun.Descriptor)
	}
	var sawEnhanced, sawProjectile bool
	for _, module := range shotgun.Modules {
		switch module.Kind {
		case ModuleEnhancedRecoil:
			sawEnhanced = module.Multiplier == 1.5
		case ModuleProjectile:
			p := module.Projectile
			sawProjectile = p.Speed == 120 && p.Lifetime == 1200*time.Millisecond && p.Color.G == 0.5 && p.LightRange == 5
		case ModuleShellEjection:
			if module.Side != "right" {
				t.Fatalf("expected right ejection, got %q", module.Side)
			}
		}
	}
	if !sawEnhanced || !sawProjectile {
		t.Fatalf("shotgun overrides missing: enhanced=%v projectile=%v", sawEnhanced, sawProjectile)
	}
}

func TestResolveUnknownWeapon(t *testing.T) {
	catalog, _ := Default()
	if _, err := catalog.Resolve("railgun"); !errors.Is(err, weapon.ErrUnknownWeapon) {
		t.Fatalf("expected ErrUnknownWeapon, got %v", err)
	}
}

func TestLoadCatalogReportsEveryProblem(t *testing.T) {
	payload := []byte(`{
		"defaults": {"fireRateMs": 0, "projectile": {"speed": 10, "maxRange": 10}},
		"weapons": {
			"a": {"slot": 1, "spread": -1, "modules": [{"kind": "laser"}]},
			"b": {"slot": 1, "pellets": 0, "modules": [{"kind": "shell_ejection", "side": "up"}]}
		}
	}`)
	_, err := LoadCatalog(payload)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, fragment := range []string{"fireRateMs", "spread", "laser", "pellets", "side", "slot 1"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %v", fragment, err)
		}
	}
}

func TestChecksumIsStable(t *testing.T) {
	a, _ := LoadCatalog(defaultPayload)
	b, _ := Default()
	if a.Checksum() == "" || a.Checksum() != b.Checksum() {
		t.Fatalf("checksums differ: %q vs %q", a.Checksum(), b.Checksum())
	}
}

func TestResolveHitFalloffAndPrecision(t *testing.T) {
	catalog, _ := Default()
	shotgun, _ := catalog.Resolve("shotgun")

	near := ResolveHit(shotgun, HitContext{DistanceMeters: 5, OffsetMeters: 0, HitRadius: 1})
	if near.Damage != 50 || near.Precision != 1 {
		t.Fatalf("unexpected close-range hit %+v", near)
	}
	mid := ResolveHit(shotgun, HitContext{DistanceMeters: 20, OffsetMeters: 0.5, HitRadius: 1})
	if math.Abs(mid.Factor-0.6) > 1e-9 || math.Abs(mid.Precision-0.5) > 1e-9 {
		t.Fatalf("unexpected mid-range hit %+v", mid)
	}
	far := ResolveHit(shotgun, HitContext{DistanceMeters: 80})
	if far.Factor != 0.2 || far.Damage != 10 {
		t.Fatalf("unexpected far hit %+v", far)
	}
	//1.- Points come from ScoreForHit, so the hit fields never carry a second score.
	fields := far.LoggingFields()
	if len(fields) != 3 || fields[0].Value != "10.00" {
		t.Fatalf("unexpected logging fields %+v", fields)
	}
	for _, f := range fields {
		if f.Key == "points" {
			t.Fatalf("hit fields should not report points: %+v", fields)
		}
	}
}

func TestScoreForHit(t *testing.T) {
	catalog, _ := Default()
	if got := catalog.ScoreForHit("assaultRifle", 15); got != 10 {
		t.Fatalf("expected 10 points, got %d", got)
	}
	if got := catalog.ScoreForHit("railgun", 15); got != 0 {
		t.Fatalf("expected unknown weapon to score 0, got %d", got)
	}
	if got := catalog.ScoreForHit("shotgun", 0); got != 0 {
		t.Fatalf("expected zero damage to score 0, got %d", got)
	}
}
