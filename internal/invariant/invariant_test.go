//go:build !rangedebug

package invariant

import "testing"

func TestCheckIsSilentInReleaseBuilds(t *testing.T) {
	before := Violations()

	if !Check(true, "never counted") {
		t.Fatalf("passing checks must return true")
	}
	if Check(false, "fire before apply") {
		t.Fatalf("failing checks must return false")
	}
	if got := Violations() - before; got != 1 {
		t.Fatalf("expected one recorded violation, got %d", got)
	}
}
