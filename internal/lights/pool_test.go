package lights

import (
	"testing"

	"go.uber.org/mock/gomock"
	"pgregory.net/rapid"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/host/mocks"
	"shootingrange/rangesim/internal/logging"
)

type fakeLights struct {
	next     host.LightHandle
	state    map[host.LightHandle]host.LightState
	disposed int
}

func newFakeLights() *fakeLights {
	return &fakeLights{state: make(map[host.LightHandle]host.LightState)}
}

func (f *fakeLights) CreateLight(string) host.LightHandle {
	f.next++
	f.state[f.next] = host.LightState{}
	return f.next
}

func (f *fakeLights) SetLight(h host.LightHandle, s host.LightState) { f.state[h] = s }

func (f *fakeLights) DisposeLight(h host.LightHandle) {
	delete(f.state, h)
	f.disposed++
}

func TestPoolPrewarmsHalfOfMax(t *testing.T) {
	fake := newFakeLights()
	pool := NewPool(fake, Options{Max: 30, Logger: logging.NewTestLogger()})

	if pool.Size() != 15 || pool.InUse() != 0 {
		t.Fatalf("expected 15 idle lights, got size=%d inUse=%d", pool.Size(), pool.InUse())
	}
	for h, s := range fake.state {
		if s != (host.LightState{}) {
			t.Fatalf("light %d should start neutral, got %+v", h, s)
		}
	}
}

func TestAcquireGrowsThenFails(t *testing.T) {
	fake := newFakeLights()
	pool := NewPool(fake, Options{Max: 3, Logger: logging.NewTestLogger()})

	var lent []host.LightHandle
	for i := 0; i < 3; i++ {
		h, ok := pool.Acquire()
		if !ok {
			t.Fatalf("acquire %d failed below capacity", i)
		}
		if fake.state[h].Intensity != DefaultProfile.Intensity || fake.state[h].Range != DefaultProfile.Range {
			t.Fatalf("acquired light not set to profile: %+v", fake.state[h])
		}
		lent = append(lent, h)
	}

	//1.- At capacity the pool reports none available instead of failing loudly.
	if _, ok := pool.Acquire(); ok {
		t.Fatalf("expected exhaustion at max")
	}
	if pool.Misses() != 1 || pool.Size() != 3 {
		t.Fatalf("unexpected pool state size=%d misses=%d", pool.Size(), pool.Misses())
	}

	//2.- Releasing makes the light reusable and neutral again.
	if !pool.Release(lent[1]) {
		t.Fatalf("release failed")
	}
	if fake.state[lent[1]] != (host.LightState{}) {
		t.Fatalf("released light not reset: %+v", fake.state[lent[1]])
	}
	if pool.Release(lent[1]) {
		t.Fatalf("double release must be ignored")
	}
	again, ok := pool.Acquire()
	if !ok || again != lent[1] {
		t.Fatalf("expected the released light back, got %d ok=%v", again, ok)
	}
}

func TestReleaseResetsThroughHost(t *testing.T) {
	ctrl := gomock.NewController(t)
	lights := mocks.NewMockLights(ctrl)

	lights.EXPECT().CreateLight(gomock.Any()).Return(host.LightHandle(9))
	gomock.InOrder(
		lights.EXPECT().SetLight(host.LightHandle(9), host.LightState{}),
		lights.EXPECT().SetLight(host.LightHandle(9), host.LightState{Intensity: 15, Range: 25, Color: DefaultProfile.Color}),
		lights.EXPECT().SetLight(host.LightHandle(9), host.LightState{}),
	)
	lights.EXPECT().DisposeLight(host.LightHandle(9))

	pool := NewPool(lights, Options{Max: 1, Logger: logging.NewTestLogger()})
	h, ok := pool.Acquire()
	if !ok {
		t.Fatalf("expected a light")
	}
	pool.Release(h)
	pool.Close()
}

func TestNilPoolIsInert(t *testing.T) {
	var pool *Pool
	if _, ok := pool.Acquire(); ok || pool.Release(1) || pool.InUse() != 0 {
		t.Fatalf("nil pool must be inert")
	}
	pool.Close()
}

func TestInUseNeverExceedsMax(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fake := newFakeLights()
		max := rapid.IntRange(0, 30).Draw(t, "max")
		pool := NewPool(fake, Options{Max: max, Logger: logging.NewTestLogger()})
		var lent []host.LightHandle

		for i := 0; i < 200; i++ {
			if rapid.Bool().Draw(t, "acquire") {
				if h, ok := pool.Acquire(); ok {
					lent = append(lent, h)
				}
			} else if len(lent) > 0 {
				idx := rapid.IntRange(0, len(lent)-1).Draw(t, "release")
				pool.Release(lent[idx])
				lent = append(lent[:idx], lent[idx+1:]...)
			}
			if pool.InUse() > max || pool.Size() > max {
				t.Fatalf("pool exceeded max: inUse=%d size=%d max=%d", pool.InUse(), pool.Size(), max)
			}
			if pool.InUse() != len(lent) {
				t.Fatalf("in-use count %d disagrees with %d lent lights", pool.InUse(), len(lent))
			}
		}
	})
}
