package modulation

import (
	"math"
	"testing"
)

type recorder struct {
	calls  int
	values map[Destination]float64
}

func (r *recorder) ApplyModulation(dest Destination, value float64) {
	r.calls++
	if r.values == nil {
		r.values = map[Destination]float64{}
	}
	r.values[dest] = value
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	r, err := NewRouter(6, [NumSlots]Destination{1, 3, 4})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	r.SetDepth(1)
	return r
}

func TestNewRouterValidation(t *testing.T) {
	if _, err := NewRouter(0, [NumSlots]Destination{}); err == nil {
		t.Fatal("expected error for zero destinations")
	}
	if _, err := NewRouter(3, [NumSlots]Destination{0, 1, 3}); err == nil {
		t.Fatal("expected error for out-of-range slot")
	}
	if _, err := NewRouter(3, [NumSlots]Destination{0, -1, 2}); err == nil {
		t.Fatal("expected error for negative slot")
	}
}

func TestRouteCrossfade(t *testing.T) {
	tests := []struct {
		selector float64
		want     map[Destination]float64
	}{
		{0, map[Destination]float64{1: 0.8}},
		{0.25, map[Destination]float64{1: 0.6, 3: 0.2}},
		{1, map[Destination]float64{3: 0.8}},
		{1.5, map[Destination]float64{3: 0.4, 4: 0.4}},
		{2, map[Destination]float64{4: 0.8}},
		{7, map[Destination]float64{4: 0.8}},
		{-3, map[Destination]float64{1: 0.8}},
	}
	for _, tt := range tests {
		r := newTestRouter(t)
		r.SetSelector(tt.selector)
		rec := &recorder{}
		r.Route(0.8, rec)

		if rec.calls != 6 {
			t.Fatalf("selector %v: %d sink calls, want 6", tt.selector, rec.calls)
		}
		for d := Destination(0); d < 6; d++ {
			if got := rec.values[d]; math.Abs(got-tt.want[d]) > 1e-12 {
				t.Fatalf("selector %v dest %d = %v, want %v", tt.selector, d, got, tt.want[d])
			}
		}
	}
}

func TestRouteEnergyPreserved(t *testing.T) {
	r := newTestRouter(t)
	for d := 0.0; d <= 2; d += 0.01 {
		r.SetSelector(d)
		sum := 0.0
		r.Route(1, SinkFunc(func(_ Destination, v float64) { sum += v }))
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("selector %v: routed sum = %v, want 1", d, sum)
		}
	}
}

func TestRouteSharedDestinationSums(t *testing.T) {
	r, err := NewRouter(2, [NumSlots]Destination{1, 1, 0})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	r.SetDepth(0.5)
	r.SetSelector(0.5)
	rec := &recorder{}
	r.Route(1, rec)
	if got := rec.values[1]; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("shared destination = %v, want 0.5", got)
	}
	if got := rec.values[0]; got != 0 {
		t.Fatalf("unselected destination = %v, want 0", got)
	}
}

func TestRouteUnselectedReceivesZero(t *testing.T) {
	r := newTestRouter(t)
	r.SetSelector(0)
	r.Route(1, &recorder{})

	r.SetSelector(2)
	rec := &recorder{}
	r.Route(1, rec)
	if rec.values[1] != 0 {
		t.Fatalf("previous destination = %v, want 0", rec.values[1])
	}
}

func TestRouteNegativeDepthAndNonFinite(t *testing.T) {
	r := newTestRouter(t)
	r.SetDepth(-2)
	if r.Depth() != -1 {
		t.Fatalf("Depth() = %v, want -1", r.Depth())
	}
	rec := &recorder{}
	r.Route(0.5, rec)
	if rec.values[1] != -0.5 {
		t.Fatalf("dest 1 = %v, want -0.5", rec.values[1])
	}

	rec = &recorder{}
	r.Route(math.NaN(), rec)
	for d, v := range rec.values {
		if v != 0 {
			t.Fatalf("NaN lfo routed %v to %d", v, d)
		}
	}
}

func TestLFO(t *testing.T) {
	l, err := NewLFO(1000, 1)
	if err != nil {
		t.Fatalf("NewLFO() error = %v", err)
	}
	if got := l.Tick(250); math.Abs(got-1) > 1e-9 {
		t.Fatalf("quarter cycle = %v, want 1", got)
	}
	if got := l.Tick(500); math.Abs(got+1) > 1e-9 {
		t.Fatalf("three-quarter cycle = %v, want -1", got)
	}

	l.SetRate(1e6)
	if l.Rate() != MaxRateHz {
		t.Fatalf("Rate() = %v, want %v", l.Rate(), MaxRateHz)
	}

	l.Reset()
	l.SetShape(3)
	for range 100 {
		if v := l.Tick(7); v < -1 || v > 1 {
			t.Fatalf("Tick() = %v out of [-1, 1]", v)
		}
	}
}

func BenchmarkRoute(b *testing.B) {
	r, _ := NewRouter(24, [NumSlots]Destination{3, 4, 12})
	r.SetDepth(0.7)
	r.SetSelector(1.3)
	sink := SinkFunc(func(Destination, float64) {})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Route(0.5, sink)
	}
}
