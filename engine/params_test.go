package engine

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParamTableConsistent(t *testing.T) {
	seen := make(map[string]bool)
	for id := ParamID(0); id < NumParams; id++ {
		s := id.Spec()
		if s.Name == "" {
			t.Fatalf("param %d has no name", id)
		}
		if seen[s.Name] {
			t.Fatalf("duplicate param name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Min >= s.Max {
			t.Fatalf("%s: min %v >= max %v", s.Name, s.Min, s.Max)
		}
		if s.Default < s.Min || s.Default > s.Max {
			t.Fatalf("%s: default %v outside [%v, %v]", s.Name, s.Default, s.Min, s.Max)
		}
		if s.Curve == CurveLog && s.Min <= 0 {
			t.Fatalf("%s: log curve needs a positive minimum", s.Name)
		}
	}
}

func TestParamByName(t *testing.T) {
	id, err := ParamByName("LPF_Cutoff")
	if err != nil || id != LPFCutoff {
		t.Fatalf("ParamByName = %v, %v; want LPFCutoff", id, err)
	}
	if _, err := ParamByName("wobble"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("unknown name err = %v, want ErrUnknownParam", err)
	}
	if got := ParamID(-1).String(); !strings.HasPrefix(got, "ParamID(") {
		t.Fatalf("invalid id String = %q", got)
	}
}

func TestCurvesRoundTrip(t *testing.T) {
	for _, id := range []ParamID{Mix, LPFCutoff, Q, Attack, LFODepth} {
		s := id.Spec()
		for _, x := range []float64{0, 0.1, 0.25, 0.5, 0.9, 1} {
			v := s.FromNormalized(x)
			if v < s.Min-1e-9 || v > s.Max+1e-9 {
				t.Fatalf("%s: FromNormalized(%v) = %v outside range", s.Name, x, v)
			}
			if got := s.ToNormalized(v); math.Abs(got-x) > 1e-9 {
				t.Fatalf("%s: ToNormalized(FromNormalized(%v)) = %v", s.Name, x, got)
			}
		}
	}
}

func TestCurveShapes(t *testing.T) {
	if got := LPFCutoff.Spec().FromNormalized(0.5); math.Abs(got-math.Sqrt(30*18000)) > 1e-6 {
		t.Fatalf("log midpoint = %v, want geometric mean", got)
	}
	if got := Attack.Spec().FromNormalized(0.5); math.Abs(got-(5+0.25*3995)) > 1e-9 {
		t.Fatalf("exp midpoint = %v", got)
	}
}

func TestModulate(t *testing.T) {
	s := Mix.Spec()
	if got := s.Modulate(0.5, 0); got != 0.5 {
		t.Fatalf("Modulate(0.5, 0) = %v", got)
	}
	if got := s.Modulate(0.5, 1); math.Abs(got-1) > 1e-12 {
		t.Fatalf("Modulate(0.5, 1) = %v, want 1", got)
	}
	if got := s.Modulate(0.5, -1); math.Abs(got) > 1e-12 {
		t.Fatalf("Modulate(0.5, -1) = %v, want 0", got)
	}
	if got := s.Modulate(0.9, 1); got != 1 {
		t.Fatalf("Modulate clamps at max: got %v", got)
	}
}

func TestParamsStore(t *testing.T) {
	p := NewParams()
	if got := p.Get(LPFCutoff); got != 6000 {
		t.Fatalf("default cutoff = %v, want 6000", got)
	}

	p.Set(Feedback, 5)
	if got := p.Get(Feedback); got != 0.99 {
		t.Fatalf("clamped feedback = %v, want 0.99", got)
	}
	p.Set(Volume, math.NaN())
	if got := p.Get(Volume); got != 1 {
		t.Fatalf("NaN volume = %v, want default 1", got)
	}
	p.Set(NumParams, 3)
	if got := p.Get(NumParams); got != 0 {
		t.Fatalf("out-of-range Get = %v, want 0", got)
	}

	p.SetNormalized(LPFCutoff, 1)
	if got := p.Get(LPFCutoff); got != 18000 {
		t.Fatalf("normalized cutoff = %v, want 18000", got)
	}
	if got := p.Normalized(LPFCutoff); math.Abs(got-1) > 1e-12 {
		t.Fatalf("Normalized = %v, want 1", got)
	}

	if err := p.SetByName("q", 20); err != nil {
		t.Fatal(err)
	}
	var snap [NumParams]float64
	p.Snapshot(&snap)
	if snap[Q] != 20 || snap[Feedback] != 0.99 {
		t.Fatalf("snapshot = %v", snap)
	}

	p.Reset()
	if got := p.Get(Q); got != 10 {
		t.Fatalf("reset Q = %v, want 10", got)
	}
}

func TestParamsConcurrentAccess(t *testing.T) {
	p := NewParams()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 10000 {
			p.Set(Mix, float64(i%100)/100)
		}
	}()
	var snap [NumParams]float64
	for range 1000 {
		p.Snapshot(&snap)
		if snap[Mix] < 0 || snap[Mix] > 1 {
			t.Errorf("torn mix value %v", snap[Mix])
		}
	}
	<-done
}
