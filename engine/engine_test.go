package engine

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/cwbudde/algo-sculpt/config"
	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/internal/testutil"
)

const testRate = 48000

func newTestEngine(t testing.TB, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithSampleRate(testRate),
		WithMaxBlockSize(256),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	e, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// quiet removes the noise excitation so only the sub oscillators sound.
func quiet(e *Engine) {
	e.Params().Set(Mix, 1)
	e.Params().Set(Sub, 1)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"rate", WithSampleRate(-1)},
		{"low rate", WithProcessorOptions(func(c *core.ProcessorConfig) { c.SampleRate = 1000 })},
		{"voices", WithVoices(0)},
		{"block", WithMaxBlockSize(0)},
		{"delay", WithDelayCapacity(4)},
		{"harmonics", WithHarmonics(99)},
		{"sub block", WithMinSubBlock(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Fatal("New succeeded")
			}
		})
	}
}

func TestSilentWithoutExcitation(t *testing.T) {
	e := newTestEngine(t)
	e.Params().Set(Mix, 1)
	out := make([]float32, 1024)
	e.Process(out, nil, nil)
	testutil.RequireSilent(t, out)
}

func TestNoteSoundsAndStaysBounded(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Set(Q, 30)
	p.Set(Feedback, 0.99)
	p.Set(Drive, 1)
	p.Set(Volume, 2)
	p.Set(Sub, 1)
	e.NoteOn(45, 127)
	e.NoteOn(57, 127)

	out := make([]float32, testRate)
	e.Render(out)
	got := testutil.Widen(out)
	testutil.RequireFinite(t, got)
	if peak := testutil.PeakAbs(got); peak == 0 || peak > 1 {
		t.Fatalf("peak = %v, want (0, 1]", peak)
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	render := func() []float64 {
		e := newTestEngine(t, WithSeed(42))
		e.NoteOn(60, 100)
		out := make([]float32, 4096)
		e.Render(out)
		return testutil.Widen(out)
	}
	testutil.RequireSliceNearlyEqual(t, render(), render(), 0)
}

func TestEventOffsetIsSampleAccurate(t *testing.T) {
	e := newTestEngine(t)
	quiet(e)
	out := make([]float32, 256)
	e.Process(out, nil, []Event{{Offset: 128, Kind: NoteOn, Note: 69, Velocity: 127}})

	for i, v := range out[:128] {
		if v != 0 {
			t.Fatalf("out[%d] = %v before the note", i, v)
		}
	}
	if testutil.PeakAbs(out[128:]) == 0 {
		t.Fatal("no output after the note")
	}
	if e.Voices().ActiveCount() != 1 {
		t.Fatalf("ActiveCount = %d, want 1", e.Voices().ActiveCount())
	}
}

func TestCloseEventsMergeToPreviousSplit(t *testing.T) {
	e := newTestEngine(t, WithMinSubBlock(32))
	quiet(e)
	out := make([]float32, 256)
	e.Process(out, nil, []Event{{Offset: 10, Kind: NoteOn, Note: 69, Velocity: 127}})
	if testutil.PeakAbs(out[:10]) == 0 {
		t.Fatal("event within the minimum sub-block was not moved to the block start")
	}
}

func TestEventsAreSortedAndChunked(t *testing.T) {
	events := func() []Event {
		return []Event{
			{Offset: 480, Kind: NoteOff, Note: 60},
			{Offset: 224, Kind: NoteOn, Note: 60, Velocity: 90},
			{Offset: 96, Kind: NoteOn, Note: 64, Velocity: 90},
		}
	}
	render := func(block int) []float64 {
		e := newTestEngine(t, WithMaxBlockSize(block))
		quiet(e)
		out := make([]float32, 1024)
		e.Process(out, nil, events())
		return testutil.Widen(out)
	}
	testutil.RequireSliceNearlyEqual(t, render(64), render(1024), 1e-6)
}

func TestLateEventsApplyAtEnd(t *testing.T) {
	e := newTestEngine(t)
	out := make([]float32, 64)
	e.Process(out, nil, []Event{{Offset: 5000, Kind: NoteOn, Note: 60, Velocity: 100}})
	if e.Voices().ActiveCount() != 1 {
		t.Fatalf("ActiveCount = %d, want 1", e.Voices().ActiveCount())
	}
	e.Process(nil, nil, []Event{{Kind: AllNotesOff}})
	if v := e.Voices().Voice(0); !v.Envelope().IsReleasing() {
		t.Fatal("zero-length Process did not apply AllNotesOff")
	}
}

func TestRenderDrainsQueue(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Queue().Push(Event{Kind: NoteOn, Note: 62, Velocity: 80}); err != nil {
		t.Fatal(err)
	}
	if err := e.Queue().Push(Event{Kind: SustainPedal, Value: 1}); err != nil {
		t.Fatal(err)
	}
	e.Render(make([]float32, 128))
	if e.Queue().Len() != 0 {
		t.Fatalf("queue still holds %d events", e.Queue().Len())
	}
	if e.Voices().ActiveCount() != 1 || !e.Voices().SustainPedal() {
		t.Fatalf("active=%d pedal=%v", e.Voices().ActiveCount(), e.Voices().SustainPedal())
	}
}

func TestLFOModulatesSelectedSlot(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Set(LFODepth, 1)
	p.Set(LFODest, 0)
	p.Set(LFORate, 3)
	e.Render(make([]float32, 256))

	if got := e.Effective(LPFCutoff); got == p.Get(LPFCutoff) {
		t.Fatalf("cutoff not modulated: %v", got)
	}
	if got := e.Effective(DelayTime); got != p.Get(DelayTime) {
		t.Fatalf("delay time modulated with selector 0: %v", got)
	}

	p.Set(LFODepth, 0)
	e.Render(make([]float32, 256))
	if got := e.Effective(LPFCutoff); got != p.Get(LPFCutoff) {
		t.Fatalf("zero depth still modulates: %v", got)
	}
}

func TestApplySettings(t *testing.T) {
	e := newTestEngine(t)
	want := [3]ParamID{LPFCutoff, DelayTime, FreezeSize}
	if got := e.LFOSlots(); got != want {
		t.Fatalf("default slots = %v, want %v", got, want)
	}
	d := config.Default().LFODest
	if got := [3]ParamID{ParamID(d[0]), ParamID(d[1]), ParamID(d[2])}; got != want {
		t.Fatalf("config default slots = %v, want %v", got, want)
	}

	e.ApplySettings(config.Settings{Initialised: true, MIDIChannel: 2, LFODest: [3]uint8{uint8(Q), 30, uint8(Drive)}})
	want = [3]ParamID{Q, DelayTime, Drive}
	if got := e.LFOSlots(); got != want {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	if e.Settings().MIDIChannel != 2 {
		t.Fatalf("channel = %d, want 2", e.Settings().MIDIChannel)
	}

	e.ApplySettings(config.Settings{MIDIChannel: 200})
	if e.Settings() != config.Default() {
		t.Fatalf("invalid settings kept: %+v", e.Settings())
	}
}

func TestSampleSource(t *testing.T) {
	e := newTestEngine(t)
	p := e.Params()
	p.Set(Source, SourceSample)
	p.Set(Mix, 1)
	p.Set(LPFCutoff, 18000)
	e.SetInputSample(testutil.DeterministicSine(220, testRate, 0.5, testRate/2))
	e.NoteOn(57, 127)

	out := make([]float32, 8192)
	e.Render(out)
	got := testutil.Widen(out[4096:])
	if mag := testutil.ToneMagnitude(got, 220, testRate); mag < 1e-3 {
		t.Fatalf("220 Hz magnitude = %v, want the sample to excite the voice", mag)
	}
}

func TestNoiseSourceIgnoresInput(t *testing.T) {
	a := newTestEngine(t)
	b := newTestEngine(t)
	for _, e := range []*Engine{a, b} {
		e.Params().Set(Source, SourceNoise)
		e.NoteOn(60, 100)
	}
	in := make([]float32, 512)
	for i := range in {
		in[i] = 0.9
	}
	outA := make([]float32, 512)
	outB := make([]float32, 512)
	a.Process(outA, in, nil)
	b.Process(outB, nil, nil)
	testutil.RequireSliceNearlyEqual(t, outA, outB, 0)
}

func TestReset(t *testing.T) {
	e := newTestEngine(t)
	e.NoteOn(60, 100)
	e.Render(make([]float32, 512))
	e.Reset()
	if e.Voices().ActiveCount() != 0 {
		t.Fatalf("ActiveCount after Reset = %d", e.Voices().ActiveCount())
	}
}

func TestRenderDoesNotAllocate(t *testing.T) {
	e := newTestEngine(t)
	e.NoteOn(60, 100)
	e.Params().Set(LFODepth, 0.5)
	out := make([]float32, 256)
	allocs := testing.AllocsPerRun(20, func() {
		_ = e.Queue().Push(Event{Kind: PitchBend, Value: 0.5})
		e.Render(out)
	})
	if allocs != 0 {
		t.Fatalf("Render allocates %v times per call", allocs)
	}
}

func TestOutputClampsNonFinite(t *testing.T) {
	e := newTestEngine(t)
	in := make([]float32, 256)
	for i := range in {
		in[i] = float32(math.Inf(1))
	}
	out := make([]float32, 256)
	e.Process(out, in, nil)
	for i, v := range out {
		if v != v || v > 1 || v < -1 {
			t.Fatalf("out[%d] = %v", i, v)
		}
	}
}

func BenchmarkRender(b *testing.B) {
	e := newTestEngine(b)
	for n := range 8 {
		e.NoteOn(48+n*3, 100)
	}
	out := make([]float32, 256)
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		e.Render(out)
	}
}
