package audioio

import (
	"testing"
)

func TestNewSelectsBackend(t *testing.T) {
	cfg := Config{SampleRate: 48000, BlockSize: 256}
	for _, name := range []string{"oto", "malgo"} {
		b, err := New(name, cfg)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if b.Name() != name {
			t.Fatalf("Name = %q, want %q", b.Name(), name)
		}
	}
	if _, err := New("jack", cfg); err == nil {
		t.Fatal("unknown backend accepted")
	}
	if _, err := New("oto", Config{SampleRate: 100, BlockSize: 1}); err == nil {
		t.Fatal("bad rate accepted")
	}
}

func TestFloatCodec(t *testing.T) {
	src := []float32{0, 0.5, -1, 0.25}
	buf := make([]byte, 16)
	encodeF32(buf, src)
	got := make([]float32, 4)
	decodeF32(got, buf)
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], src[i])
		}
	}
}

func TestStreamChunksByBlock(t *testing.T) {
	var calls []int
	counter := float32(0)
	s := newStream(func(out, in []float32) {
		if in != nil {
			t.Fatal("output stream passed input")
		}
		calls = append(calls, len(out))
		for i := range out {
			counter++
			out[i] = counter
		}
	}, 64)

	p := make([]byte, 4*150+2)
	n, err := s.Read(p)
	if err != nil || n != 600 {
		t.Fatalf("Read = %d, %v; want 600", n, err)
	}
	if len(calls) != 3 || calls[0] != 64 || calls[2] != 22 {
		t.Fatalf("render calls = %v", calls)
	}
	got := make([]float32, 150)
	decodeF32(got, p)
	for i, v := range got {
		if v != float32(i+1) {
			t.Fatalf("sample %d = %v, want %d", i, v, i+1)
		}
	}
}

func TestDuplexPassesInput(t *testing.T) {
	d := newDuplex(func(out, in []float32) {
		for i := range out {
			out[i] = in[i] * 2
		}
	}, 32)
	in := make([]byte, 4*40)
	src := make([]float32, 40)
	for i := range src {
		src[i] = float32(i) / 40
	}
	encodeF32(in, src)
	out := make([]byte, 4*40)
	d.process(out, in, 40)

	got := make([]float32, 40)
	decodeF32(got, out)
	for i := range got {
		if got[i] != src[i]*2 {
			t.Fatalf("out[%d] = %v, want %v", i, got[i], src[i]*2)
		}
	}

	// Missing capture data reads as silence.
	d.process(out, nil, 40)
	decodeF32(got, out)
	for i, v := range got {
		if v != 0 {
			t.Fatalf("out[%d] = %v without input", i, v)
		}
	}
}
