package audioio

import (
	"context"
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Oto plays through ebitengine/oto. It has no input.
type Oto struct {
	cfg Config
}

func (o *Oto) Name() string { return "oto" }

// Run opens the output and blocks until ctx is done.
func (o *Oto) Run(ctx context.Context, render RenderFunc) error {
	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.cfg.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("oto: %w", err)
	}
	<-ready

	player := octx.NewPlayer(newStream(render, o.cfg.BlockSize))
	player.Play()
	o.cfg.logger().Info("audio started", "backend", o.Name(), "sample_rate", o.cfg.SampleRate)

	<-ctx.Done()
	if err := player.Close(); err != nil {
		return fmt.Errorf("oto: %w", err)
	}
	return nil
}

// stream adapts a RenderFunc to the io.Reader oto pulls from.
type stream struct {
	render RenderFunc
	block  int
	buf    []float32
}

func newStream(render RenderFunc, block int) *stream {
	return &stream{render: render, block: block, buf: make([]float32, block)}
}

// Read renders whole samples into p in chunks of at most one block.
func (s *stream) Read(p []byte) (int, error) {
	n := len(p) / 4
	for start := 0; start < n; start += s.block {
		end := min(start+s.block, n)
		out := s.buf[:end-start]
		s.render(out, nil)
		encodeF32(p[4*start:], out)
	}
	return n * 4, nil
}
