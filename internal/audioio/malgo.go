package audioio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
)

// Malgo runs a duplex miniaudio device: mono capture feeds the render
// callback's input.
type Malgo struct {
	cfg Config
}

func (m *Malgo) Name() string { return "malgo" }

// Run opens the default duplex device and blocks until ctx is done.
func (m *Malgo) Run(ctx context.Context, render RenderFunc) error {
	log := m.cfg.logger()
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		log.Debug("miniaudio", "msg", msg)
	})
	if err != nil {
		return fmt.Errorf("malgo: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	dcfg := malgo.DefaultDeviceConfig(malgo.Duplex)
	dcfg.Capture.Format = malgo.FormatF32
	dcfg.Capture.Channels = 1
	dcfg.Playback.Format = malgo.FormatF32
	dcfg.Playback.Channels = 1
	dcfg.SampleRate = uint32(m.cfg.SampleRate)
	dcfg.PeriodSizeInFrames = uint32(m.cfg.BlockSize)

	d := newDuplex(render, m.cfg.BlockSize)
	device, err := malgo.InitDevice(mctx.Context, dcfg, malgo.DeviceCallbacks{Data: d.process})
	if err != nil {
		return fmt.Errorf("malgo: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("malgo: %w", err)
	}
	log.Info("audio started", "backend", m.Name(), "sample_rate", m.cfg.SampleRate)

	<-ctx.Done()
	return device.Stop()
}

// duplex converts miniaudio's byte buffers for a RenderFunc.
type duplex struct {
	render RenderFunc
	block  int
	in     []float32
	out    []float32
}

func newDuplex(render RenderFunc, block int) *duplex {
	return &duplex{render: render, block: block, in: make([]float32, block), out: make([]float32, block)}
}

func (d *duplex) process(out, in []byte, frames uint32) {
	n := int(frames)
	for start := 0; start < n; start += d.block {
		end := min(start+d.block, n)
		m := end - start
		src := d.in[:m]
		if len(in) >= 4*end {
			decodeF32(src, in[4*start:])
		} else {
			clear(src)
		}
		dst := d.out[:m]
		d.render(dst, src)
		encodeF32(out[4*start:], dst)
	}
}
