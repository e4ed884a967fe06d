// Package sampleio loads source samples for the phase vocoder and writes
// rendered audio.
//
// Loaded audio is mixed to mono and resampled to the engine rate.
package sampleio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dh1tw/gosamplerate"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/cwbudde/algo-sculpt/dsp/dither"
)

// ErrUnsupported is returned for file types Load cannot decode.
var ErrUnsupported = errors.New("sampleio: unsupported format")

// Clip is mono audio at a known rate.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Seconds returns the clip duration.
func (c Clip) Seconds() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Load decodes a .wav or .mp3 file and resamples it to sampleRate.
func Load(path string, sampleRate int) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("sampleio: %w", err)
	}
	defer f.Close()

	var clip Clip
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		clip, err = DecodeWAV(f)
	case ".mp3":
		clip, err = DecodeMP3(f)
	default:
		return Clip{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	if err != nil {
		return Clip{}, fmt.Errorf("sampleio: %s: %w", path, err)
	}
	return Resample(clip, sampleRate)
}

// DecodeWAV reads PCM WAV data of any bit depth.
func DecodeWAV(r io.ReadSeeker) (Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Clip{}, fmt.Errorf("%w: not a valid wav stream", ErrUnsupported)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Clip{}, err
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return Clip{}, fmt.Errorf("wav has no channel layout")
	}
	scale := 1.0 / float64(int64(1)<<(buf.SourceBitDepth-1))
	samples := downmix(buf.Data, buf.Format.NumChannels, func(v int) float64 {
		return float64(v) * scale
	})
	return Clip{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// DecodeMP3 reads an MP3 stream. The decoder yields 16-bit stereo.
func DecodeMP3(r io.Reader) (Clip, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return Clip{}, err
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return Clip{}, err
	}
	frames := make([]int, len(raw)/2)
	for i := range frames {
		frames[i] = int(int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8))
	}
	samples := downmix(frames, 2, func(v int) float64 { return float64(v) / 32768 })
	return Clip{Samples: samples, SampleRate: d.SampleRate()}, nil
}

func downmix(data []int, channels int, conv func(int) float64) []float64 {
	out := make([]float64, len(data)/channels)
	for i := range out {
		sum := 0.0
		for c := range channels {
			sum += conv(data[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// Resample converts c to sampleRate with libsamplerate's medium sinc
// converter. Matching rates return c unchanged.
func Resample(c Clip, sampleRate int) (Clip, error) {
	if sampleRate <= 0 {
		return Clip{}, fmt.Errorf("sampleio: sample rate must be > 0: %d", sampleRate)
	}
	if c.SampleRate == sampleRate || len(c.Samples) == 0 {
		c.SampleRate = sampleRate
		return c, nil
	}
	if c.SampleRate <= 0 {
		return Clip{}, fmt.Errorf("sampleio: source sample rate must be > 0: %d", c.SampleRate)
	}
	ratio := float64(sampleRate) / float64(c.SampleRate)
	if !gosamplerate.IsValidRatio(ratio) {
		return Clip{}, fmt.Errorf("sampleio: resample ratio out of range: %v", ratio)
	}
	in := make([]float32, len(c.Samples))
	for i, v := range c.Samples {
		in[i] = float32(v)
	}
	out, err := gosamplerate.Simple(in, ratio, 1, gosamplerate.SRC_SINC_MEDIUM_QUALITY)
	if err != nil {
		return Clip{}, fmt.Errorf("sampleio: resample: %w", err)
	}
	samples := make([]float64, len(out))
	for i, v := range out {
		samples[i] = float64(v)
	}
	return Clip{Samples: samples, SampleRate: sampleRate}, nil
}

// WriteWAV encodes mono float samples as 16-bit PCM. Samples are dithered
// with a seeded TPDF quantizer unless opts choose otherwise.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int, opts ...dither.Option) error {
	q, err := dither.NewQuantizer(append([]dither.Option{dither.WithBitDepth(16)}, opts...)...)
	if err != nil {
		return fmt.Errorf("sampleio: %w", err)
	}
	enc := wav.NewEncoder(w, sampleRate, q.BitDepth(), 1, 1)
	data := q.QuantizeFloat32(nil, samples)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: q.BitDepth(),
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("sampleio: write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("sampleio: close wav: %w", err)
	}
	return nil
}

// SaveWAV writes samples to a new file at path.
func SaveWAV(path string, samples []float32, sampleRate int, opts ...dither.Option) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sampleio: %w", err)
	}
	if err := WriteWAV(f, samples, sampleRate, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
