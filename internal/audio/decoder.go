package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned for containers the decoder cannot read
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Waveform is mono PCM in [-1,1] at SampleRate
type Waveform struct {
	Samples    []float32
	SampleRate int
	// SourceFormat is the sniffed MIME type of the original upload
	SourceFormat string
}

// Duration returns the playback length of the waveform
func (w *Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// Decoder loads arbitrary audio bytes and resamples them to a fixed rate
type Decoder interface {
	Decode(ctx context.Context, data []byte) (*Waveform, error)
}

type decoder struct {
	targetRate int
}

// NewDecoder creates a decoder producing mono audio at targetRate
func NewDecoder(targetRate int) Decoder {
	return &decoder{targetRate: targetRate}
}

func (d *decoder) Decode(ctx context.Context, data []byte) (*Waveform, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(data)

	var (
		samples []float32
		rate    int
		err     error
	)
	switch {
	case mtype.Is("audio/wav"):
		samples, rate, err = decodeWAV(data)
	case mtype.Is("audio/mpeg"):
		samples, rate, err = decodeMP3(data)
	case mtype.Is("audio/flac"):
		samples, rate, err = decodeFLAC(data)
	case mtype.Is("audio/ogg"), mtype.Is("application/ogg"):
		samples, rate, err = decodeOggVorbis(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
	}
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("decoded %s stream contains no samples", mtype.String())
	}
	if rate <= 0 {
		return nil, fmt.Errorf("decoded %s stream declares sample rate %d", mtype.String(), rate)
	}

	return &Waveform{
		Samples:      Resample(samples, rate, d.targetRate),
		SampleRate:   d.targetRate,
		SourceFormat: mtype.String(),
	}, nil
}

// WAV format tags
const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

func decodeWAV(data []byte) ([]float32, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file")
	}

	format := dec.WavAudioFormat
	if format == wavFormatExtensible {
		sub, err := wavSubFormat(data)
		if err != nil {
			return nil, 0, err
		}
		format = sub
	}

	bitDepth := int(dec.BitDepth)
	switch format {
	case wavFormatPCM:
		if bitDepth < 8 || bitDepth > 32 {
			return nil, 0, fmt.Errorf("%w: %d-bit PCM WAV", ErrUnsupportedFormat, bitDepth)
		}
	case wavFormatFloat:
		if bitDepth != 32 {
			return nil, 0, fmt.Errorf("%w: %d-bit float WAV", ErrUnsupportedFormat, bitDepth)
		}
	default:
		return nil, 0, fmt.Errorf("%w: WAV format tag 0x%04x", ErrUnsupportedFormat, format)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read WAV samples: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, 0, fmt.Errorf("WAV file has no format chunk")
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, 0, fmt.Errorf("WAV file declares %d channels", channels)
	}

	// go-audio/wav hands back every sample as an int; float data keeps its
	// IEEE-754 bit pattern in the low 32 bits
	var sample func(v int) float32
	if format == wavFormatFloat {
		sample = func(v int) float32 {
			f := math.Float32frombits(uint32(v))
			if math.IsNaN(float64(f)) {
				return 0
			}
			return f
		}
	} else {
		scale := float32(int64(1) << (bitDepth - 1))
		var offset float32
		if bitDepth == 8 {
			// 8-bit PCM is unsigned
			offset = 128
		}
		sample = func(v int) float32 {
			return (float32(v) - offset) / scale
		}
	}

	frames := len(buf.Data) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += sample(buf.Data[i*channels+c])
		}
		mono[i] = clamp(sum / float32(channels))
	}

	return mono, buf.Format.SampleRate, nil
}

// wavSubFormat reads the sub-format tag of a WAVE_FORMAT_EXTENSIBLE header,
// stored in the first two bytes of the sub-format GUID.
func wavSubFormat(data []byte) (uint16, error) {
	p := riff.New(bytes.NewReader(data))
	if err := p.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("invalid WAV file: %w", err)
	}
	for {
		ch, err := p.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("WAV file has no format chunk: %w", err)
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}
		body := make([]byte, ch.Size)
		if _, err := io.ReadFull(ch, body); err != nil {
			return 0, fmt.Errorf("failed to read WAV format chunk: %w", err)
		}
		if len(body) < 26 {
			return 0, fmt.Errorf("extensible WAV format chunk too short: %d bytes", len(body))
		}
		return binary.LittleEndian.Uint16(body[24:26]), nil
	}
}

func decodeMP3(data []byte) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("invalid MP3 stream: %w", err)
	}

	// go-mp3 always yields 16-bit little-endian stereo
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read MP3 samples: %w", err)
	}

	frames := len(pcm) / 4
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(pcm[i*4]) | uint16(pcm[i*4+1])<<8)
		r := int16(uint16(pcm[i*4+2]) | uint16(pcm[i*4+3])<<8)
		mono[i] = (float32(l) + float32(r)) / 2 / 32768
	}

	return mono, dec.SampleRate(), nil
}

func decodeFLAC(data []byte) ([]float32, int, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("invalid FLAC stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info.NChannels == 0 || info.BitsPerSample == 0 {
		return nil, 0, fmt.Errorf("FLAC stream declares %d channels at %d bits", info.NChannels, info.BitsPerSample)
	}
	scale := float32(int64(1) << (info.BitsPerSample - 1))

	var mono []float32
	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read FLAC frame: %w", err)
		}
		if len(f.Subframes) == 0 {
			continue
		}
		for i := 0; i < int(f.BlockSize); i++ {
			var sum float32
			for _, sub := range f.Subframes {
				sum += float32(sub.Samples[i]) / scale
			}
			mono = append(mono, sum/float32(len(f.Subframes)))
		}
	}

	return mono, int(info.SampleRate), nil
}

func decodeOggVorbis(data []byte) ([]float32, int, error) {
	pcm, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("invalid Ogg Vorbis stream: %w", err)
	}
	if format.Channels <= 0 {
		return nil, 0, fmt.Errorf("Ogg Vorbis stream declares %d channels", format.Channels)
	}

	// interleaved float32 in [-1,1]
	frames := len(pcm) / format.Channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < format.Channels; c++ {
			sum += pcm[i*format.Channels+c]
		}
		mono[i] = sum / float32(format.Channels)
	}

	return mono, format.SampleRate, nil
}
