package audio

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// EncodeWAV renders the waveform as 16-bit mono PCM WAV
func (w *Waveform) EncodeWAV() ([]byte, error) {
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: w.SampleRate},
		Data:           make([]int, len(w.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range w.Samples {
		buf.Data[i] = int(math.Round(float64(clamp(s)) * math.MaxInt16))
	}

	// the encoder seeks back to patch chunk sizes on Close
	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, w.SampleRate, 16, 1, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return io.ReadAll(ws.Reader())
}

func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
