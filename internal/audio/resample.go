package audio

import "math"

// Resample converts mono samples between rates with linear interpolation
func Resample(samples []float32, fromRate, toRate int) []float32 {
	if len(samples) == 0 || fromRate <= 0 || toRate <= 0 || fromRate == toRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}

	n := int(math.Round(float64(len(samples)) * float64(toRate) / float64(fromRate)))
	if n < 1 {
		n = 1
	}

	step := float64(fromRate) / float64(toRate)
	last := len(samples) - 1
	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = samples[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}
