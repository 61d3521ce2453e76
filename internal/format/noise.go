package format

import "math"

// BandOf returns the critical band containing freq. Frequencies outside
// [0, 20000) fall into the last band.
func BandOf(freq float64) int {
	for b := 0; b < NoiseBands; b++ {
		if BandEdges[b] <= freq && freq < BandEdges[b+1] {
			return b
		}
	}
	return NoiseBands - 1
}

// BandCenter returns the centre frequency of band b in Hz.
func BandCenter(b int) float64 {
	return (BandEdges[b] + BandEdges[b+1]) / 2
}

// BandWidth returns the width of band b in Hz.
func BandWidth(b int) float64 {
	return BandEdges[b+1] - BandEdges[b]
}

// EnergyRMS converts a residual band energy to an RMS amplitude for the
// given analysis window size.
func EnergyRMS(energy, windowSize float64) float64 {
	if energy <= 0 || windowSize <= 0 {
		return 0
	}
	return math.Sqrt(energy / (windowSize * NoiseVariance))
}

// DistributeNoise splits each band's residual energy among the partials
// whose frequency lies in that band, proportionally to their amplitude,
// and writes the resulting RMS amplitude per partial into dst.
//
// amps, freqs and dst have one entry per partial; bands has NoiseBands
// entries.
func DistributeNoise(amps, freqs, bands []float64, windowSize float64, dst []float64) {
	var sum [NoiseBands]float64
	for p := range amps {
		sum[BandOf(freqs[p])] += amps[p]
	}
	for p := range amps {
		b := BandOf(freqs[p])
		if sum[b] > 0 {
			dst[p] = EnergyRMS(amps[p]*bands[b]/sum[b], windowSize)
		} else {
			dst[p] = 0
		}
	}
}
