package analysis

import "math"

// FrequencyBand is a named frequency range with the band's current energy.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
	Energy float64 // RMS over the band's bins, refreshed by Update
	bins   int
}

// BandSet folds magnitude bins into a small set of named bands, the shape
// most visual widgets want instead of the full spectrum.
type BandSet struct {
	bands []FrequencyBand
}

// NewBandSet returns the usual visualizer splits, with the top band capped at
// the effective Nyquist frequency.
func NewBandSet(nyquist float64) *BandSet {
	return &BandSet{bands: []FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: nyquist},
	}}
}

// Update recomputes every band's energy from magnitudes, where bin i sits at
// i*binWidth Hz. It returns the internal band slice for inspection; the slice
// is reused across calls.
func (s *BandSet) Update(magnitudes []float64, binWidth float64) []FrequencyBand {
	for i := range s.bands {
		s.bands[i].Energy = 0
		s.bands[i].bins = 0
	}
	for i, m := range magnitudes {
		freq := float64(i) * binWidth
		for j := range s.bands {
			b := &s.bands[j]
			if freq >= b.LowHz && freq < b.HighHz {
				b.Energy += m * m
				b.bins++
				break
			}
		}
	}
	for j := range s.bands {
		b := &s.bands[j]
		if b.bins > 0 {
			b.Energy = math.Sqrt(b.Energy / float64(b.bins))
		}
	}
	return s.bands
}
