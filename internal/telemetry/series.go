package telemetry

// Series keeps the per-tick history used by terminal plots. Each slice holds
// at most Cap points; older points are dropped.
type Series struct {
	Cap int

	Particles []float64
	TempMean  []float64
	TempMax   []float64
}

// NewSeries returns a Series bounded to capacity points. A non-positive
// capacity keeps every point.
func NewSeries(capacity int) *Series {
	return &Series{Cap: capacity}
}

// Add appends r to every series.
func (s *Series) Add(r Record) {
	s.Particles = s.push(s.Particles, float64(r.Particles))
	s.TempMean = s.push(s.TempMean, r.TempMean)
	s.TempMax = s.push(s.TempMax, r.TempMax)
}

// Len returns the number of points held.
func (s *Series) Len() int { return len(s.Particles) }

func (s *Series) push(dst []float64, v float64) []float64 {
	dst = append(dst, v)
	if s.Cap > 0 && len(dst) > s.Cap {
		dst = append(dst[:0], dst[len(dst)-s.Cap:]...)
	}
	return dst
}
