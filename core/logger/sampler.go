package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets through the first n of every d calls. A zero ratio
// lets everything through.
type ratioSampler struct {
	ratio atomic.Uint64 // n<<32 | d
	calls atomic.Uint64
}

func newRatioSampler(n, d int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(n, d)
	return s
}

// Set replaces the ratio and restarts the cycle.
func (s *ratioSampler) Set(n, d int) {
	if n <= 0 || d <= 0 {
		n, d = 0, 0
	}
	if n > d {
		n = d
	}
	s.ratio.Store(uint64(n)<<32 | uint64(uint32(d)))
	s.calls.Store(0)
}

// Allow reports whether the current call passes.
func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	n, d := r>>32, r&0xffffffff
	if n == 0 || d == 0 {
		return true
	}
	return (s.calls.Add(1)-1)%d < n
}

// parseRatio reads "n/d" or a bare "d" (meaning 1/d). Zero, negative or
// malformed input yields 0, 0.
func parseRatio(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	num, den, found := strings.Cut(spec, "/")
	if !found {
		num, den = "1", spec
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return 0, 0
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || d <= 0 {
		return 0, 0
	}
	return n, d
}
