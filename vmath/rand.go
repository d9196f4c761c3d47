package vmath

// FastRand is a xorshift64 generator
// Not safe for concurrent use; give each goroutine its own stream
type FastRand struct {
	state uint64
}

// NewFastRand seeds a generator, zero seed is remapped since xorshift sticks at zero
func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float64 returns a value in [0, 1)
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// State exposes the generator state for snapshots
func (r *FastRand) State() uint64 {
	return r.state
}

// SetState restores a state captured by State
func (r *FastRand) SetState(s uint64) {
	if s == 0 {
		s = 1
	}
	r.state = s
}

// SplitSeed scrambles x with the splitmix64 finalizer
// Decorrelates child stream seeds drawn from a parent xorshift sequence
func SplitSeed(x uint64) uint64 {
	z := x + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
