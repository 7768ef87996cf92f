package random

import (
	crand "crypto/rand"
	mrand "math/rand/v2"
	"sync"
)

// Random is the source of session ids, piece colours and cascade gate
// rolls. Tests substitute mocks.MockRandom.
type Random interface {
	// Intn returns a value in [0, n), or 0 when n <= 0
	Intn(n int) int
	// Float64 returns a value in [0.0, 1.0)
	Float64() float64
	// String returns length characters drawn from alphabet
	String(length int, alphabet string) string
}

// Source is a goroutine-safe Random over a math/rand/v2 generator
type Source struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

var _ Random = (*Source)(nil)

// New returns an unpredictable source: ChaCha8 keyed from crypto/rand.
// Use it for session ids and for live play.
func New() *Source {
	var key [32]byte
	if _, err := crand.Read(key[:]); err != nil {
		panic("random: crypto/rand unavailable: " + err.Error())
	}
	return &Source{rng: mrand.New(mrand.NewChaCha8(key))}
}

// NewSeeded returns a reproducible PCG source. Equal seeds give equal
// boards, which simulations and tests rely on.
func NewSeeded(seed uint64) *Source {
	return &Source{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Source) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[s.rng.IntN(len(alphabet))]
	}
	return string(out)
}
