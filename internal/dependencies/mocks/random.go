package mocks

import (
	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
)

// queue hands out scripted values in order, then the zero value
type queue[T any] struct {
	values []T
	next   int
}

func (q *queue[T]) push(vs ...T) {
	q.values = append(q.values, vs...)
}

func (q *queue[T]) pop() (T, bool) {
	var zero T
	if q.next >= len(q.values) {
		return zero, false
	}
	v := q.values[q.next]
	q.next++
	return v, true
}

// MockRandom replays scripted values. Once a queue runs dry it returns
// zero values: Intn 0, Float64 0 and String "".
type MockRandom struct {
	ints    queue[int]
	floats  queue[float64]
	strings queue[string]

	// IntnCalls counts every Intn call, scripted or not
	IntnCalls int
}

var _ random.Random = (*MockRandom)(nil)

func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next scripted value reduced modulo n
func (r *MockRandom) Intn(n int) int {
	r.IntnCalls++
	v, ok := r.ints.pop()
	if !ok || n <= 0 {
		return 0
	}
	return v % n
}

func (r *MockRandom) Float64() float64 {
	v, _ := r.floats.pop()
	return v
}

// String ignores length and alphabet and returns the next scripted value
func (r *MockRandom) String(int, string) string {
	v, _ := r.strings.pop()
	return v
}

func (r *MockRandom) QueueIntn(values ...int)         { r.ints.push(values...) }
func (r *MockRandom) QueueFloat64(values ...float64) { r.floats.push(values...) }
func (r *MockRandom) QueueString(values ...string)   { r.strings.push(values...) }
