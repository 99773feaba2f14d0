package testutil

// MockRand replays a fixed sequence of values, cycling when exhausted.
type MockRand struct {
	Values []float64
	next   int
}

func (r *MockRand) Float64() float64 {
	if len(r.Values) == 0 {
		return 0
	}

	value := r.Values[r.next%len(r.Values)]
	r.next++
	return value
}
