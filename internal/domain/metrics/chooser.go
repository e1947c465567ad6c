package metrics

import "math/rand/v2"

// Chooser picks an index in [0, n). Recommendations and motivation lines are
// drawn through it so tests can pin the choice.
type Chooser interface {
	Intn(n int) int
}

// RandomChooser picks uniformly at random.
type RandomChooser struct{}

// Intn implements Chooser.
func (RandomChooser) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

// FixedChooser always picks the same index, wrapped into range.
type FixedChooser int

// Intn implements Chooser.
func (c FixedChooser) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(c) % n
	if i < 0 {
		i += n
	}
	return i
}

func pick(c Chooser, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[c.Intn(len(pool))]
}
