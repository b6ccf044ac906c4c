package deck

import "math/rand"

// Cycle yields items in shuffled order without repeats, reshuffling and
// restarting once every item has been drawn.
type Cycle[T any] struct {
	items []T
	pos   int
	rng   *rand.Rand
}

// NewCycle copies items and shuffles them. items must not be empty.
func NewCycle[T any](items []T, rng *rand.Rand) *Cycle[T] {
	c := &Cycle[T]{items: append([]T(nil), items...), rng: rng}
	c.shuffle()
	return c
}

// Next returns the next item, reshuffling first if the cycle is exhausted.
func (c *Cycle[T]) Next() T {
	if c.pos >= len(c.items) {
		c.shuffle()
	}
	item := c.items[c.pos]
	c.pos++
	return item
}

// Remaining is how many items are left before the next reshuffle.
func (c *Cycle[T]) Remaining() int { return len(c.items) - c.pos }

// Len is the total number of items in one cycle.
func (c *Cycle[T]) Len() int { return len(c.items) }

func (c *Cycle[T]) shuffle() {
	c.rng.Shuffle(len(c.items), func(i, j int) {
		c.items[i], c.items[j] = c.items[j], c.items[i]
	})
	c.pos = 0
}
