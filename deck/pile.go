// Package deck implements the recycling card pile and the event cycle.
package deck

import (
	"fmt"
	"math/rand"

	"stage-battle-server/catalog"
)

// DrawPile is a recycling card dispenser. Cards move from available to the
// caller on Draw and into the used pile on Return; the used pile is shuffled
// back in when available runs out. It is not safe for concurrent use; the
// owning room serializes access.
type DrawPile struct {
	available []catalog.Card
	used      []catalog.Card
	size      int
	rng       *rand.Rand
}

// NewDrawPile holds one instance of every catalog card, shuffled.
func NewDrawPile(cards []catalog.Card, rng *rand.Rand) *DrawPile {
	available := append([]catalog.Card(nil), cards...)
	rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	return &DrawPile{available: available, size: len(available), rng: rng}
}

// Draw removes and returns up to n cards. When the available pile is empty
// the used pile is reshuffled into it. Asking for more cards than the pile
// was instantiated with is a programming error and panics.
func (p *DrawPile) Draw(n int) []catalog.Card {
	if n > p.size {
		panic(fmt.Sprintf("deck: draw of %d cards from a pile of %d", n, p.size))
	}
	out := make([]catalog.Card, 0, n)
	for len(out) < n {
		if len(p.available) == 0 {
			if len(p.used) == 0 {
				break
			}
			p.recycle()
		}
		last := len(p.available) - 1
		out = append(out, p.available[last])
		p.available = p.available[:last]
	}
	return out
}

// Return puts played cards into the used pile. They are not drawable until the next recycle.
func (p *DrawPile) Return(cards ...catalog.Card) {
	p.used = append(p.used, cards...)
}

func (p *DrawPile) recycle() {
	p.rng.Shuffle(len(p.used), func(i, j int) {
		p.used[i], p.used[j] = p.used[j], p.used[i]
	})
	p.available = append(p.available, p.used...)
	p.used = p.used[:0]
}

// Available is the number of cards drawable without a recycle.
func (p *DrawPile) Available() int { return len(p.available) }

// Used is the number of returned cards awaiting a recycle.
func (p *DrawPile) Used() int { return len(p.used) }

// Size is the number of instances the pile was created with.
func (p *DrawPile) Size() int { return p.size }
