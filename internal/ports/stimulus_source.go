package ports

import (
	"iter"
	"math/rand/v2"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// StimulusList is a finite, restartable list of stimuli. Ranging over All
// more than once yields the same items in the same order.
type StimulusList interface {
	All() iter.Seq[domain.StimulusItem]
	Len() int
	// Shuffled returns a permuted copy and leaves the receiver unchanged.
	Shuffled(rng *rand.Rand) StimulusList
}
