package quiz

import (
	"math/rand/v2"

	"github.com/lehmann314159/tasklex/internal/models"
)

// sampler walks a shuffled copy of the word set and reshuffles when it runs out.
// A word is never asked twice in a row unless it is the only one.
type sampler struct {
	words []models.Word
	order []int
	pos   int
	last  int
	rng   *rand.Rand
}

func newSampler(words []models.Word, rng *rand.Rand) *sampler {
	s := &sampler{words: words, last: -1, rng: rng}
	s.shuffle()
	return s
}

func (s *sampler) shuffle() {
	s.order = s.rng.Perm(len(s.words))
	s.pos = 0
	if n := len(s.order); n > 1 && s.order[0] == s.last {
		s.order[0], s.order[n-1] = s.order[n-1], s.order[0]
	}
}

func (s *sampler) next() models.Word {
	if s.pos >= len(s.order) {
		s.shuffle()
	}
	s.last = s.order[s.pos]
	s.pos++
	return s.words[s.last]
}
