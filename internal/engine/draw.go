package engine

import "districtlottery/internal/models"

// Source is the randomness the draw consumes. *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	// IntN returns a uniform value in [0, n). n > 0.
	IntN(n int) int
}

// Draw picks min(count, len(eligible)) distinct participants. It shuffles a
// copy of eligible with Fisher-Yates, so every permutation is equally likely,
// and returns the first count entries. An empty pool or a non-positive count
// yields an empty result.
func Draw(src Source, eligible []models.Participant, count int) []models.Participant {
	if count <= 0 || len(eligible) == 0 {
		return []models.Participant{}
	}
	if count > len(eligible) {
		count = len(eligible)
	}

	deck := append([]models.Participant(nil), eligible...)
	for i := len(deck) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck[:count:count]
}
