package schedule

import (
	"math"
	"strconv"

	"github.com/iliyamo/picklepass/internal/model"
)

// namePool is the fixed, ordered pool roster names are drawn from.  The order
// is part of the determinism contract and must not change.
var namePool = [...]string{
	"Lisa P.", "Maverick C.", "Jordan K.", "Ava R.", "Chris T.", "Noah B.", "Mia S.",
	"Ethan W.", "Sophia L.", "Diego M.", "Hannah G.", "Sam D.", "Priya N.", "Ben F.",
	"Olivia J.", "Andre Z.", "Kaitlyn H.", "Marcus V.", "Tina Q.", "Jay S.",
}

// Roster returns count participants derived from seed.  Names walk the pool
// with a stride of 7 starting at Hash(seed); every third participant
// (i%3 == 0) has no rating, the others get a rating in [2.60, 4.99].  The
// same (seed, count) always returns the same roster, and a shorter roster is
// a prefix of a longer one.
func Roster(seed string, count int) []model.Participant {
	if count <= 0 {
		return []model.Participant{}
	}
	base := uint64(Hash(seed))
	out := make([]model.Participant, 0, count)
	for i := 0; i < count; i++ {
		idx := (base + uint64(i)*7) % uint64(len(namePool))
		p := model.Participant{
			ID:          seed + "-p" + strconv.Itoa(i),
			DisplayName: namePool[idx],
		}
		if i%3 != 0 {
			r := rating(seed, i)
			p.Rating = &r
		}
		out = append(out, p)
	}
	return out
}

func rating(seed string, i int) float64 {
	v := float64(Hash(seed+strconv.Itoa(i))%240+260) / 100
	return math.Round(v*100) / 100
}
