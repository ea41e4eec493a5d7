package typejson

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	B     bool
	I     int64
	I8    int8
	U     uint64
	F     float64
	F32   float32
	S     string
	Tags  []string
	Grid  [2][2]int
	Attrs map[string]int
	Child *record
	Named string `json:"named_key"`
}

const alphabet = "abcXYZ 019\"\\/\n\t\x00\x1féü€😀"

func randString(r *rand.Rand) string {
	runes := []rune(alphabet)
	var sb strings.Builder
	for n := r.IntN(12); n > 0; n-- {
		sb.WriteRune(runes[r.IntN(len(runes))])
	}
	return sb.String()
}

func randRecord(r *rand.Rand, depth int) record {
	rec := record{
		B:     r.IntN(2) == 1,
		I:     r.Int64() - math.MaxInt64/2,
		I8:    int8(r.IntN(256) - 128),
		U:     r.Uint64(),
		F:     r.NormFloat64() * math.Pow10(r.IntN(40)-20),
		F32:   float32(r.NormFloat64()),
		S:     randString(r),
		Named: randString(r),
	}
	switch r.IntN(3) {
	case 1:
		rec.Tags = []string{}
	case 2:
		for n := r.IntN(4) + 1; n > 0; n-- {
			rec.Tags = append(rec.Tags, randString(r))
		}
	}
	for i := range rec.Grid {
		for j := range rec.Grid[i] {
			rec.Grid[i][j] = r.IntN(1000) - 500
		}
	}
	if r.IntN(2) == 1 {
		rec.Attrs = make(map[string]int)
		for n := r.IntN(4); n > 0; n-- {
			rec.Attrs[randString(r)] = r.IntN(100)
		}
	}
	if depth > 0 && r.IntN(2) == 1 {
		c := randRecord(r, depth-1)
		rec.Child = &c
	}
	return rec
}

func TestRoundTripRandomRecords(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	en := New(Options{})
	for i := 0; i < 200; i++ {
		want := randRecord(r, 3)
		s, err := en.Stringify(want)
		require.NoError(t, err)

		got, err := ParseWith[record](en, s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)

		// same tree either way
		again, err := en.Stringify(got)
		require.NoError(t, err)
		assert.Equal(t, s, again)
	}
}

func TestRoundTripLowerCamelCase(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 50; i++ {
		want := randRecord(r, 1)
		s, err := Stringify(want, LowerCamelCase)
		require.NoError(t, err)
		got, err := Parse[record](s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
