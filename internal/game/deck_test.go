package game

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPairsEveryValueTwice(t *testing.T) {
	src := &listSource{values: values(6)}
	b := NewDeckBuilder(src, rand.New(rand.NewPCG(1, 2)).Shuffle)

	cards, err := b.Build(6)
	require.NoError(t, err)
	require.Len(t, cards, 12)

	counts := map[string]int{}
	for _, c := range cards {
		counts[c.Value()]++
		assert.False(t, c.Matched())
	}
	assert.Len(t, counts, 6)
	for v, n := range counts {
		assert.Equalf(t, 2, n, "value %s", v)
	}
}

func TestBuildShuffleIsPermutation(t *testing.T) {
	src := &listSource{values: values(8)}

	ordered, err := NewDeckBuilder(src, noShuffle).Build(8)
	require.NoError(t, err)
	shuffled, err := NewDeckBuilder(src, rand.New(rand.NewPCG(42, 7)).Shuffle).Build(8)
	require.NoError(t, err)

	sorted := func(cards []*Card) []string {
		out := make([]string, len(cards))
		for i, c := range cards {
			out[i] = c.Value()
		}
		sort.Strings(out)
		return out
	}
	assert.Equal(t, sorted(ordered), sorted(shuffled))
}

func TestBuildPicksSubsetWhenSourceIsLarger(t *testing.T) {
	src := &listSource{values: values(20)}
	cards, err := NewDeckBuilder(src, rand.New(rand.NewPCG(3, 4)).Shuffle).Build(3)
	require.NoError(t, err)
	require.Len(t, cards, 6)

	counts := map[string]int{}
	for _, c := range cards {
		counts[c.Value()]++
	}
	assert.Len(t, counts, 3)
}

func TestBuildAssetShortage(t *testing.T) {
	tests := []struct {
		name string
		src  ValueSource
	}{
		{name: "too few values", src: &listSource{values: values(2)}},
		{name: "duplicates do not count", src: &listSource{values: []string{"a", "a", "b", "b", "c"}}},
		{name: "empty values do not count", src: &listSource{values: []string{"a", "", "b", ""}}},
		{name: "source error", src: &listSource{err: errBoom}},
		{name: "nil source", src: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := NewDeckBuilder(tt.src, noShuffle).Build(4)
			assert.Nil(t, cards)
			assert.ErrorIs(t, err, ErrAssetShortage)
		})
	}
}

func TestBuildRejectsNonPositivePairCount(t *testing.T) {
	_, err := NewDeckBuilder(&listSource{values: values(2)}, noShuffle).Build(0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBuildReshufflesOnEveryCall(t *testing.T) {
	b := NewDeckBuilder(&listSource{values: values(10)}, rand.New(rand.NewPCG(9, 9)).Shuffle)
	first, err := b.Build(10)
	require.NoError(t, err)
	second, err := b.Build(10)
	require.NoError(t, err)

	same := true
	for i := range first {
		if first[i].Value() != second[i].Value() {
			same = false
			break
		}
	}
	assert.False(t, same, "two builds from one seeded source should differ")
	assert.NotSame(t, first[0], second[0], "rebuild must create new cards")
}
