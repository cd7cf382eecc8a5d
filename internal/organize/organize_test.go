package organize

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UncleDan/ics-to-word/internal/model"
)

func at(title string, t time.Time) model.CanonicalEvent {
	return model.CanonicalEvent{
		Title:     title,
		Start:     &model.Instant{Wall: t},
		DateLabel: t.Format("02/01/2006"),
	}
}

func undated(title string) model.CanonicalEvent {
	return model.CanonicalEvent{Title: title, DateLabel: "Date unspecified"}
}

func titles(events []model.CanonicalEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Title)
	}
	return out
}

func TestSort_Scenario(t *testing.T) {
	in := []model.CanonicalEvent{
		at("ten", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		at("nine", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		undated("nostart"),
	}

	sorted := Sort(in)
	assert.Equal(t, []string{"nostart", "nine", "ten"}, titles(sorted))

	groups := Groups(sorted)
	require.Len(t, groups, 2)
	assert.Equal(t, "Date unspecified", groups[0].DateLabel)
	assert.Equal(t, []string{"nostart"}, titles(groups[0].Events))
	assert.Equal(t, "01/03/2024", groups[1].DateLabel)
	assert.Equal(t, []string{"nine", "ten"}, titles(groups[1].Events))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := []model.CanonicalEvent{
		at("b", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		at("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	_ = Sort(in)
	assert.Equal(t, []string{"b", "a"}, titles(in))
}

func TestSort_StableForTies(t *testing.T) {
	same := time.Date(2024, 5, 5, 8, 0, 0, 0, time.UTC)
	in := []model.CanonicalEvent{
		undated("u1"),
		at("s1", same),
		undated("u2"),
		at("s2", same),
		at("early", same.Add(-time.Hour)),
		undated("u3"),
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "early", "s1", "s2"}, titles(Sort(in)))
}

func TestSort_UndatedAlwaysFirstAndIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(12)
		in := make([]model.CanonicalEvent, 0, n)
		for i := 0; i < n; i++ {
			if rng.Intn(3) == 0 {
				in = append(in, undated("u"))
				continue
			}
			// few distinct days so ties are common
			in = append(in, at("d", base.Add(time.Duration(rng.Intn(5))*24*time.Hour)))
		}

		once := Sort(in)
		require.True(t, IsSorted(once))
		assert.Equal(t, once, Sort(once))

		seenDated := false
		for _, ev := range once {
			if ev.Start != nil {
				seenDated = true
				continue
			}
			assert.False(t, seenDated, "undated event after a dated one")
		}
	}
}

func TestGroups_PreservesOrderAndCount(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	sorted := Sort([]model.CanonicalEvent{
		at("a", d1), at("b", d1.Add(time.Hour)), at("c", d2), undated("z"),
	})

	groups := Groups(sorted)
	require.Len(t, groups, 3)

	var flat []model.CanonicalEvent
	for _, g := range groups {
		require.NotEmpty(t, g.Events)
		for _, ev := range g.Events {
			assert.Equal(t, g.DateLabel, ev.DateLabel)
		}
		flat = append(flat, g.Events...)
	}
	assert.Equal(t, sorted, flat)
}

func TestGroups_NonAdjacentLabelsStaySeparate(t *testing.T) {
	// A view over the given order: equal labels split by another label are
	// not merged.
	seq := []model.CanonicalEvent{
		{Title: "a", DateLabel: "X"},
		{Title: "b", DateLabel: "Y"},
		{Title: "c", DateLabel: "X"},
	}
	groups := Groups(seq)
	require.Len(t, groups, 3)
	assert.Equal(t, "X", groups[2].DateLabel)
}

func TestGroups_Empty(t *testing.T) {
	assert.Empty(t, Groups(nil))
	assert.Empty(t, Sort(nil))
}
