package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(year int, month time.Month) func() time.Time {
	return func() time.Time { return time.Date(year, month, 15, 0, 0, 0, 0, time.UTC) }
}

func TestExperienceEstimate(t *testing.T) {
	t.Parallel()

	e := NewExperienceEstimator(fixedClock(2024, time.June))

	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "no signal", text: "Python developer", want: 0},
		{name: "empty", text: "", want: 0},
		{name: "explicit claim", text: "Total experience: 7.5 years", want: 7.5},
		{name: "explicit claim with plus", text: "Experience 3+ years in Go", want: 3},
		{name: "explicit beats ranges", text: "Total experience: 5 years\nAcme 2010-2015", want: 5},
		{name: "overlapping ranges merge", text: "Acme Jan 2018 - Dec 2019\nGlobex 2019-2021", want: 4},
		{name: "single month range", text: "Mar 2020 – Aug 2020", want: 0.5},
		{name: "touching ranges", text: "Jan 2018 - Jun 2018\nJul 2018 - Dec 2018", want: 1},
		{name: "disjoint ranges sum", text: "2010 - 2010\n2015-2016", want: 3},
		{name: "present resolves to clock", text: "Jan 2024 - Present", want: 0.5},
		{name: "year present", text: "2023 — present", want: 1.5},
		{name: "month present also counts from january", text: "Jun 2020 - Present", want: 4.5},
		{name: "full month names", text: "September 2021 - February 2022", want: 0.5},
		{name: "unknown month counts as january", text: "Foo 2020 - Dec 2020", want: 1},
		{name: "fallback largest years phrase", text: "2 years of Go, 4.5 years of Python", want: 4.5},
		{name: "reversed range ignored", text: "2020-2018 and 3 years", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, e.Estimate(tt.text), 1e-9)
		})
	}
}

func TestExperienceMergeDoesNotDoubleCount(t *testing.T) {
	t.Parallel()

	e := NewExperienceEstimator(fixedClock(2024, time.January))

	first := e.Estimate("Jan 2018 - Dec 2019")
	second := e.Estimate("2019-2021")
	both := e.Estimate("Jan 2018 - Dec 2019\n2019-2021")

	assert.Less(t, both, first+second)
	assert.Equal(t, 4.0, both)
}

func TestMergeIntervals(t *testing.T) {
	t.Parallel()

	merged := mergeIntervals([]interval{{start: 30, end: 40}, {start: 10, end: 20}, {start: 20, end: 25}, {start: 12, end: 15}})
	assert.Equal(t, []interval{{start: 10, end: 25}, {start: 30, end: 40}}, merged)
	assert.Nil(t, mergeIntervals(nil))
}

func TestExperienceDefaultClock(t *testing.T) {
	t.Parallel()

	e := NewExperienceEstimator(nil)
	assert.Greater(t, e.Estimate("2000 - present"), 20.0)
}
