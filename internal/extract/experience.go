package extract

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	explicitExperience = regexp.MustCompile(`(?i)(?:total|overall)?\s*experience[:\s]*([0-9]+(?:\.[0-9]+)?)\s*\+?\s*years`)
	yearRange          = regexp.MustCompile(`(?i)(\d{4})\s*[-–—]\s*(present|\d{4})`)
	monthRange         = regexp.MustCompile(`(?i)([A-Za-z]{3,9}\s+\d{4})\s*[-–—]\s*(present|[A-Za-z]{3,9}\s+\d{4})`)
	monthYear          = regexp.MustCompile(`^([A-Za-z]{3,9})\s+(\d{4})`)
	yearsPhrase        = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*years`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// interval is a half-open range of months, [start, end), where a month is
// indexed as year*12 + month.
type interval struct {
	start int
	end   int
}

// ExperienceEstimator estimates total years of professional experience.
type ExperienceEstimator struct {
	now func() time.Time
}

// NewExperienceEstimator returns an estimator using now as the clock that
// resolves "present". A nil clock means time.Now.
func NewExperienceEstimator(now func() time.Time) *ExperienceEstimator {
	if now == nil {
		now = time.Now
	}
	return &ExperienceEstimator{now: now}
}

// Estimate returns years of experience rounded to one decimal.
//
// An explicit "experience: N years" claim wins. Otherwise year and month
// ranges are merged into disjoint spans and summed. Range bounds are
// inclusive calendar months: a bare start year means January, a bare end year
// means December and "present" means the current month. When no range is
// found the largest "N years" phrase is used.
func (e *ExperienceEstimator) Estimate(raw string) float64 {
	if m := explicitExperience.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return round1(v)
		}
	}

	intervals := e.intervals(raw)
	if len(intervals) == 0 {
		best := -1.0
		for _, m := range yearsPhrase.FindAllStringSubmatch(raw, -1) {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > best {
				best = v
			}
		}
		if best < 0 {
			return 0
		}
		return round1(best)
	}

	months := 0
	for _, span := range mergeIntervals(intervals) {
		months += span.end - span.start
	}

	return round1(float64(months) / 12)
}

func (e *ExperienceEstimator) intervals(raw string) []interval {
	now := e.now()
	current := now.Year()*12 + int(now.Month())

	var out []interval

	// yearRange also matches the "YYYY - present" tail of a month range, which
	// adds an interval starting in January of that year.
	for _, m := range yearRange.FindAllStringSubmatch(raw, -1) {
		startYear, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		end := current + 1
		if !isPresent(m[2]) {
			endYear, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			end = endYear*12 + 12 + 1
		}
		out = appendInterval(out, startYear*12+1, end)
	}

	for _, m := range monthRange.FindAllStringSubmatch(raw, -1) {
		start, ok := parseMonthYear(m[1])
		if !ok {
			continue
		}
		end := current + 1
		if !isPresent(m[2]) {
			last, ok := parseMonthYear(m[2])
			if !ok {
				continue
			}
			end = last + 1
		}
		out = appendInterval(out, start, end)
	}

	return out
}

func appendInterval(out []interval, start, end int) []interval {
	if end <= start {
		return out
	}
	return append(out, interval{start: start, end: end})
}

// mergeIntervals merges overlapping or touching intervals.
func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}

	sorted := make([]interval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	merged := []interval{sorted[0]}
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if next.start <= last.end {
			if next.end > last.end {
				last.end = next.end
			}
			continue
		}
		merged = append(merged, next)
	}

	return merged
}

func parseMonthYear(s string) (int, bool) {
	m := monthYear.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	month, ok := monthNumbers[strings.ToLower(m[1][:3])]
	if !ok {
		month = 1
	}
	return year*12 + month, true
}

func isPresent(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "present")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
