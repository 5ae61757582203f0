package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

// monthNames maps Thai full/abbreviated and English month names to month
// numbers. Longer variants are matched before shorter ones so "มกราคม" is not
// shadowed by an abbreviation.
var monthNames = map[string]int{
	"มกราคม": 1, "ม.ค.": 1, "ม.ค": 1,
	"กุมภาพันธ์": 2, "ก.พ.": 2, "ก.พ": 2,
	"มีนาคม": 3, "มี.ค.": 3, "มี.ค": 3,
	"เมษายน": 4, "เม.ย.": 4, "เม.ย": 4,
	"พฤษภาคม": 5, "พ.ค.": 5, "พ.ค": 5,
	"มิถุนายน": 6, "มิ.ย.": 6, "มิ.ย": 6,
	"กรกฎาคม": 7, "ก.ค.": 7, "ก.ค": 7,
	"สิงหาคม": 8, "ส.ค.": 8, "ส.ค": 8,
	"กันยายน": 9, "ก.ย.": 9, "ก.ย": 9,
	"ตุลาคม": 10, "ต.ค.": 10, "ต.ค": 10,
	"พฤศจิกายน": 11, "พ.ย.": 11, "พ.ย": 11,
	"ธันวาคม": 12, "ธ.ค.": 12, "ธ.ค": 12,

	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// sortedMonthNames lists names longest-first for greedy scanning.
var sortedMonthNames = func() []string {
	names := make([]string, 0, len(monthNames))
	for n := range monthNames {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

var monthRangeSepRe = regexp.MustCompile(`\s*(?:-|–|ถึง)\s*`)

type monthHit struct {
	num   int
	start int
	end   int
}

// scanMonths finds every month-name occurrence with its byte offsets.
func scanMonths(lower string) []monthHit {
	var hits []monthHit
	taken := make([]bool, len(lower))
	for _, name := range sortedMonthNames {
		from := 0
		for {
			idx := strings.Index(lower[from:], name)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(name)
			from = end
			if taken[start] {
				continue
			}
			// English short names need a boundary check so "mar" inside
			// "market" does not fire.
			if isASCIIWordAt(lower, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				taken[i] = true
			}
			hits = append(hits, monthHit{num: monthNames[name], start: start, end: end})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })
	return hits
}

// isASCIIWordAt reports whether the [start,end) match is glued to an ASCII
// letter on either side.
func isASCIIWordAt(s string, start, end int) bool {
	isLetter := func(b byte) bool {
		return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
	}
	if start > 0 && isLetter(s[start-1]) && isLetter(s[start]) {
		return true
	}
	if end < len(s) && isLetter(s[end-1]) && isLetter(s[end]) {
		return true
	}
	return false
}

// extractMonths matches single months and "A-B" ranges, including wraparound
// ranges crossing a year boundary (Nov→Jan emits {11,12,1}).
func (e *Extractor) extractMonths(text string) []int {
	lower := strings.ToLower(text)
	hits := scanMonths(lower)
	if len(hits) == 0 {
		return nil
	}

	var months []int
	used := map[int]bool{}

	for i := 0; i+1 < len(hits); i++ {
		between := lower[hits[i].end:hits[i+1].start]
		if !monthRangeSepRe.MatchString(between) || strings.TrimSpace(monthRangeSepRe.ReplaceAllString(between, "")) != "" {
			continue
		}
		for _, m := range expandMonthRange(hits[i].num, hits[i+1].num) {
			months = model.AppendUniqueInt(months, m)
		}
		used[i] = true
		used[i+1] = true
	}

	for i, h := range hits {
		if used[i] {
			continue
		}
		months = model.AppendUniqueInt(months, h.num)
	}

	sort.Ints(months)
	return months
}

// expandMonthRange returns the inclusive range from..to, wrapping through
// December when from > to.
func expandMonthRange(from, to int) []int {
	var out []int
	m := from
	for {
		out = append(out, m)
		if m == to {
			return out
		}
		m++
		if m > 12 {
			m = 1
		}
	}
}
