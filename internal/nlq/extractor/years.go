package extractor

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// Buddhist Era offset: Thai calendar year = Gregorian year + 543.
const beOffset = 543

var (
	yearRangeRe = regexp.MustCompile(`(2[05]\d{2})\s*[-–]\s*(2[05]\d{2})`)
	bareYearRe  = regexp.MustCompile(`\b(2[05]\d{2})\b`)
	// "ย้อนหลัง N ปี" / "N ปีย้อนหลัง": N years back, anchored at the
	// configured current year.
	yearsBackRe    = regexp.MustCompile(`ย้อนหลัง\s*(\d{1,2})\s*ปี`)
	yearsBackAltRe = regexp.MustCompile(`(\d{1,2})\s*ปี\s*ย้อนหลัง`)
)

// toGregorian converts Buddhist-era years (>2500) to Gregorian.
func toGregorian(y int) int {
	if y > 2500 {
		return y - beOffset
	}
	return y
}

// extractYears parses bare years, BE forms, explicit ranges and the
// "N years back" modifier. A parsed year outside the configured window is
// discarded as noise rather than propagated.
func (e *Extractor) extractYears(text string) []int {
	var years []int

	keep := func(raw int) {
		y := toGregorian(raw)
		if y < e.cfg.MinYear || y > e.cfg.MaxYear {
			logx.Debug().Int("year", raw).Msg("discarding out-of-range year as extraction noise")
			return
		}
		years = model.AppendUniqueInt(years, y)
	}

	consumed := map[string]bool{}

	for _, m := range yearRangeRe.FindAllStringSubmatch(text, -1) {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		consumed[m[1]] = true
		consumed[m[2]] = true
		from, to = toGregorian(from), toGregorian(to)
		if from > to {
			from, to = to, from
		}
		for y := from; y <= to; y++ {
			if y >= e.cfg.MinYear && y <= e.cfg.MaxYear {
				years = model.AppendUniqueInt(years, y)
			}
		}
	}

	for _, m := range bareYearRe.FindAllStringSubmatch(text, -1) {
		if consumed[m[1]] {
			continue
		}
		y, _ := strconv.Atoi(m[1])
		keep(y)
	}

	if m := yearsBackRe.FindStringSubmatch(text); m != nil {
		years = e.expandYearsBack(years, m[1])
	} else if m := yearsBackAltRe.FindStringSubmatch(text); m != nil {
		years = e.expandYearsBack(years, m[1])
	}

	sort.Ints(years)
	return years
}

// expandYearsBack turns "N years back" into an explicit year list ending at
// the configured current year.
func (e *Extractor) expandYearsBack(years []int, raw string) []int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return years
	}
	for y := e.cfg.CurrentYear - n + 1; y <= e.cfg.CurrentYear; y++ {
		if y >= e.cfg.MinYear && y <= e.cfg.MaxYear {
			years = model.AppendUniqueInt(years, y)
		}
	}
	return years
}
