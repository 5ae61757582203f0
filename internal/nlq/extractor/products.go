package extractor

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

// partNumberRes are tuned to the part-number shapes that appear in the spare
// part views (chiller models and stock codes).
var partNumberRes = []*regexp.Regexp{
	regexp.MustCompile(`\bEKAC\d+\b`),
	regexp.MustCompile(`\bRCUG\d+[A-Z]*\d*\b`),
	regexp.MustCompile(`\b17[A-C]\d{5}[A-Z]?\b`),
	regexp.MustCompile(`\bCVHE\d+\b`),
	regexp.MustCompile(`\bRTHD\d*[A-Z]*\b`),
}

// modelPhraseRe catches "model X" / "รุ่น X" for codes outside the known shapes.
var modelPhraseRe = regexp.MustCompile(`(?:model|รุ่น)\s+([A-Za-z0-9][A-Za-z0-9\-/]{2,})`)

// brandVocab is the closed brand vocabulary (case-insensitive membership).
var brandVocab = []string{
	"TRANE", "CARRIER", "YORK", "DAIKIN", "HITACHI",
	"MITSUBISHI", "TOSHIBA", "DUNHAM-BUSH", "MCQUAY", "BITZER",
}

// jobTypeVocab maps surface forms to canonical job type tags.
var jobTypeVocab = map[string]string{
	"overhaul":    "OVERHAUL",
	"โอเวอร์ฮอล":  "OVERHAUL",
	"ล้างใหญ่":    "OVERHAUL",
	"pm":          "PM",
	"preventive":  "PM",
	"บำรุงรักษา":  "PM",
	"ซ่อม":        "REPAIR",
	"repair":      "REPAIR",
	"ติดตั้ง":     "INSTALL",
	"install":     "INSTALL",
	"เปลี่ยนอะไหล่": "PARTS_CHANGE",
	"service":     "SERVICE",
	"เซอร์วิส":    "SERVICE",
}

var (
	amountRe  = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(ล้านบาท|ล้าน|บาท|baht|฿)`)
	topNRe    = regexp.MustCompile(`(?:top|อันดับที่|อันดับ)\s*(\d{1,3})`)
	topNAltRe = regexp.MustCompile(`(\d{1,3})\s*อันดับ(?:แรก)?`)
	dateRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(2[05]\d{2})\b`)
)

func (e *Extractor) extractProducts(text string) []string {
	var products []string
	for _, re := range partNumberRes {
		for _, m := range re.FindAllString(strings.ToUpper(text), -1) {
			products = model.AppendUniqueString(products, m)
		}
	}
	for _, m := range modelPhraseRe.FindAllStringSubmatch(text, -1) {
		products = model.AppendUniqueString(products, strings.ToUpper(m[1]))
	}
	return products
}

func isBrandName(s string) bool {
	for _, b := range brandVocab {
		if strings.EqualFold(b, s) {
			return true
		}
	}
	return false
}

func (e *Extractor) extractBrands(text string) []string {
	upper := strings.ToUpper(text)
	var brands []string
	for _, b := range brandVocab {
		if strings.Contains(upper, b) {
			brands = model.AppendUniqueString(brands, b)
		}
	}
	return brands
}

func (e *Extractor) extractJobTypes(text string) []string {
	lower := strings.ToLower(text)
	var jobs []string
	for surface, canonical := range jobTypeVocab {
		if strings.Contains(lower, surface) {
			jobs = model.AppendUniqueString(jobs, canonical)
		}
	}
	sort.Strings(jobs)
	return jobs
}

func (e *Extractor) extractAmounts(text string) []float64 {
	var amounts []float64
	for _, m := range amountRe.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if m[2] == "ล้าน" || m[2] == "ล้านบาท" {
			v *= 1_000_000
		}
		seen := false
		for _, existing := range amounts {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			amounts = append(amounts, v)
		}
	}
	return amounts
}

func (e *Extractor) extractTopN(text string) int {
	lower := strings.ToLower(text)
	if m := topNRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if m := topNAltRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// extractDates normalises explicit dd/mm/yyyy dates (BE years converted) to
// ISO yyyy-mm-dd strings.
func (e *Extractor) extractDates(text string) []string {
	var dates []string
	for _, m := range dateRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		year = toGregorian(year)
		if day < 1 || day > 31 || month < 1 || month > 12 || year < e.cfg.MinYear || year > e.cfg.MaxYear {
			continue
		}
		iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		dates = model.AppendUniqueString(dates, iso)
	}
	return dates
}
