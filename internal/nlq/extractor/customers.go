package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

// knownCustomers is the curated alias table of customer name variants. Keys
// are normalised (lower case, spaces stripped); values are canonical names as
// they appear in the sales views. The alias table always wins over the
// structural phases: when both produce non-empty results the regex output is
// discarded.
var knownCustomers = map[string]string{
	"clarion":        "CLARION",
	"คลาเรียน":       "CLARION",
	"seagate":        "SEAGATE",
	"ซีเกท":          "SEAGATE",
	"toyota":         "TOYOTA",
	"โตโยต้า":        "TOYOTA",
	"honda":          "HONDA",
	"ฮอนด้า":         "HONDA",
	"cpf":            "CPF",
	"ซีพีเอฟ":        "CPF",
	"ptt":            "PTT",
	"ปตท":            "PTT",
	"centralpattana": "CENTRAL PATTANA",
	"เซ็นทรัล":       "CENTRAL PATTANA",
	"thaibev":        "THAIBEV",
	"ไทยเบฟ":         "THAIBEV",
	"makro":          "MAKRO",
	"แม็คโคร":        "MAKRO",
	"bangkokhospital": "BANGKOK HOSPITAL",
	"โรงพยาบาลกรุงเทพ": "BANGKOK HOSPITAL",
	"westerndigital": "WESTERN DIGITAL",
	"เวสเทิร์นดิจิตอล": "WESTERN DIGITAL",
}

// customerIndicators gate the structural phases: without one of these tokens
// a question is never treated as carrying a customer filter. This keeps
// customer-count questions ("มีลูกค้ากี่ราย") from being misread as a filter
// on a customer named "กี่ราย".
var customerIndicators = []string{
	"บริษัท", "บ.", "บมจ", "หจก", "คลีนิค", "คลินิก",
	"โรงพยาบาล", "โรงแรม", "โรงงาน", "ห้าง",
	"ของ", "ให้กับ", "ลูกค้าชื่อ", "ลูกค้าราย",
}

// Thai company designators anchor the structural extraction; the run after a
// designator stops at the first action verb.
var companyDesignatorRe = regexp.MustCompile(
	`(บริษัท|บ\.|บมจ\.?|หจก\.?|คลีนิค|คลินิก|โรงพยาบาล|โรงแรม|โรงงาน|ห้าง)\s*([^\s,.?!]+(?:[ ]+[^\s,.?!]+){0,3})`)

// stopTokens terminate a structurally-extracted customer name.
var stopTokens = []string{
	"มี", "เคย", "ประวัติ", "ซื้อ", "ใช้", "จ้าง", "สั่ง",
	"เท่าไหร่", "เท่าไร", "กี่", "บ้าง", "ไหม", "ปี", "เดือน",
	"ยอด", "รายได้", "งาน", "ล่าสุด",
}

// englishNameRe picks up capitalised/upper-case English company names.
var englishNameRe = regexp.MustCompile(`\b([A-Z][A-Za-z&]{2,}(?:[ ]+[A-Z][A-Za-z&]{1,})*)\b`)

// englishNameNoise are capitalised tokens that are never customer names.
var englishNameNoise = map[string]bool{
	"SELECT": true, "TOP": true, "PM": true, "OK": true,
	"SQL": true, "LIMIT": true,
}

func normalizeAliasKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	return s
}

func hasCustomerIndicator(text string) bool {
	for _, tok := range customerIndicators {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// extractCustomers runs the three-phase cascade: alias table, designator
// regex, then capitalised-token heuristics. The alias table short-circuits
// the later phases.
func (e *Extractor) extractCustomers(text string) []string {
	normalized := normalizeAliasKey(text)

	var customers []string
	for alias, canonical := range knownCustomers {
		if strings.Contains(normalized, alias) {
			customers = model.AppendUniqueString(customers, canonical)
		}
	}
	if len(customers) > 0 {
		// Alias hits come from map iteration; sort for determinism.
		sort.Strings(customers)
		return customers
	}

	if !hasCustomerIndicator(text) {
		return nil
	}

	for _, m := range companyDesignatorRe.FindAllStringSubmatch(text, -1) {
		name := trimAtStopToken(m[2])
		customers = model.AppendUniqueString(customers, name)
	}

	for _, m := range englishNameRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if englishNameNoise[strings.ToUpper(candidate)] || isBrandName(candidate) {
			continue
		}
		if isMonthWord(candidate) {
			continue
		}
		customers = model.AppendUniqueString(customers, candidate)
	}

	return customers
}

// trimAtStopToken cuts a structurally-extracted run at the first action verb.
func trimAtStopToken(name string) string {
	cut := len(name)
	for _, tok := range stopTokens {
		if idx := strings.Index(name, tok); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(name[:cut])
}

func isMonthWord(s string) bool {
	_, ok := monthNames[strings.ToLower(s)]
	return ok
}

