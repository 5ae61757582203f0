package intent

import (
	"regexp"
	"strings"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

// Rule is one tagged record of the classification table. Adding an intent
// means adding a row here, not a new code branch: the generic scoring loop in
// classifier.go consumes every row the same way.
type Rule struct {
	Intent   string
	Strong   []string
	Medium   []string
	Weak     []string
	Patterns []*regexp.Regexp
	Negative []string

	// DomainBonus rewards entity co-occurrence that fits this intent
	// (equipment, brand, service type). Returns 0–3.
	DomainBonus func(bag model.EntityBag) float64
}

var rules = []Rule{
	{
		Intent: model.IntentGreeting,
		Strong: []string{"สวัสดี", "หวัดดี", "hello", "สบายดีไหม"},
		Weak:   []string{"ครับ", "ค่ะ"},
		Negative: []string{
			"รายได้", "ยอดขาย", "อะไหล่", "งาน",
		},
	},
	{
		Intent: model.IntentSalesAnalysis,
		Strong: []string{"รายได้", "ยอดขาย", "revenue", "sales"},
		Medium: []string{"มูลค่า", "income", "ขายได้", "ยอดรวม"},
		Weak:   []string{"เท่าไหร่", "เท่าไร", "total", "รวม"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`รายได้.{0,20}ปี`),
			regexp.MustCompile(`ยอดขาย.{0,20}(ปี|เดือน)`),
		},
		Negative: []string{"อะไหล่", "สต็อก", "แผนงาน"},
		DomainBonus: func(bag model.EntityBag) float64 {
			var bonus float64
			if len(bag.Years) > 0 {
				bonus += 2
			}
			if len(bag.Customers) > 0 {
				bonus++
			}
			return bonus
		},
	},
	{
		Intent: model.IntentCustomerHistory,
		Strong: []string{"ประวัติ", "เคยซื้อ", "เคยใช้", "เคยจ้าง", "history"},
		Medium: []string{"ลูกค้า", "customer", "ที่ผ่านมา"},
		Weak:   []string{"บริษัท", "เคย"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`เคย.{0,12}(ซื้อ|ใช้|จ้าง|ทำ)`),
		},
		DomainBonus: func(bag model.EntityBag) float64 {
			if len(bag.Customers) > 0 {
				return 3
			}
			return 0
		},
	},
	{
		Intent: model.IntentTopRanking,
		Strong: []string{"อันดับ", "สูงสุด", "มากที่สุด", "top"},
		Medium: []string{"ranking", "จัดอันดับ", "ดีที่สุด"},
		Weak:   []string{"ใคร", "ไหน"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)top\s*\d+`),
			regexp.MustCompile(`\d+\s*อันดับ`),
		},
		DomainBonus: func(bag model.EntityBag) float64 {
			if bag.TopN > 0 {
				return 3
			}
			return 0
		},
	},
	{
		Intent: model.IntentWorkPlan,
		Strong: []string{"แผนงาน", "ตารางงาน", "งานวันนี้", "schedule", "วางแผน"},
		Medium: []string{"ทีม", "ช่าง", "หน้างาน", "เข้างาน"},
		Weak:   []string{"งาน", "เมื่อไหร่", "วันไหน"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`งาน.{0,16}(วันนี้|พรุ่งนี้|สัปดาห์)`),
		},
		Negative: []string{"รายได้", "ยอดขาย"},
		DomainBonus: func(bag model.EntityBag) float64 {
			if len(bag.JobTypes) > 0 {
				return 2
			}
			return 0
		},
	},
	{
		Intent: model.IntentSpareParts,
		Strong: []string{"อะไหล่", "spare part", "สต็อก", "stock"},
		Medium: []string{"ราคา", "คงเหลือ", "balance", "part"},
		Weak:   []string{"ชิ้น", "หน่วย", "คลัง"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(EKAC|RCUG|CVHE|RTHD)\d*`),
			regexp.MustCompile(`\b17[A-C]\d{5}`),
		},
		DomainBonus: func(bag model.EntityBag) float64 {
			var bonus float64
			if len(bag.Products) > 0 {
				bonus += 3
			}
			if len(bag.Brands) > 0 {
				bonus++
			}
			if bonus > 3 {
				bonus = 3
			}
			return bonus
		},
	},
	{
		Intent: model.IntentOverhaulReport,
		Strong: []string{"overhaul", "โอเวอร์ฮอล", "ล้างใหญ่"},
		Medium: []string{"รายงาน", "report", "สรุปงาน"},
		Weak:   []string{"สรุป"},
		DomainBonus: func(bag model.EntityBag) float64 {
			for _, jt := range bag.JobTypes {
				if jt == "OVERHAUL" {
					return 2
				}
			}
			return 0
		},
	},
}

// override is a short, explicit rule that bypasses scoring for surface forms
// that are unambiguous to a human but overloaded for the keyword tables
// ("overhaul" lives in both a sales-report intent and a field-work intent).
type override struct {
	All        []*regexp.Regexp
	Intent     string
	Confidence float64
}

// boundaryRes precompiles whole-word patterns for every ASCII keyword in the
// rule table. Built once at init; read-only afterwards.
var boundaryRes = func() map[string]*regexp.Regexp {
	res := map[string]*regexp.Regexp{}
	add := func(kws []string) {
		for _, kw := range kws {
			kw = strings.ToLower(kw)
			if _, ok := res[kw]; ok || !isASCII(kw) {
				continue
			}
			res[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	for _, r := range rules {
		add(r.Strong)
		add(r.Medium)
		add(r.Weak)
		add(r.Negative)
	}
	return res
}()

var overrides = []override{
	{
		// Overhaul combined with an explicit reporting/financial keyword is
		// always the overhaul report, regardless of what else scores.
		All: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(overhaul|โอเวอร์ฮอล|ล้างใหญ่)`),
			regexp.MustCompile(`(?i)(รายงาน|report|รายได้|ยอดขาย|revenue|sales)`),
		},
		Intent:     model.IntentOverhaulReport,
		Confidence: 0.95,
	},
	{
		// A pure greeting with no data keyword at all.
		All: []*regexp.Regexp{
			regexp.MustCompile(`^\s*(สวัสดี|หวัดดี|hello|hi)[ครับค่ะจ้า\s!]*$`),
		},
		Intent:     model.IntentGreeting,
		Confidence: 0.95,
	},
}
