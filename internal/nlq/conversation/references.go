package conversation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

// refCategory groups reference expressions by what they point at.
type refCategory string

const (
	refTemporal refCategory = "temporal"
	refEntity   refCategory = "entity"
	refResult   refCategory = "result"
)

// refExpr is one closed-set reference expression. Resolution walks history
// most-recent-first and substitutes the concrete value from the first turn
// carrying the needed entity kind.
type refExpr struct {
	Expr     string
	Category refCategory
	Kind     model.EntityKind
	// YearDelta shifts an inherited year ("ปีที่แล้ว" = last year relative
	// to the year previously talked about).
	YearDelta int
}

var referenceExprs = []refExpr{
	// Temporal.
	{Expr: "ปีที่แล้ว", Category: refTemporal, Kind: model.KindYears, YearDelta: -1},
	{Expr: "ปีก่อนหน้า", Category: refTemporal, Kind: model.KindYears, YearDelta: -1},
	{Expr: "ปีถัดไป", Category: refTemporal, Kind: model.KindYears, YearDelta: 1},
	{Expr: "ปีเดียวกัน", Category: refTemporal, Kind: model.KindYears},
	{Expr: "เดือนเดียวกัน", Category: refTemporal, Kind: model.KindMonths},
	{Expr: "เดือนที่แล้ว", Category: refTemporal, Kind: model.KindMonths, YearDelta: -1},
	{Expr: "ช่วงเดียวกัน", Category: refTemporal, Kind: model.KindMonths},
	// Entity.
	{Expr: "บริษัทนั้น", Category: refEntity, Kind: model.KindCustomers},
	{Expr: "บริษัทเดิม", Category: refEntity, Kind: model.KindCustomers},
	{Expr: "ลูกค้าเดิม", Category: refEntity, Kind: model.KindCustomers},
	{Expr: "ลูกค้ารายนั้น", Category: refEntity, Kind: model.KindCustomers},
	{Expr: "เจ้านั้น", Category: refEntity, Kind: model.KindCustomers},
	{Expr: "รุ่นนั้น", Category: refEntity, Kind: model.KindProducts},
	{Expr: "รุ่นเดิม", Category: refEntity, Kind: model.KindProducts},
	// Result — these need the prior result set, which text alone cannot
	// supply; they are recorded but substituted with nothing.
	{Expr: "ทั้งหมด", Category: refResult},
	{Expr: "อันดับแรก", Category: refResult},
	{Expr: "รายการแรก", Category: refResult},
	{Expr: "อันนั้น", Category: refResult},
}

// followUpIndicators are keywords whose presence marks a turn as continuing
// the prior topic, grouped by follow-up style.
var followUpIndicators = map[string][]string{
	"drill_down":   {"รายละเอียด", "เจาะ", "ขอดูเพิ่ม", "ลึกกว่านี้"},
	"comparison":   {"เทียบ", "เปรียบเทียบ", "ต่างกัน", "vs", "compare"},
	"aggregation":  {"รวมทั้งหมด", "ยอดรวม", "สรุปรวม"},
	"continuation": {"แล้วล่ะ", "ล่ะ", "อีก", "ต่อ", "ด้วย"},
	"filtering":    {"เฉพาะ", "เอาแค่", "กรอง", "only"},
	"temporal":     {"ก่อนหน้า", "ถัดไป", "หลังจากนั้น"},
}

// yesNoTerminators end a conversation thread rather than continue it.
var yesNoTerminators = map[string]bool{
	"ใช่": true, "ไม่": true, "ไม่ใช่": true, "ครับ": true, "ค่ะ": true,
	"ok": true, "okay": true, "โอเค": true, "ขอบคุณ": true, "ขอบคุณครับ": true,
	"ขอบคุณค่ะ": true, "yes": true, "no": true,
}

// shortQueryMaxRunes bounds the short-query follow-up heuristic for
// unsegmented Thai text.
const shortQueryMaxRunes = 20

// workKeywords signal an implicit subject carried over from the prior turn.
var workKeywords = []string{"รายได้", "ยอดขาย", "งาน", "ซื้อ", "อะไหล่", "revenue", "sales"}

// thaiMonthNames resolves a month number back into Thai for substitution.
var thaiMonthNames = [13]string{"", "มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน",
	"พฤษภาคม", "มิถุนายน", "กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม",
	"พฤศจิกายน", "ธันวาคม"}

// DetectFollowUpCategory returns the follow-up style keyword group matched by
// the text, or "" when none matched.
func DetectFollowUpCategory(text string) string {
	lower := strings.ToLower(text)
	// Fixed check order keeps detection deterministic.
	for _, cat := range []string{"comparison", "drill_down", "aggregation", "filtering", "temporal", "continuation"} {
		for _, kw := range followUpIndicators[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return ""
}

// IsFollowUp reports whether the text continues the prior conversation. A
// first turn (empty history) is never a follow-up.
func (m *Manager) IsFollowUp(text string, history []model.ConversationTurn) bool {
	if len(history) == 0 {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, ref := range referenceExprs {
		if strings.Contains(lower, ref.Expr) {
			return true
		}
	}
	if DetectFollowUpCategory(lower) != "" {
		return true
	}

	// Thai is unsegmented, so the token heuristic alone would flag any
	// sentence without spaces; the rune cap keeps it to genuinely short
	// fragments like "ปี 2566".
	tokens := strings.Fields(lower)
	if len(tokens) > 0 && len(tokens) <= m.cfg.ShortQueryTokens &&
		utf8.RuneCountInString(lower) <= shortQueryMaxRunes &&
		!yesNoTerminators[strings.Join(tokens, "")] {
		return true
	}

	// Implicit subject: the previous turn named a customer the current text
	// omits while still talking about revenue or work.
	last := history[len(history)-1]
	if len(last.Entities.Customers) > 0 && !mentionsAnyCustomer(lower, last.Entities.Customers) {
		for _, kw := range workKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}

	return false
}

func mentionsAnyCustomer(lower string, customers []string) bool {
	for _, c := range customers {
		if strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

// ResolveReferences rewrites every matched reference expression using the
// concrete value from the most recent turn carrying the relevant entity kind.
// Result references cannot be resolved from text alone; they are recorded in
// the map with an empty substitution and left verbatim.
func (m *Manager) ResolveReferences(text string, history []model.ConversationTurn) (string, map[string]string) {
	resolved := text
	resolutions := map[string]string{}

	for _, ref := range referenceExprs {
		if !strings.Contains(resolved, ref.Expr) {
			continue
		}

		if ref.Category == refResult {
			resolutions[ref.Expr] = ""
			continue
		}

		substitution, ok := resolveFromHistory(ref, history)
		if !ok {
			continue
		}
		// A substitution ending in digits gets a trailing space so the year
		// never fuses with the following Thai text; whitespace is normalized
		// afterwards.
		inline := substitution
		if strings.ContainsAny(inline, "0123456789") {
			inline += " "
		}
		resolved = strings.ReplaceAll(resolved, ref.Expr, inline)
		resolutions[ref.Expr] = substitution
	}

	if resolved != text {
		resolved = strings.Join(strings.Fields(resolved), " ")
	}
	return resolved, resolutions
}

// resolveFromHistory walks history most-recent-first and stops at the first
// turn providing the needed entity kind.
func resolveFromHistory(ref refExpr, history []model.ConversationTurn) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		switch ref.Kind {
		case model.KindYears:
			if len(turn.Entities.Years) > 0 {
				year := turn.Entities.Years[len(turn.Entities.Years)-1] + ref.YearDelta
				return fmt.Sprintf("ปี %d", year), true
			}
		case model.KindMonths:
			if len(turn.Entities.Months) > 0 {
				month := turn.Entities.Months[len(turn.Entities.Months)-1]
				if ref.YearDelta < 0 {
					month--
					if month < 1 {
						month = 12
					}
				}
				return "เดือน" + thaiMonthNames[month], true
			}
		case model.KindCustomers:
			if len(turn.Entities.Customers) > 0 {
				return turn.Entities.Customers[len(turn.Entities.Customers)-1], true
			}
		case model.KindProducts:
			if len(turn.Entities.Products) > 0 {
				return turn.Entities.Products[len(turn.Entities.Products)-1], true
			}
		}
	}
	return "", false
}

// MergeEntities backfills entity kinds absent in the current turn from the
// most recent turns, most recent first. Entities found in the current turn
// always win.
func (m *Manager) MergeEntities(current model.EntityBag, history []model.ConversationTurn) model.EntityBag {
	merged := current.Clone()

	lookback := m.cfg.MergeLookback
	start := len(history) - lookback
	if start < 0 {
		start = 0
	}
	recent := history[start:]

	for i := len(recent) - 1; i >= 0; i-- {
		prior := recent[i].Entities
		if merged.Empty(model.KindYears) {
			for _, y := range prior.Years {
				merged.Years = model.AppendUniqueInt(merged.Years, y)
			}
		}
		if merged.Empty(model.KindMonths) {
			for _, mo := range prior.Months {
				merged.Months = model.AppendUniqueInt(merged.Months, mo)
			}
		}
		if merged.Empty(model.KindCustomers) {
			for _, c := range prior.Customers {
				merged.Customers = model.AppendUniqueString(merged.Customers, c)
			}
		}
		if merged.Empty(model.KindProducts) {
			for _, p := range prior.Products {
				merged.Products = model.AppendUniqueString(merged.Products, p)
			}
		}
		if merged.Empty(model.KindBrands) {
			for _, b := range prior.Brands {
				merged.Brands = model.AppendUniqueString(merged.Brands, b)
			}
		}
		if merged.Empty(model.KindJobTypes) {
			for _, j := range prior.JobTypes {
				merged.JobTypes = model.AppendUniqueString(merged.JobTypes, j)
			}
		}
	}

	return merged
}
