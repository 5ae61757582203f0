package catalog

import (
	"fmt"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

// staticTemplates are the hand-written NORMAL and COMPLEX entries. Their SQL
// bodies carry substitution tokens; the composer expands tokens, never the
// catalog. Everything after an ORDER BY in a year-smart body is applied once,
// after the UNION ALL arms.
var staticTemplates = []model.TemplateMetadata{
	{
		Name:           "sales_revenue_by_year",
		Tier:           model.TierNormal,
		Keywords:       []string{"รายได้", "ยอดขาย", "revenue", "sales", "รวม", "เท่าไหร่"},
		YearAdjustment: model.YearSmart,
		IntentAffinity: []string{model.IntentSalesAnalysis},
		DefaultFor:     model.IntentSalesAnalysis,
		SQL:            "SELECT {YEAR_LABEL} AS year_label, SUM(total_num) AS total_revenue FROM {TABLE} WHERE 1=1{CUSTOMER_FILTER}{MONTH_FILTER}",
	},
	{
		Name:           "sales_job_rows",
		Tier:           model.TierNormal,
		Keywords:       []string{"รายการ", "แสดง", "งานอะไรบ้าง", "list", "jobs"},
		YearAdjustment: model.YearSmart,
		IntentAffinity: []string{model.IntentSalesAnalysis, model.IntentCustomerHistory},
		SQL:            "SELECT {YEAR_LABEL} AS year_label, job_no, customer_name, description, job_type, total_num, date FROM {TABLE} WHERE 1=1{CUSTOMER_FILTER}{MONTH_FILTER} ORDER BY date DESC LIMIT {LIMIT}",
	},
	{
		Name:           "sales_monthly_breakdown",
		Tier:           model.TierComplex,
		Keywords:       []string{"รายเดือน", "แยกเดือน", "แต่ละเดือน", "monthly"},
		YearAdjustment: model.YearSimple,
		IntentAffinity: []string{model.IntentSalesAnalysis},
		SQL:            "SELECT SUBSTR(date, 1, 7) AS month_start, SUM(total_num) AS total_revenue FROM {TABLE} WHERE 1=1{CUSTOMER_FILTER} GROUP BY month_start ORDER BY month_start ASC",
	},
	{
		Name:           "customer_history_all_years",
		Tier:           model.TierComplex,
		Keywords:       []string{"ประวัติ", "เคยซื้อ", "เคยใช้", "ที่ผ่านมา", "history"},
		YearAdjustment: model.YearSmart,
		IntentAffinity: []string{model.IntentCustomerHistory},
		DefaultFor:     model.IntentCustomerHistory,
		SQL:            "SELECT {YEAR_LABEL} AS year_label, job_no, customer_name, description, job_type, total_num, date FROM {TABLE} WHERE 1=1{CUSTOMER_FILTER} ORDER BY date DESC LIMIT {LIMIT}",
	},
	{
		Name:           "customer_purchase_summary",
		Tier:           model.TierComplex,
		Keywords:       []string{"สรุป", "ยอดรวม", "ซื้อไปเท่าไหร่", "summary"},
		YearAdjustment: model.YearSmart,
		IntentAffinity: []string{model.IntentCustomerHistory, model.IntentSalesAnalysis},
		SQL:            "SELECT {YEAR_LABEL} AS year_label, SUM(total_num) AS total_revenue, COUNT(job_no) AS job_count FROM {TABLE} WHERE 1=1{CUSTOMER_FILTER}{MONTH_FILTER}",
	},
	{
		Name:           "top_customers_by_revenue",
		Tier:           model.TierComplex,
		Keywords:       []string{"อันดับ", "สูงสุด", "มากที่สุด", "top", "ranking"},
		YearAdjustment: model.YearSimple,
		IntentAffinity: []string{model.IntentTopRanking},
		DefaultFor:     model.IntentTopRanking,
		SQL:            "SELECT customer_name, SUM(total_num) AS total_revenue FROM {TABLE} WHERE 1=1{MONTH_FILTER} GROUP BY customer_name ORDER BY total_revenue DESC LIMIT {LIMIT}",
	},
	{
		Name:           "top_jobs_by_value",
		Tier:           model.TierNormal,
		Keywords:       []string{"งานใหญ่", "มูลค่าสูง", "งานที่แพง", "biggest"},
		YearAdjustment: model.YearSimple,
		IntentAffinity: []string{model.IntentTopRanking, model.IntentSalesAnalysis},
		SQL:            "SELECT job_no, customer_name, description, total_num FROM {TABLE} WHERE 1=1{CUSTOMER_FILTER}{MONTH_FILTER} ORDER BY total_num DESC LIMIT {LIMIT}",
	},
	{
		Name:             "top_customers_share",
		Tier:             model.TierComplex,
		Keywords:         []string{"สัดส่วน", "เปอร์เซ็นต์", "share", "percent"},
		RequiresSubquery: true,
		YearAdjustment:   model.YearSimple,
		IntentAffinity:   []string{model.IntentTopRanking},
		SQL:              "SELECT customer_name, SUM(total_num) AS total_revenue, SUM(total_num) / (SELECT SUM(total_num) FROM {TABLE}) AS revenue_share FROM {TABLE} GROUP BY customer_name ORDER BY total_revenue DESC LIMIT {LIMIT}",
	},
	{
		Name:           "work_plan_schedule",
		Table:          "v_work_force",
		Tier:           model.TierNormal,
		Keywords:       []string{"แผนงาน", "ตารางงาน", "งานวันนี้", "schedule", "เข้างาน"},
		YearAdjustment: model.YearNone,
		IntentAffinity: []string{model.IntentWorkPlan},
		DefaultFor:     model.IntentWorkPlan,
		SQL:            "SELECT date, customer, project, detail, service_group, report_by, job_no FROM v_work_force WHERE 1=1{CUSTOMER_FILTER}{MONTH_FILTER} ORDER BY date ASC LIMIT {LIMIT}",
	},
	{
		Name:           "work_plan_by_team",
		Table:          "v_work_force",
		Tier:           model.TierNormal,
		Keywords:       []string{"ทีม", "ช่าง", "service group", "ทีมไหน"},
		YearAdjustment: model.YearNone,
		IntentAffinity: []string{model.IntentWorkPlan},
		SQL:            "SELECT service_group, date, customer, project, detail, report_by FROM v_work_force WHERE 1=1{MONTH_FILTER} ORDER BY service_group ASC, date ASC LIMIT {LIMIT}",
	},
	{
		Name:           "spare_part_stock",
		Table:          "v_spare_part",
		Tier:           model.TierNormal,
		Keywords:       []string{"อะไหล่", "สต็อก", "คงเหลือ", "stock", "balance"},
		YearAdjustment: model.YearNone,
		IntentAffinity: []string{model.IntentSpareParts},
		DefaultFor:     model.IntentSpareParts,
		SQL:            "SELECT wh, product_code, product_name, unit, balance_num, unit_price FROM v_spare_part WHERE 1=1{PRODUCT_FILTER} ORDER BY product_code ASC LIMIT {LIMIT}",
	},
	{
		Name:           "spare_part_price",
		Table:          "v_spare_part",
		Tier:           model.TierNormal,
		Keywords:       []string{"ราคา", "price", "แพง", "ถูก"},
		YearAdjustment: model.YearNone,
		IntentAffinity: []string{model.IntentSpareParts},
		SQL:            "SELECT product_code, product_name, unit, unit_price FROM v_spare_part WHERE 1=1{PRODUCT_FILTER} ORDER BY unit_price DESC LIMIT {LIMIT}",
	},
	{
		Name:           "spare_part_secondary_stock",
		Table:          "v_spare_part2",
		Tier:           model.TierNormal,
		Keywords:       []string{"คลังสอง", "คลังสำรอง", "สาขา", "warehouse"},
		YearAdjustment: model.YearNone,
		IntentAffinity: []string{model.IntentSpareParts},
		SQL:            "SELECT wh, product_code, product_name, unit, balance_num, unit_price FROM v_spare_part2 WHERE 1=1{PRODUCT_FILTER} ORDER BY product_code ASC LIMIT {LIMIT}",
	},
	{
		Name:           "spare_part_stock_value",
		Table:          "v_spare_part",
		Tier:           model.TierComplex,
		Keywords:       []string{"มูลค่าสต็อก", "มูลค่าคงเหลือ", "stock value"},
		YearAdjustment: model.YearNone,
		IntentAffinity: []string{model.IntentSpareParts},
		SQL:            "SELECT wh, SUM(balance_num * unit_price) AS stock_value FROM v_spare_part GROUP BY wh ORDER BY stock_value DESC",
	},
	{
		Name:                    "overhaul_revenue_report",
		Tier:                    model.TierComplex,
		Keywords:                []string{"overhaul", "โอเวอร์ฮอล", "ล้างใหญ่", "รายงาน", "report"},
		RequiresExclusionFilter: true,
		YearAdjustment:          model.YearSmart,
		IntentAffinity:          []string{model.IntentOverhaulReport},
		DefaultFor:              model.IntentOverhaulReport,
		SQL:                     "SELECT {YEAR_LABEL} AS year_label, SUM(total_num) AS total_revenue, COUNT(job_no) AS job_count FROM {TABLE} WHERE job_type ILIKE '%OVERHAUL%'{CUSTOMER_FILTER}{MONTH_FILTER}",
	},
	{
		Name:                    "overhaul_job_rows",
		Tier:                    model.TierNormal,
		Keywords:                []string{"overhaul", "โอเวอร์ฮอล", "รายการ", "งานไหนบ้าง"},
		RequiresExclusionFilter: true,
		YearAdjustment:          model.YearSmart,
		IntentAffinity:          []string{model.IntentOverhaulReport},
		SQL:                     "SELECT {YEAR_LABEL} AS year_label, job_no, customer_name, description, total_num, date FROM {TABLE} WHERE job_type ILIKE '%OVERHAUL%'{CUSTOMER_FILTER}{MONTH_FILTER} ORDER BY date DESC LIMIT {LIMIT}",
	},
}

// exactReq pins an EXACT template to the evidence that justifies emitting it
// verbatim. Month is zero for whole-year entries.
type exactReq struct {
	Year  int
	Month int
}

// catalogMonths supplies Thai/English month keywords for generated entries.
var catalogMonths = [13][2]string{
	{}, {"มกราคม", "january"}, {"กุมภาพันธ์", "february"}, {"มีนาคม", "march"},
	{"เมษายน", "april"}, {"พฤษภาคม", "may"}, {"มิถุนายน", "june"},
	{"กรกฎาคม", "july"}, {"สิงหาคม", "august"}, {"กันยายน", "september"},
	{"ตุลาคม", "october"}, {"พฤศจิกายน", "november"}, {"ธันวาคม", "december"},
}

// generateExactTemplates pre-bakes the per-year and per-year-month EXACT
// entries for every sales view. Keywords carry both the Gregorian and the
// Buddhist-era spelling of the year.
func generateExactTemplates() ([]model.TemplateMetadata, map[string]exactReq) {
	var out []model.TemplateMetadata
	reqs := map[string]exactReq{}

	add := func(tmpl model.TemplateMetadata, req exactReq) {
		tmpl.Tier = model.TierExact
		tmpl.YearAdjustment = model.YearNone
		out = append(out, tmpl)
		reqs[tmpl.Name] = req
	}

	for year := SalesYearMin; year <= SalesYearMax; year++ {
		view := SalesView(year)
		yearKW := []string{fmt.Sprint(year), fmt.Sprint(year + 543)}

		add(model.TemplateMetadata{
			Name:           fmt.Sprintf("sales_total_%d_exact", year),
			Table:          view,
			Keywords:       append([]string{"รายได้", "ยอดขาย", "รวม", "revenue", "total"}, yearKW...),
			IntentAffinity: []string{model.IntentSalesAnalysis},
			SQL:            fmt.Sprintf("SELECT %d AS year_label, SUM(total_num) AS total_revenue FROM %s", year, view),
		}, exactReq{Year: year})

		add(model.TemplateMetadata{
			Name:           fmt.Sprintf("sales_job_count_%d_exact", year),
			Table:          view,
			Keywords:       append([]string{"กี่งาน", "จำนวนงาน", "count"}, yearKW...),
			IntentAffinity: []string{model.IntentSalesAnalysis},
			SQL:            fmt.Sprintf("SELECT COUNT(job_no) AS job_count FROM %s", view),
		}, exactReq{Year: year})

		add(model.TemplateMetadata{
			Name:           fmt.Sprintf("sales_avg_job_%d_exact", year),
			Table:          view,
			Keywords:       append([]string{"เฉลี่ย", "average", "avg"}, yearKW...),
			IntentAffinity: []string{model.IntentSalesAnalysis},
			SQL:            fmt.Sprintf("SELECT AVG(total_num) AS avg_job_value FROM %s", view),
		}, exactReq{Year: year})

		add(model.TemplateMetadata{
			Name:           fmt.Sprintf("sales_max_job_%d_exact", year),
			Table:          view,
			Keywords:       append([]string{"งานใหญ่ที่สุด", "สูงสุด", "แพงที่สุด", "biggest"}, yearKW...),
			IntentAffinity: []string{model.IntentSalesAnalysis, model.IntentTopRanking},
			SQL:            fmt.Sprintf("SELECT job_no, customer_name, description, total_num FROM %s ORDER BY total_num DESC LIMIT 1", view),
		}, exactReq{Year: year})

		add(model.TemplateMetadata{
			Name:           fmt.Sprintf("sales_top_customers_%d_exact", year),
			Table:          view,
			Keywords:       append([]string{"อันดับ", "ลูกค้าสูงสุด", "top"}, yearKW...),
			IntentAffinity: []string{model.IntentTopRanking},
			SQL:            fmt.Sprintf("SELECT customer_name, SUM(total_num) AS total_revenue FROM %s GROUP BY customer_name ORDER BY total_revenue DESC LIMIT 10", view),
		}, exactReq{Year: year})

		add(model.TemplateMetadata{
			Name:           fmt.Sprintf("overhaul_total_%d_exact", year),
			Table:          view,
			Keywords:       append([]string{"overhaul", "โอเวอร์ฮอล", "ล้างใหญ่"}, yearKW...),
			IntentAffinity: []string{model.IntentOverhaulReport},
			SQL:            fmt.Sprintf("SELECT SUM(total_num) AS total_revenue, COUNT(job_no) AS job_count FROM %s WHERE job_type ILIKE '%%OVERHAUL%%'", view),
		}, exactReq{Year: year})

		for month := 1; month <= 12; month++ {
			add(model.TemplateMetadata{
				Name:  fmt.Sprintf("sales_monthly_%d_%02d_exact", year, month),
				Table: view,
				Keywords: append([]string{
					"รายได้", "ยอดขาย", "revenue",
					catalogMonths[month][0], catalogMonths[month][1],
				}, yearKW...),
				IntentAffinity: []string{model.IntentSalesAnalysis},
				SQL: fmt.Sprintf(
					"SELECT SUM(total_num) AS total_revenue FROM %s WHERE date BETWEEN '%d-%02d-01' AND '%d-%02d-31'",
					view, year, month, year, month),
			}, exactReq{Year: year, Month: month})
		}
	}

	return out, reqs
}
