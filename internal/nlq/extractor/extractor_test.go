package extractor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

func testConfig() model.ExtractorConfig {
	return model.ExtractorConfig{CurrentYear: 2025, MinYear: 2020, MaxYear: 2030}
}

func TestExtractYearsBuddhistEra(t *testing.T) {
	e := New(testConfig())
	for be := 2565; be <= 2568; be++ {
		text := fmt.Sprintf("ปี %d", be)
		bag := e.Extract(text)
		require.Equal(t, []int{be - 543}, bag.Years, "text=%s", text)
	}
}

func TestExtractYears(t *testing.T) {
	e := New(testConfig())

	tests := []struct {
		name string
		text string
		want []int
	}{
		{"gregorian", "revenue in 2024", []int{2024}},
		{"be range expands", "ยอดขายปี 2565-2568", []int{2022, 2023, 2024, 2025}},
		{"gregorian range", "2023-2025 comparison", []int{2023, 2024, 2025}},
		{"years back anchored at current year", "รายได้ย้อนหลัง 3 ปี", []int{2023, 2024, 2025}},
		{"out of range discarded", "ก่อตั้งปี 2540", nil},
		{"mixed duplicate", "ปี 2567 กับ 2024", []int{2024}},
		{"no year", "ยอดขายทั้งหมด", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).Years)
		})
	}
}

func TestExtractMonths(t *testing.T) {
	e := New(testConfig())

	tests := []struct {
		name string
		text string
		want []int
	}{
		{"thai full name", "ยอดขายเดือนสิงหาคม", []int{8}},
		{"thai abbreviation", "งานเดือน ม.ค.", []int{1}},
		{"english name", "work in September", []int{9}},
		{"thai range", "สิงหาคม-กันยายน", []int{8, 9}},
		{"thai range with thueng", "มกราคม ถึง มีนาคม", []int{1, 2, 3}},
		{"wraparound range", "พฤศจิกายน-มกราคม", []int{1, 11, 12}},
		{"english short not inside word", "the market report", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).Months)
		})
	}
}

func TestExtractCustomers(t *testing.T) {
	e := New(testConfig())

	t.Run("known alias", func(t *testing.T) {
		bag := e.Extract("รายได้ของ CLARION ปี 2567 เท่าไหร่")
		assert.Equal(t, []string{"CLARION"}, bag.Customers)
		assert.Equal(t, []int{2024}, bag.Years)
	})

	t.Run("thai alias maps to canonical", func(t *testing.T) {
		bag := e.Extract("โตโยต้าเคยซื้ออะไหล่อะไรบ้าง")
		assert.Equal(t, []string{"TOYOTA"}, bag.Customers)
	})

	t.Run("customer count question does not become a filter", func(t *testing.T) {
		bag := e.Extract("มีลูกค้ากี่ราย")
		assert.Empty(t, bag.Customers)
	})

	t.Run("designator anchored extraction stops at action verb", func(t *testing.T) {
		bag := e.Extract("บริษัทสยามเทคมีประวัติงานอะไรบ้าง")
		require.Len(t, bag.Customers, 1)
		assert.Equal(t, "สยามเทค", bag.Customers[0])
	})

	t.Run("no indicator no structural extraction", func(t *testing.T) {
		bag := e.Extract("งานซ่อมเดือนนี้")
		assert.Empty(t, bag.Customers)
	})
}

func TestExtractProductsAndBrands(t *testing.T) {
	e := New(testConfig())

	bag := e.Extract("อะไหล่ EKAC360 ของ TRANE ราคาเท่าไหร่")
	assert.Equal(t, []string{"EKAC360"}, bag.Products)
	assert.Equal(t, []string{"TRANE"}, bag.Brands)

	bag = e.Extract("stock code 17A12345B for รุ่น RCUG120AHYZ1")
	assert.Contains(t, bag.Products, "17A12345B")
	assert.Contains(t, bag.Products, "RCUG120AHYZ1")
}

func TestExtractAmountsAndTopN(t *testing.T) {
	e := New(testConfig())

	bag := e.Extract("งานมูลค่าเกิน 1,500,000 บาท")
	assert.Equal(t, []float64{1500000}, bag.Amounts)

	bag = e.Extract("ยอดขายเกิน 2 ล้านบาท")
	assert.Equal(t, []float64{2000000}, bag.Amounts)

	bag = e.Extract("ลูกค้า top 5 ปีนี้")
	assert.Equal(t, 5, bag.TopN)

	bag = e.Extract("ลูกค้า 10 อันดับแรก")
	assert.Equal(t, 10, bag.TopN)
}

func TestExtractDates(t *testing.T) {
	e := New(testConfig())

	bag := e.Extract("งานวันที่ 15/08/2567")
	assert.Equal(t, []string{"2024-08-15"}, bag.Dates)

	bag = e.Extract("งานวันที่ 15/8/2024")
	assert.Equal(t, []string{"2024-08-15"}, bag.Dates)
}

func TestExtractDeterministic(t *testing.T) {
	e := New(testConfig())
	text := "รายได้ของ CLARION กับ SEAGATE เดือนสิงหาคม-กันยายน ปี 2565-2567 overhaul TRANE EKAC360"
	first := e.Extract(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Extract(text))
	}
}
