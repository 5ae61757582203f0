package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

func testConfig() model.ClassifierConfig {
	return model.ClassifierConfig{
		StrongWeight:        10,
		MediumWeight:        5,
		WeakWeight:          2,
		PatternWeight:       8,
		StrongBoundaryBonus: 2,
		MediumBoundaryBonus: 1,
		NegativePenalty:     3,
		ContinuityBonus:     3,
		ConfidenceDivisor:   30,
		SeparationWeight:    0.3,
	}
}

func TestClassifyRevenueQuestion(t *testing.T) {
	c := New(testConfig())
	entities := model.EntityBag{Customers: []string{"CLARION"}, Years: []int{2024}}

	result := c.Classify("รายได้ของ CLARION ปี 2567 เท่าไหร่", "", entities)

	assert.Equal(t, model.IntentSalesAnalysis, result.Intent)
	assert.Greater(t, result.Confidence, 0.6)
	assert.Equal(t, entities, result.Entities)
	assert.Greater(t, result.RawScores[model.IntentSalesAnalysis], result.RawScores[model.IntentCustomerHistory])
}

func TestClassifyDeterministic(t *testing.T) {
	c := New(testConfig())
	text := "ยอดขายปี 2567 กับงานอะไหล่ EKAC360"
	entities := model.EntityBag{Years: []int{2024}, Products: []string{"EKAC360"}}

	first := c.Classify(text, model.IntentSalesAnalysis, entities)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(text, model.IntentSalesAnalysis, entities))
	}
}

func TestClassifyUnknownWhenNothingScores(t *testing.T) {
	c := New(testConfig())

	result := c.Classify("foobar baz qux", "", model.EntityBag{})

	assert.Equal(t, model.IntentUnknown, result.Intent)
	assert.Zero(t, result.Confidence)
}

func TestClassifyScoresNeverNegative(t *testing.T) {
	c := New(testConfig())

	// Hits only the greeting rule's negative keywords.
	result := c.Classify("รายได้", "", model.EntityBag{})

	for intent, score := range result.RawScores {
		assert.GreaterOrEqual(t, score, 0.0, "intent %s", intent)
	}
}

func TestClassifyContinuityBonus(t *testing.T) {
	c := New(testConfig())
	text := "แล้วเดือนถัดไปล่ะ"

	without := c.Classify(text, "", model.EntityBag{})
	with := c.Classify(text, model.IntentWorkPlan, model.EntityBag{})

	assert.Equal(t, without.RawScores[model.IntentWorkPlan]+3, with.RawScores[model.IntentWorkPlan])
}

func TestClassifyOverhaulOverride(t *testing.T) {
	c := New(testConfig())

	result := c.Classify("ขอสรุปรายงาน overhaul ปี 2567", "", model.EntityBag{Years: []int{2024}})

	assert.Equal(t, model.IntentOverhaulReport, result.Intent)
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
}

func TestClassifyGreetingOverride(t *testing.T) {
	c := New(testConfig())

	result := c.Classify("สวัสดีครับ", "", model.EntityBag{})

	assert.Equal(t, model.IntentGreeting, result.Intent)
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
}

func TestClassifySpareParts(t *testing.T) {
	c := New(testConfig())
	entities := model.EntityBag{Products: []string{"EKAC360"}}

	result := c.Classify("อะไหล่ EKAC360 เหลือในสต็อกกี่ชิ้น", "", entities)

	assert.Equal(t, model.IntentSpareParts, result.Intent)
	assert.Greater(t, result.Confidence, 0.6)
}

func TestConfidenceMonotonicInSeparation(t *testing.T) {
	c := New(testConfig())

	best := 20.0
	prev := -1.0
	for second := best; second >= 0; second -= 2 {
		conf := c.confidence(best, second)
		require.GreaterOrEqual(t, conf, prev, "second=%v", second)
		prev = conf
	}
}

func TestConfidenceTieHasNoSeparationBonus(t *testing.T) {
	c := New(testConfig())

	tied := c.confidence(15, 15)
	clear := c.confidence(15, 5)

	assert.Less(t, tied, clear)
	assert.InDelta(t, 0.5, tied, 1e-9)
}
