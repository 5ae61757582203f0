package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

func testSettings() model.ConversationSettings {
	return model.ConversationSettings{
		MaxTurns:         20,
		MergeLookback:    3,
		ShortQueryTokens: 3,
		TTL:              "30m",
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testSettings(), NewMemoryStore())
	require.NoError(t, err)
	return m
}

func recordTurn(t *testing.T, m *Manager, sessionID string, turn model.ConversationTurn, in ResolvedInput) {
	t.Helper()
	if turn.TurnID == "" {
		turn.TurnID = uuid.NewString()
	}
	require.NoError(t, m.Record(context.Background(), sessionID, turn, in))
}

func TestResolveLastYearReference(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	session := "s1"

	recordTurn(t, m, session, model.ConversationTurn{
		Question:         "รายได้ของ CLARION ปี 2567 เท่าไหร่",
		ResolvedQuestion: "รายได้ของ CLARION ปี 2567 เท่าไหร่",
		Intent:           model.IntentSalesAnalysis,
		Entities:         model.EntityBag{Years: []int{2024}, Customers: []string{"CLARION"}},
		ResultCount:      12,
	}, ResolvedInput{})

	in, err := m.Resolve(ctx, session, "แล้วปีที่แล้วล่ะ")
	require.NoError(t, err)

	assert.True(t, in.IsFollowUp)
	assert.Equal(t, "แล้วปี 2023 ล่ะ", in.ResolvedText)
	assert.Equal(t, "ปี 2023", in.References["ปีที่แล้ว"])
	assert.Equal(t, model.IntentSalesAnalysis, in.PreviousIntent)

	merged := m.MergeEntities(model.EntityBag{Years: []int{2023}}, in.History)
	assert.Equal(t, []int{2023}, merged.Years)
	assert.Equal(t, []string{"CLARION"}, merged.Customers)
}

func TestResolveFreshQuestionUnchanged(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	session := "s1"

	recordTurn(t, m, session, model.ConversationTurn{
		Question:    "แผนงานทีมช่างสัปดาห์นี้เป็นอย่างไร",
		Intent:      model.IntentWorkPlan,
		Entities:    model.EntityBag{},
		ResultCount: 4,
	}, ResolvedInput{})

	question := "แสดงแผนงานติดตั้งของทีมช่างประจำเดือนกันยายนหน่อย"
	resolved, refs := m.ResolveReferences(question, mustHistory(t, m, session))
	assert.Equal(t, question, resolved)
	assert.Empty(t, refs)

	in, err := m.Resolve(ctx, session, question)
	require.NoError(t, err)
	assert.Equal(t, question, in.ResolvedText)
	assert.False(t, in.IsFollowUp)
}

func TestResolveSameMonthAndPriorCustomer(t *testing.T) {
	m := newTestManager(t)
	session := "s1"

	recordTurn(t, m, session, model.ConversationTurn{
		Question:    "ยอดขายเดือนสิงหาคมของ SEAGATE",
		Intent:      model.IntentSalesAnalysis,
		Entities:    model.EntityBag{Months: []int{8}, Customers: []string{"SEAGATE"}},
		ResultCount: 3,
	}, ResolvedInput{})

	in, err := m.Resolve(context.Background(), session, "เดือนเดียวกันลูกค้าเดิมมีงานซ่อมไหม")
	require.NoError(t, err)

	assert.True(t, in.IsFollowUp)
	assert.Contains(t, in.ResolvedText, "เดือนสิงหาคม")
	assert.Contains(t, in.ResolvedText, "SEAGATE")
	assert.NotContains(t, in.ResolvedText, "ลูกค้าเดิม")
}

func TestResultReferenceRecordedNotSubstituted(t *testing.T) {
	m := newTestManager(t)
	session := "s1"

	recordTurn(t, m, session, model.ConversationTurn{
		Question:    "ลูกค้า top 5 ปี 2567",
		Intent:      model.IntentTopRanking,
		Entities:    model.EntityBag{Years: []int{2024}, TopN: 5},
		ResultCount: 5,
	}, ResolvedInput{})

	in, err := m.Resolve(context.Background(), session, "ขอรายละเอียดอันดับแรกหน่อย")
	require.NoError(t, err)

	assert.True(t, in.IsFollowUp)
	assert.Contains(t, in.ResolvedText, "อันดับแรก")
	val, ok := in.References["อันดับแรก"]
	require.True(t, ok)
	assert.Empty(t, val)
}

func TestIsFollowUpHeuristics(t *testing.T) {
	m := newTestManager(t)
	history := []model.ConversationTurn{{
		Intent:   model.IntentSalesAnalysis,
		Entities: model.EntityBag{Customers: []string{"CLARION"}},
	}}

	assert.False(t, m.IsFollowUp("รายได้ปี 2567", nil), "first turn is never a follow-up")
	assert.True(t, m.IsFollowUp("เทียบกับปี 2566 หน่อย", history), "comparison indicator")
	assert.True(t, m.IsFollowUp("ปี 2566", history), "short query")
	assert.False(t, m.IsFollowUp("ขอบคุณครับ", history), "terminator is not a follow-up")
	assert.True(t, m.IsFollowUp("ช่วงครึ่งปีหลังมียอดขายเป็นอย่างไรบ้างครับ", history),
		"work keyword with omitted customer inherits subject")
}

func TestMergeEntitiesCurrentWins(t *testing.T) {
	m := newTestManager(t)
	history := []model.ConversationTurn{
		{Entities: model.EntityBag{Years: []int{2022}, Customers: []string{"PTT"}}},
		{Entities: model.EntityBag{Years: []int{2023}, Customers: []string{"SEAGATE"}}},
	}

	merged := m.MergeEntities(model.EntityBag{Years: []int{2025}}, history)

	assert.Equal(t, []int{2025}, merged.Years, "current turn years are never overridden")
	assert.Equal(t, []string{"SEAGATE"}, merged.Customers, "most recent turn wins the backfill")
}

func TestMergeEntitiesLookbackWindow(t *testing.T) {
	m := newTestManager(t)
	history := []model.ConversationTurn{
		{Entities: model.EntityBag{Customers: []string{"TOO_OLD"}}},
		{Entities: model.EntityBag{Years: []int{2022}}},
		{Entities: model.EntityBag{Years: []int{2023}}},
		{Entities: model.EntityBag{Years: []int{2024}}},
	}

	merged := m.MergeEntities(model.EntityBag{}, history)

	assert.Empty(t, merged.Customers, "turns beyond the lookback window are ignored")
	assert.Equal(t, []int{2024}, merged.Years)
}

func TestRingBufferEvictsOldestTurns(t *testing.T) {
	settings := testSettings()
	settings.MaxTurns = 3
	m, err := NewManager(settings, NewMemoryStore())
	require.NoError(t, err)
	session := "s1"

	for i := 0; i < 5; i++ {
		recordTurn(t, m, session, model.ConversationTurn{
			Question:    "ยอดขาย",
			Intent:      model.IntentSalesAnalysis,
			Entities:    model.EntityBag{Years: []int{2020 + i}},
			ResultCount: 1,
		}, ResolvedInput{})
	}

	history := mustHistory(t, m, session)
	require.Len(t, history, 3)
	assert.Equal(t, []int{2022}, history[0].Entities.Years)
	assert.Equal(t, []int{2024}, history[2].Entities.Years)
	assert.Equal(t, 5, m.State(session).TurnCount, "turn count survives eviction")
}

func TestStateMachineTransitions(t *testing.T) {
	m := newTestManager(t)
	session := "s1"

	recordTurn(t, m, session, model.ConversationTurn{
		Intent: model.IntentGreeting, ResultCount: -1,
	}, ResolvedInput{})
	assert.Equal(t, model.StateGreeting, m.State(session).State)

	recordTurn(t, m, session, model.ConversationTurn{
		Intent: model.IntentSalesAnalysis, ResultCount: 8,
	}, ResolvedInput{})
	assert.Equal(t, model.StateQuerying, m.State(session).State)

	recordTurn(t, m, session, model.ConversationTurn{
		Intent: model.IntentSalesAnalysis, ResultCount: 8,
	}, ResolvedInput{IsFollowUp: true, FollowUpStyle: "comparison"})
	assert.Equal(t, model.StateComparing, m.State(session).State)

	recordTurn(t, m, session, model.ConversationTurn{
		Intent: model.IntentSalesAnalysis, ResultCount: 0,
	}, ResolvedInput{})
	assert.Equal(t, model.StateClarifying, m.State(session).State,
		"a query matching nothing always moves to clarifying")
}

func TestSessionTTLExpiry(t *testing.T) {
	settings := testSettings()
	settings.TTL = "10m"
	m, err := NewManager(settings, NewMemoryStore())
	require.NoError(t, err)
	session := "s1"

	recordTurn(t, m, session, model.ConversationTurn{
		Intent:      model.IntentSalesAnalysis,
		Entities:    model.EntityBag{Customers: []string{"CLARION"}},
		ResultCount: 2,
		Timestamp:   time.Now().Add(-time.Hour),
	}, ResolvedInput{})

	in, err := m.Resolve(context.Background(), session, "แล้วปีที่แล้วล่ะ")
	require.NoError(t, err)

	assert.Empty(t, in.History, "expired session leaks no history")
	assert.False(t, in.IsFollowUp)
	assert.Equal(t, 0, m.State(session).TurnCount)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newTestManager(t)

	recordTurn(t, m, "a", model.ConversationTurn{
		Intent:      model.IntentSalesAnalysis,
		Entities:    model.EntityBag{Customers: []string{"CLARION"}},
		ResultCount: 1,
	}, ResolvedInput{})

	in, err := m.Resolve(context.Background(), "b", "แล้วปีที่แล้วล่ะ")
	require.NoError(t, err)
	assert.Empty(t, in.History)
	assert.False(t, in.IsFollowUp)
}

func mustHistory(t *testing.T, m *Manager, sessionID string) []model.ConversationTurn {
	t.Helper()
	history, err := m.store.History(context.Background(), sessionID)
	require.NoError(t, err)
	return history
}
