package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayledger/dayledger/internal/domain"
)

var decodeNow = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

func TestDecode_CorruptRollingTotalKeepsHistory(t *testing.T) {
	raw := `{
		"currentDayStart": "2026-05-04T07:00:00Z",
		"objectiveCatalog": ["a", "b"],
		"rollingTotal": "oops",
		"history": [
			{"id": "d1", "dayStart": "2026-05-02T07:00:00Z", "completedCount": 3, "adjustments": [], "activityApplications": [], "net": 3},
			{"id": "d2", "dayStart": "2026-05-03T07:00:00Z", "completedCount": 1, "adjustments": [{"amount": 2, "reason": "x"}], "activityApplications": [], "net": -1}
		]
	}`

	doc, defaulted, err := Decode([]byte(raw), decodeNow)
	require.NoError(t, err)

	assert.Zero(t, doc.RollingTotal)
	assert.Contains(t, defaulted, FieldRollingTotal)
	assert.NotContains(t, defaulted, FieldHistory)
	require.Len(t, doc.History, 2)
	assert.Equal(t, "d1", doc.History[0].ID)
	assert.Equal(t, -1.0, doc.History[1].Net)
	assert.Equal(t, []domain.Adjustment{{Amount: 2, Reason: "x"}}, doc.History[1].Adjustments)
	assert.Equal(t, []string{"a", "b"}, doc.ObjectiveCatalog)
}

func TestDecode_NonArraysBecomeDefaults(t *testing.T) {
	raw := `{
		"objectiveCatalog": "not-a-list",
		"completedToday": {"0": true},
		"activityCatalog": 7,
		"activityApplicationsToday": null,
		"adjustmentsToday": "x",
		"history": false
	}`

	doc, defaulted, err := Decode([]byte(raw), decodeNow)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultObjectives(), doc.ObjectiveCatalog)
	assert.Equal(t, domain.DefaultActivities(), doc.ActivityCatalog)
	assert.Empty(t, doc.CompletedToday)
	assert.Empty(t, doc.ActivityApplicationsToday)
	assert.Empty(t, doc.AdjustmentsToday)
	assert.Empty(t, doc.History)
	assert.NotNil(t, doc.History)
	assert.Equal(t, decodeNow, doc.CurrentDayStart)
	assert.ElementsMatch(t, []string{
		FieldCurrentDayStart, FieldObjectiveCatalog, FieldCompletedToday, FieldActivityCatalog,
		FieldApplications, FieldAdjustments, FieldRollingTotal, FieldHistory,
	}, defaulted)
}

func TestDecode_PrunesCompletedToday(t *testing.T) {
	raw := `{
		"currentDayStart": "2026-05-04T07:00:00Z",
		"objectiveCatalog": ["a", "b", "c"],
		"completedToday": [2, 2, 0, 9, -1, "1", 1.5]
	}`

	doc, defaulted, err := Decode([]byte(raw), decodeNow)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, doc.CompletedToday)
	assert.Contains(t, defaulted, FieldCompletedToday)
}

func TestDecode_DropsMalformedElementsOnly(t *testing.T) {
	raw := `{
		"activityCatalog": [
			{"label": "Run", "points": 3},
			{"label": "", "points": 2},
			{"label": "Too much", "points": 6},
			{"label": "Rounded", "points": 2.4},
			"garbage"
		],
		"adjustmentsToday": [{"amount": 1, "reason": "ok"}, {"amount": "two"}],
		"activityApplicationsToday": [
			{"catalogIndex": 0, "label": "Run", "points": 3, "appliedAt": "2026-05-04T07:10:00Z"},
			{"catalogIndex": 0, "points": 3}
		]
	}`

	doc, defaulted, err := Decode([]byte(raw), decodeNow)
	require.NoError(t, err)

	assert.Equal(t, []domain.Activity{{Label: "Run", Points: 3}, {Label: "Rounded", Points: 2}}, doc.ActivityCatalog)
	assert.Equal(t, []domain.Adjustment{{Amount: 1, Reason: "ok"}}, doc.AdjustmentsToday)
	require.Len(t, doc.ActivityApplicationsToday, 1)
	assert.Equal(t, "Run", doc.ActivityApplicationsToday[0].Label)
	assert.Contains(t, defaulted, FieldActivityCatalog)
	assert.Contains(t, defaulted, FieldAdjustments)
	assert.Contains(t, defaulted, FieldApplications)
}

func TestDecode_EmptyObjectiveCatalogFallsBackToSeed(t *testing.T) {
	doc, defaulted, err := Decode([]byte(`{"objectiveCatalog": ["  ", ""]}`), decodeNow)
	require.NoError(t, err)
	assert.Len(t, doc.ObjectiveCatalog, domain.DefaultObjectiveCount)
	assert.Contains(t, defaulted, FieldObjectiveCatalog)
}

func TestDecode_EmptyActivityCatalogIsKept(t *testing.T) {
	doc, _, err := Decode([]byte(`{"activityCatalog": []}`), decodeNow)
	require.NoError(t, err)
	assert.Empty(t, doc.ActivityCatalog)
}

func TestDecode_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"", "{", "[]", "null", "42"} {
		_, _, err := Decode([]byte(raw), decodeNow)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestEncode_WritesEmptyArrays(t *testing.T) {
	raw, err := Encode(&domain.Document{CurrentDayStart: decodeNow})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"history":[]`)
	assert.Contains(t, string(raw), `"completedToday":[]`)
	assert.NotContains(t, string(raw), "null")
}
