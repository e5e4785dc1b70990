package consolelog

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Merge(t *testing.T) {
	run := NewReport()
	assert.True(t, run.Empty())

	run.Merge(&Report{FailedCount: 1, SpecResults: []SpecResult{failure(&Entry{Level: LevelSevere, Message: "a"})}})
	run.Merge(nil)
	run.Merge(&Report{FailedCount: 2, SpecResults: []SpecResult{
		failure(&Entry{Level: LevelWarning, Message: "b"}),
		failure(&Entry{Level: LevelSevere, Message: "c"}),
	}})

	assert.Equal(t, 3, run.FailedCount)
	assert.True(t, run.Failed())
	require.Len(t, run.SpecResults, 3)
	assert.Equal(t, "c", run.SpecResults[2].Assertions[0].ErrorMsg)
}

func TestReport_Copy(t *testing.T) {
	r := NewReport()
	r.Merge(&Report{FailedCount: 1, SpecResults: []SpecResult{failure(&Entry{Level: LevelSevere, Message: "a"})}})

	cp := r.Copy()
	cp.SpecResults[0].Assertions[0].ErrorMsg = "changed"
	cp.FailedCount = 10

	assert.Equal(t, "a", r.SpecResults[0].Assertions[0].ErrorMsg)
	assert.Equal(t, 1, r.FailedCount)
}

func TestReport_JSONShape(t *testing.T) {
	r := NewReport()
	r.Merge(&Report{FailedCount: 1, SpecResults: []SpecResult{failure(&Entry{Level: LevelWarning, Message: "w"})}})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"failedCount":1,"specResults":[{"description":"WARNING","passed":false,"assertions":[{"passed":false,"errorMsg":"w"}]}]}`, string(data))

	data, err = json.Marshal(NewReport())
	require.NoError(t, err)
	assert.JSONEq(t, `{"failedCount":0,"specResults":[]}`, string(data))
}
