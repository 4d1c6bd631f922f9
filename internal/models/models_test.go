package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlowSnapshotGetInt(t *testing.T) {
	s := &FlowSnapshot{TempData: map[string]interface{}{
		"int":    2,
		"int64":  int64(3),
		"float":  float64(4),
		"string": "5",
	}}

	assert.Equal(t, 2, s.GetInt("int"))
	assert.Equal(t, 3, s.GetInt("int64"))
	assert.Equal(t, 4, s.GetInt("float"))
	assert.Equal(t, 0, s.GetInt("string"))
	assert.Equal(t, 0, s.GetInt("missing"))

	empty := &FlowSnapshot{}
	assert.Equal(t, 0, empty.GetInt("anything"))
}

func TestFlowSnapshotGetString(t *testing.T) {
	s := &FlowSnapshot{TempData: map[string]interface{}{
		"name": "Ravi",
		"num":  42,
	}}

	assert.Equal(t, "Ravi", s.GetString("name"))
	assert.Equal(t, "", s.GetString("num"))
	assert.Equal(t, "", s.GetString("missing"))
}

func TestFlowSnapshotGetTime(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	s := &FlowSnapshot{TempData: map[string]interface{}{
		"native":  now,
		"rfc":     now.Format(time.RFC3339),
		"date":    "2025-08-20",
		"garbage": "not-a-date",
	}}

	assert.Equal(t, now, s.GetTime("native"))
	assert.True(t, s.GetTime("rfc").Equal(now))
	assert.Equal(t, now, s.GetTime("date"))
	assert.True(t, s.GetTime("garbage").IsZero())
	assert.True(t, s.GetTime("missing").IsZero())
}

func TestFlowSnapshotSet(t *testing.T) {
	s := &FlowSnapshot{}
	s.Set("adults", 2)
	assert.Equal(t, 2, s.GetInt("adults"))
}
