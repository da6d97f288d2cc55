package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeCreate_AssignsID(t *testing.T) {
	img := &Image{URL: "https://cdn.test/a.jpg", Name: "a"}
	require.NoError(t, img.BeforeCreate(nil))
	assert.Len(t, img.ID, 36)

	// 已有 ID 不覆盖
	ev := &Event{ID: "fixed"}
	require.NoError(t, ev.BeforeCreate(nil))
	assert.Equal(t, "fixed", ev.ID)
}

func TestEvent_JSONFieldNames(t *testing.T) {
	ev := Event{
		ID:           "e1",
		Title:        "Trip",
		Description:  "Beach",
		Timestamp:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		MemoryLaneID: "l1",
		Images:       []Image{{ID: "i1", URL: "u", Name: "n", EventID: "e1"}},
	}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "l1", m["memoryLaneId"])
	assert.Equal(t, "2024-06-01T12:00:00Z", m["timestamp"])
	assert.Contains(t, m, "createdAt")

	images := m["images"].([]interface{})
	assert.Equal(t, "e1", images[0].(map[string]interface{})["eventId"])
}

func TestUser_OmitsMissingLane(t *testing.T) {
	raw, err := json.Marshal(User{ID: "u1", Name: "Ann", Email: "ann@test.dev"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "memoryLane")
}
