package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionUnmarshalJSON_CorrectFieldByType(t *testing.T) {
	t.Run("multiple_choice correct is a string", func(t *testing.T) {
		var q Question
		err := json.Unmarshal([]byte(`{
			"id": "q1",
			"type": "multiple_choice",
			"domain": "1",
			"question": "Pick one.",
			"options": [{"key": "a", "text": "A"}, {"key": "b", "text": "B"}],
			"correct": "b"
		}`), &q)
		require.NoError(t, err)
		assert.Equal(t, "b", q.Correct)
		assert.Empty(t, q.CorrectSet)
	})

	t.Run("multiple_select correct is an array", func(t *testing.T) {
		var q Question
		err := json.Unmarshal([]byte(`{
			"id": "q2",
			"type": "multiple_select",
			"domain": "1",
			"question": "Pick two.",
			"options": [{"key": "a", "text": "A"}, {"key": "b", "text": "B"}, {"key": "c", "text": "C"}],
			"correct": ["a", "c"],
			"select_count": 2
		}`), &q)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, q.CorrectSet)
		assert.Empty(t, q.Correct)
	})

	t.Run("shape mismatch is an error", func(t *testing.T) {
		var q Question
		err := json.Unmarshal([]byte(`{
			"id": "q3",
			"type": "multiple_choice",
			"question": "Pick one.",
			"correct": ["a"]
		}`), &q)
		assert.Error(t, err)
	})
}

func TestQuestionUnmarshalJSON_ItemsFieldByType(t *testing.T) {
	t.Run("ordering items are strings", func(t *testing.T) {
		var q Question
		err := json.Unmarshal([]byte(`{
			"id": "q4",
			"type": "ordering",
			"domain": "2",
			"question": "Order the phases.",
			"items": ["Plan", "Execute", "Close"],
			"correct_order": ["Plan", "Execute", "Close"]
		}`), &q)
		require.NoError(t, err)
		assert.Equal(t, []string{"Plan", "Execute", "Close"}, q.Items)
		assert.Empty(t, q.DragItems)
	})

	t.Run("drag_drop items are objects", func(t *testing.T) {
		var q Question
		err := json.Unmarshal([]byte(`{
			"id": "q5",
			"type": "drag_drop",
			"domain": "3",
			"question": "Categorize.",
			"categories": ["Risk", "Issue"],
			"items": [
				{"text": "Might happen", "correct_category": "Risk"},
				{"text": "Is happening", "correct_category": "Issue"}
			]
		}`), &q)
		require.NoError(t, err)
		require.Len(t, q.DragItems, 2)
		assert.Equal(t, "Risk", q.DragItems[0].CorrectCategory)
		assert.Empty(t, q.Items)
	})
}

func TestQuestionJSON_RoundTrip(t *testing.T) {
	questions := []Question{
		{
			ID:      "q1",
			Type:    MultipleChoice,
			Domain:  "1",
			Prompt:  "Pick one.",
			Options: []Option{{Key: "a", Text: "A"}, {Key: "b", Text: "B"}},
			Correct: "a",
		},
		{
			ID:           "q2",
			Type:         Ordering,
			Domain:       "2",
			Prompt:       "Order.",
			Items:        []string{"B", "A"},
			CorrectOrder: []string{"A", "B"},
		},
		{
			ID:         "q3",
			Type:       DragDrop,
			Domain:     "3",
			Prompt:     "Categorize.",
			Categories: []string{"X", "Y"},
			DragItems:  []DragItem{{Text: "one", CorrectCategory: "X"}},
		},
	}

	for _, original := range questions {
		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Question
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, original, decoded)
	}
}

func TestSessionQuestionLookup(t *testing.T) {
	s := Session{Questions: []Question{{ID: "a"}, {ID: "b"}}}

	assert.NotNil(t, s.Question("b"))
	assert.Equal(t, "b", s.Question("b").ID)
	assert.Nil(t, s.Question("missing"))
}
