package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableID_Unmarshal(t *testing.T) {
	cases := []struct {
		body string
		want *int64
	}{
		{`{"parent_id": 5}`, ptr(5)},
		{`{"parent_id": "12"}`, ptr(12)},
		{`{"parent_id": null}`, nil},
		{`{"parent_id": "root"}`, nil},
		{`{}`, nil},
	}

	for _, tc := range cases {
		var req MoveCategoryRequest
		require.NoError(t, json.Unmarshal([]byte(tc.body), &req), tc.body)
		assert.Equal(t, tc.want, req.ParentID.Value, tc.body)
	}
}

func TestNullableID_RejectsGarbage(t *testing.T) {
	for _, body := range []string{`{"parent_id": "abc"}`, `{"parent_id": 0}`, `{"parent_id": 1.5}`, `{"parent_id": true}`} {
		var req MoveCategoryRequest
		assert.Error(t, json.Unmarshal([]byte(body), &req), body)
	}
}

func TestNullableID_Marshal(t *testing.T) {
	data, err := json.Marshal(NullableID{Value: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, "3", string(data))

	data, err = json.Marshal(NullableID{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func ptr(v int64) *int64 { return &v }
