package messages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Kind(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{raw: ``, want: KindAbsent},
		{raw: `null`, want: KindNull},
		{raw: ` true`, want: KindBool},
		{raw: `false`, want: KindBool},
		{raw: `-12.5`, want: KindNumber},
		{raw: `"hi"`, want: KindString},
		{raw: `[1,"a"]`, want: KindArray},
		{raw: `{"a":1}`, want: KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, NewValue(json.RawMessage(tt.raw)).Kind())
		})
	}
}

func TestValue_accessors(t *testing.T) {
	arr, ok := NewValue(json.RawMessage(`[1,"a",null]`)).AsArray()
	require.True(t, ok)
	require.Len(t, arr, 3)
	n, ok := arr[0].AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 1.0, n)
	s, ok := arr[1].AsString()
	assert.True(t, ok)
	assert.Equal(t, "a", s)
	assert.Equal(t, KindNull, arr[2].Kind())

	_, ok = NewValue(json.RawMessage(`"1"`)).AsNumber()
	assert.False(t, ok)
	b, ok := NewValue(json.RawMessage(`true`)).AsBool()
	assert.True(t, ok)
	assert.True(t, b)
}

func TestValue_JSON(t *testing.T) {
	var holder struct {
		Payload Value `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"payload":{"x":[1,2]}}`), &holder))
	assert.Equal(t, KindObject, holder.Payload.Kind())
	assert.Equal(t, `{"x":[1,2]}`, holder.Payload.Text())

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":{"x":[1,2]}}`, string(out))

	out, err = json.Marshal(struct{ V Value }{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"V":null}`, string(out))

	var v Value
	assert.Error(t, v.Decode(&struct{}{}))
}
