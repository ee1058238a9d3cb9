package expr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{"n": Number(1.5), "s": String("old"), "b": Bool(true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1.5,"s":"old","b":true}`, string(data))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`"new"`), &v))
	assert.Equal(t, String("new"), v)

	require.Error(t, json.Unmarshal([]byte(`[1]`), &v))
}

func TestValueTruthy(t *testing.T) {
	assert.True(t, Number(-1).Truthy())
	assert.False(t, Number(0).Truthy())
	assert.True(t, String("x").Truthy())
	assert.False(t, String("").Truthy())
	assert.False(t, Bool(false).Truthy())
}

func TestFromInterface(t *testing.T) {
	v, err := FromInterface(int64(3))
	require.NoError(t, err)
	assert.Equal(t, Number(3), v)

	v, err = FromInterface(json.Number("2.5"))
	require.NoError(t, err)
	assert.Equal(t, Number(2.5), v)

	_, err = FromInterface([]int{1})
	require.Error(t, err)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "43391.07", Number(43391.07).String())
	assert.Equal(t, `"old"`, String("old").String())
	assert.Equal(t, "false", Bool(false).String())
}
