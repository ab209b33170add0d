package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONPreservesKeyOrder(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"zeta":1,"alpha":{"y":true,"b":null},"mid":[3,"x"]}`))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok, "expected *Object, got %T", v)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

	inner, _ := obj.Get("alpha")
	assert.Equal(t, []string{"y", "b"}, inner.(*Object).Keys())

	out, err := Encode(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"y":true,"b":null},"mid":[3,"x"]}`, string(out))
}

func TestDecodeJSONKeepsNumberLiterals(t *testing.T) {
	v, err := DecodeJSON([]byte(`[1.50, 12345678901234567890, -0]`))
	require.NoError(t, err)

	arr := v.([]any)
	require.Len(t, arr, 3)
	assert.Equal(t, json.Number("1.50"), arr[0])

	out, err := Encode(arr)
	require.NoError(t, err)
	assert.Equal(t, `[1.50,12345678901234567890,-0]`, string(out))
}

func TestDecodeJSONDuplicateKeyKeepsFirstPosition(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"a":1,"b":2,"a":3}`))
	require.NoError(t, err)

	out, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":2}`, string(out))
}

func TestDecodeJSONRejectsMalformed(t *testing.T) {
	for _, in := range []string{`{not valid`, `[1,2`, `[1] [2]`, ``, `{"a":}`} {
		_, err := DecodeJSON([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	obj := NewObject(1)
	obj.Set("cmd", `cmd.exe /c "a & b" > out`)

	out, err := Encode(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"cmd":"cmd.exe /c \"a & b\" > out"}`, string(out))
}
