package model_test

import (
	"encoding/json"
	"testing"

	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBody_Variants(t *testing.T) {
	t.Run("zero value is absent", func(t *testing.T) {
		var b model.Body
		assert.True(t, b.IsAbsent())
		assert.True(t, b.IsZero())
		assert.Nil(t, b.Bytes())
		assert.Equal(t, 0, b.Size())
	})

	t.Run("null is distinct from absent", func(t *testing.T) {
		b := model.NullBody()
		assert.True(t, b.IsNull())
		assert.False(t, b.IsAbsent())
		assert.Equal(t, []byte("null"), b.Bytes())
		assert.False(t, b.Equal(model.NoBody()))
	})

	t.Run("raw JSON is compacted", func(t *testing.T) {
		b, err := model.RawBody([]byte(" {\n  \"a\": [1, 2] } "))
		require.NoError(t, err)
		assert.Equal(t, model.BodyValue, b.Kind())
		assert.Equal(t, `{"a":[1,2]}`, string(b.Bytes()))
	})

	t.Run("raw null becomes null body", func(t *testing.T) {
		b, err := model.RawBody([]byte(" null "))
		require.NoError(t, err)
		assert.True(t, b.IsNull())
	})

	t.Run("invalid JSON is rejected", func(t *testing.T) {
		_, err := model.RawBody([]byte("{oops"))
		assert.Error(t, err)
		_, err = model.RawBody([]byte("   "))
		assert.Error(t, err)
	})

	t.Run("primitive values are valid bodies", func(t *testing.T) {
		for _, v := range []interface{}{"text", 42, true, []int{}} {
			b, err := model.BodyOf(v)
			require.NoError(t, err)
			assert.Equal(t, model.BodyValue, b.Kind())
		}
	})
}

func TestBody_JSONKeyPresence(t *testing.T) {
	type payload struct {
		Body model.Body `json:"body,omitzero"`
	}

	t.Run("missing key decodes as absent", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.True(t, p.Body.IsAbsent())
	})

	t.Run("explicit null decodes as null", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"body":null}`), &p))
		assert.True(t, p.Body.IsNull())
	})

	t.Run("absent body omits the key", func(t *testing.T) {
		data, err := json.Marshal(payload{})
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	})

	t.Run("null body keeps the key", func(t *testing.T) {
		data, err := json.Marshal(payload{Body: model.NullBody()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"body":null}`, string(data))
	})
}

func TestBody_CloneIsIndependent(t *testing.T) {
	original := model.MustBody(map[string]string{"k": "v"})
	clone := original.Clone()

	data := clone.Bytes()
	data[0] = 'X'

	assert.True(t, original.Equal(clone))
	assert.Equal(t, `{"k":"v"}`, string(original.Bytes()))
}

func TestBody_Decode(t *testing.T) {
	var out map[string]int
	require.NoError(t, model.MustBody(map[string]int{"n": 7}).Decode(&out))
	assert.Equal(t, 7, out["n"])

	assert.Error(t, model.NoBody().Decode(&out))
}
