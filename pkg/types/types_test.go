package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyMinorUnits(t *testing.T) {
	assert.Equal(t, int64(50000), NewMoney(500).MinorUnits())
	assert.Equal(t, int64(149950), NewMoney(1499.50).MinorUnits())
	assert.Equal(t, int64(0), Money{}.MinorUnits())
}

func TestMoneyArithmetic(t *testing.T) {
	total := NewMoney(500).Add(NewMoney(999.50))
	assert.Equal(t, "1499.5", total.String())

	revenue := NewMoney(500).Mul(3)
	assert.Equal(t, "1500", revenue.String())

	assert.True(t, Money{}.IsZero())
	assert.False(t, NewMoney(0.01).IsZero())
}

func TestMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("1234.56")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), m.MinorUnits())

	_, err = NewMoneyFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	data, err := NewMoney(499.99).MarshalJSON()
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, "499.99", decoded.String())
}

func TestJSONScanAndValue(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan([]byte(`{"a":1}`)))
	assert.Equal(t, `{"a":1}`, string(j))

	value, err := j.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), value)

	var empty JSON
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	nilValue, err := empty.Value()
	require.NoError(t, err)
	assert.Nil(t, nilValue)
}
