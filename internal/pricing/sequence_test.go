package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceKeepsPositions(t *testing.T) {
	var seq Sequence
	assert.Equal(t, 0, seq.Len())
	assert.Empty(t, seq.Values())

	require.NoError(t, seq.Set(2, "10"))
	require.NoError(t, seq.Set(0, "5"))
	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, []string{"5", "", "10"}, seq.Values())

	require.NoError(t, seq.Clear(2))
	assert.Equal(t, []string{"5"}, seq.Values())
}

func TestSequenceRejectsOutOfRangeSlots(t *testing.T) {
	var seq Sequence
	require.ErrorIs(t, seq.Set(-1, "10"), ErrInvalidSlot)
	require.ErrorIs(t, seq.Set(MaxDiscountSlots, "10"), ErrInvalidSlot)
	require.NoError(t, seq.Set(MaxDiscountSlots-1, "10"))
}

func TestSequenceFeedsNetPrice(t *testing.T) {
	seq := NewSequence("10", "", "abc", "10")
	assert.InDelta(t, 81, NetPrice(100, nil, seq.Values()), 1e-9)
}

func TestSequenceJSON(t *testing.T) {
	seq := NewSequence("", "12,5")
	raw, err := json.Marshal(seq)
	require.NoError(t, err)
	assert.JSONEq(t, `["","12,5"]`, string(raw))

	var back Sequence
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, seq, back)

	err = json.Unmarshal([]byte(`["1","2","3","4","5","6","7","8","9"]`), &back)
	require.ErrorIs(t, err, ErrInvalidSlot)
}

func TestFormatterLocales(t *testing.T) {
	br := NewFormatter("pt-BR")
	assert.Equal(t, "1.234,50", br.Format(1234.5))
	assert.Equal(t, "87,50", br.Format(87.5))
	assert.Equal(t, "0,33", br.Format(1.0/3))

	us := NewFormatter("en-US")
	assert.Equal(t, "1,234.50", us.Format(1234.5))

	fallback := NewFormatter("not a locale!")
	assert.Equal(t, "81,00", fallback.Format(81))
}
