package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSlot reports a slot outside 0..MaxDiscountSlots-1.
var ErrInvalidSlot = errors.New("pricing: invalid discount slot")

// Sequence is the ordered set of discount fields of one pricing session.
// Slots hold raw user input; interpretation is left to NetPrice.
type Sequence struct {
	slots [MaxDiscountSlots]string
}

// NewSequence fills slots from values in order. Values past the last slot
// are ignored.
func NewSequence(values ...string) Sequence {
	var s Sequence
	copy(s.slots[:], values)
	return s
}

// Set stores raw input in slot.
func (s *Sequence) Set(slot int, value string) error {
	if slot < 0 || slot >= MaxDiscountSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	s.slots[slot] = value
	return nil
}

// Clear empties slot.
func (s *Sequence) Clear(slot int) error {
	return s.Set(slot, "")
}

// Values returns the slots up to the last non-empty one. Interior blanks are
// kept so positions stay stable.
func (s Sequence) Values() []string {
	n := s.Len()
	out := make([]string, n)
	copy(out, s.slots[:n])
	return out
}

// Len is the position after the last non-empty slot.
func (s Sequence) Len() int {
	for i := MaxDiscountSlots - 1; i >= 0; i-- {
		if s.slots[i] != "" {
			return i + 1
		}
	}
	return 0
}

// MarshalJSON encodes the trimmed slot list.
func (s Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes a slot list.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if len(values) > MaxDiscountSlots {
		return fmt.Errorf("%w: %d discounts exceed %d slots", ErrInvalidSlot, len(values), MaxDiscountSlots)
	}
	*s = NewSequence(values...)
	return nil
}
