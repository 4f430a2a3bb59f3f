package permissions

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Payload is the authorization service wire format.
type Payload struct {
	Master      bool            `json:"master"`
	IsGerencia  bool            `json:"isGerencia"`
	Permissions []PayloadRecord `json:"permissions"`
}

// PayloadRecord is one permission entry as sent by the authorization service.
// Every field is required; pointers distinguish absent from false.
type PayloadRecord struct {
	Indice    *int  `json:"indice" validate:"required,gte=0"`
	Invisivel *bool `json:"invisivel" validate:"required"`
	Incluir   *bool `json:"incluir" validate:"required"`
	Modificar *bool `json:"modificar" validate:"required"`
	Excluir   *bool `json:"excluir" validate:"required"`
}

var payloadValidator = validator.New()

// DecodePayload reads a payload and converts it to a Set. Only a broken JSON
// document is an error; malformed records are dropped.
func DecodePayload(r io.Reader) (Set, int, error) {
	var payload Payload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return Set{}, 0, fmt.Errorf("permissions: decode payload: %w", err)
	}
	set, dropped := SetFromPayload(payload)
	return set, dropped, nil
}

// SetFromPayload converts a payload into a Set and reports how many records
// were rejected at the boundary.
func SetFromPayload(payload Payload) (Set, int) {
	records := make([]Record, 0, len(payload.Permissions))
	dropped := 0
	for _, raw := range payload.Permissions {
		rec, ok := raw.record()
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	set := NewSet(payload.Master, payload.IsGerencia, records...)
	dropped += len(records) - len(set.Records)
	return set, dropped
}

// PayloadFromSet renders a Set in wire format ordered by menu index.
func PayloadFromSet(set Set) Payload {
	indexes := make([]int, 0, len(set.Records))
	for idx := range set.Records {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	out := Payload{Master: set.Master, IsGerencia: set.Management, Permissions: make([]PayloadRecord, 0, len(indexes))}
	for _, idx := range indexes {
		rec := set.Records[idx]
		out.Permissions = append(out.Permissions, PayloadRecord{
			Indice:    intPtr(rec.MenuIndex),
			Invisivel: boolPtr(rec.Hidden),
			Incluir:   boolPtr(rec.CanInsert),
			Modificar: boolPtr(rec.CanModify),
			Excluir:   boolPtr(rec.CanDelete),
		})
	}
	return out
}

func (p PayloadRecord) record() (Record, bool) {
	if err := payloadValidator.Struct(p); err != nil {
		return Record{}, false
	}
	return Record{
		MenuIndex: *p.Indice,
		Hidden:    *p.Invisivel,
		CanInsert: *p.Incluir,
		CanModify: *p.Modificar,
		CanDelete: *p.Excluir,
	}, true
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
