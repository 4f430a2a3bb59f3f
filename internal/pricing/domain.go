package pricing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTableNotFound indicates the price table does not exist.
	ErrTableNotFound = errors.New("pricing: price table not found")
	// ErrSimulationNotFound indicates the simulation expired or was closed.
	ErrSimulationNotFound = errors.New("pricing: simulation not found")
)

// Item is one product line of a price table.
type Item struct {
	ProductID  int64    `json:"product_id"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	GrossPrice float64  `json:"gross_price"`
	PromoPrice *float64 `json:"promo_price,omitempty"`
}

// PriceTable groups the items priced together.
type PriceTable struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Simulation is a live pricing session over one price table.
type Simulation struct {
	ID        uuid.UUID `json:"id"`
	TableID   int64     `json:"table_id"`
	Discounts Sequence  `json:"discounts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Line is the evaluated price of one item.
type Line struct {
	Item
	BasePrice    float64 `json:"base_price"`
	NetPrice     float64 `json:"net_price"`
	NetDisplay   string  `json:"net_display"`
	PromoApplied bool    `json:"promo_applied"`
}

// Evaluation is a simulation together with its evaluated lines.
type Evaluation struct {
	Simulation Simulation `json:"simulation"`
	Table      string     `json:"table"`
	Lines      []Line     `json:"lines"`
}

// QuoteRequest prices a single line outside any simulation.
type QuoteRequest struct {
	GrossPrice float64  `json:"gross_price" validate:"gte=0"`
	PromoPrice *float64 `json:"promo_price"`
	Discounts  []string `json:"discounts" validate:"max=8"`
}

// Quote is the priced result of a QuoteRequest.
type Quote struct {
	BasePrice  float64 `json:"base_price"`
	NetPrice   float64 `json:"net_price"`
	NetDisplay string  `json:"net_display"`
}
