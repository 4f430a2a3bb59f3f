package permissions

import "errors"

var (
	// ErrNotFound indicates no permission set is stored for the actor.
	ErrNotFound = errors.New("permissions: not found")
	// ErrUpstream indicates the authorization service answered with an unexpected status.
	ErrUpstream = errors.New("permissions: upstream failure")
	// ErrInvalidSet indicates a permission set rejected by storage constraints.
	ErrInvalidSet = errors.New("permissions: invalid set")
	// ErrInvalidActor indicates an empty or malformed actor identifier.
	ErrInvalidActor = errors.New("permissions: invalid actor")
)

// Record is the permission row for one menu index.
type Record struct {
	MenuIndex int
	Hidden    bool
	CanInsert bool
	CanModify bool
	CanDelete bool
}

// Set is the full permission matrix loaded for an actor.
type Set struct {
	Master     bool
	Management bool
	Records    map[int]Record
}

// NewSet builds a Set from records, keeping the first record per menu index.
func NewSet(master, management bool, records ...Record) Set {
	set := Set{Master: master, Management: management, Records: make(map[int]Record, len(records))}
	for _, rec := range records {
		if _, dup := set.Records[rec.MenuIndex]; dup {
			continue
		}
		set.Records[rec.MenuIndex] = rec
	}
	return set
}

// Capability names one of the four gated actions.
type Capability int

const (
	// View gates visibility of a menu entry.
	View Capability = iota
	// Insert gates record creation.
	Insert
	// Modify gates record updates.
	Modify
	// Delete gates record removal.
	Delete
)

func (c Capability) String() string {
	switch c {
	case View:
		return "view"
	case Insert:
		return "insert"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Menu indexes used by the commercial surfaces of this service.
const (
	MenuPriceTables  = 12
	MenuSalesOrders  = 20
	MenuPermissions  = 90
	MenuPricingQuote = 13
)
