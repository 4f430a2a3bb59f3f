package permissions

// Evaluator answers capability queries against a loaded Set.
// The zero value is Unloaded and denies everything.
type Evaluator struct {
	set *Set
}

// NewEvaluator returns an Evaluator in the Loaded state.
func NewEvaluator(set Set) Evaluator {
	return Evaluator{set: &set}
}

// Loaded reports whether a permission set is present.
func (e Evaluator) Loaded() bool {
	return e.set != nil
}

// IsMaster reports whether the actor bypasses every check.
func (e Evaluator) IsMaster() bool {
	return e.set != nil && e.set.Master
}

// IsManagement exposes the informational management flag.
func (e Evaluator) IsManagement() bool {
	return e.set != nil && e.set.Management
}

// CanAccess requires an existing record that is not hidden.
func (e Evaluator) CanAccess(menuIndex int) bool {
	if e.IsMaster() {
		return true
	}
	rec, ok := e.record(menuIndex)
	return ok && !rec.Hidden
}

// CanInsert passes the insert flag through; Hidden is not consulted.
func (e Evaluator) CanInsert(menuIndex int) bool {
	if e.IsMaster() {
		return true
	}
	rec, ok := e.record(menuIndex)
	return ok && rec.CanInsert
}

// CanModify passes the modify flag through; Hidden is not consulted.
func (e Evaluator) CanModify(menuIndex int) bool {
	if e.IsMaster() {
		return true
	}
	rec, ok := e.record(menuIndex)
	return ok && rec.CanModify
}

// CanDelete passes the delete flag through; Hidden is not consulted.
func (e Evaluator) CanDelete(menuIndex int) bool {
	if e.IsMaster() {
		return true
	}
	rec, ok := e.record(menuIndex)
	return ok && rec.CanDelete
}

// Allows dispatches to the query matching c. Unknown capabilities deny.
func (e Evaluator) Allows(menuIndex int, c Capability) bool {
	switch c {
	case View:
		return e.CanAccess(menuIndex)
	case Insert:
		return e.CanInsert(menuIndex)
	case Modify:
		return e.CanModify(menuIndex)
	case Delete:
		return e.CanDelete(menuIndex)
	default:
		return false
	}
}

func (e Evaluator) record(menuIndex int) (Record, bool) {
	if e.set == nil || e.set.Records == nil {
		return Record{}, false
	}
	rec, ok := e.set.Records[menuIndex]
	return rec, ok
}
