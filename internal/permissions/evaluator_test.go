package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleSet() Set {
	return NewSet(false, true,
		Record{MenuIndex: 1, Hidden: false, CanInsert: true, CanModify: false, CanDelete: false},
		Record{MenuIndex: 2, Hidden: true, CanInsert: true, CanModify: true, CanDelete: true},
		Record{MenuIndex: 3, Hidden: false},
	)
}

func TestMasterAllowsEverything(t *testing.T) {
	eval := NewEvaluator(NewSet(true, false))
	for _, idx := range []int{0, 1, 42, 999, -7} {
		assert.True(t, eval.CanAccess(idx), "access %d", idx)
		assert.True(t, eval.CanInsert(idx), "insert %d", idx)
		assert.True(t, eval.CanModify(idx), "modify %d", idx)
		assert.True(t, eval.CanDelete(idx), "delete %d", idx)
	}
}

func TestMissingRecordDenies(t *testing.T) {
	eval := NewEvaluator(sampleSet())
	for _, idx := range []int{0, 4, 100} {
		assert.False(t, eval.CanAccess(idx))
		assert.False(t, eval.CanInsert(idx))
		assert.False(t, eval.CanModify(idx))
		assert.False(t, eval.CanDelete(idx))
	}
}

func TestHiddenRecordKeepsCapabilityFlags(t *testing.T) {
	eval := NewEvaluator(sampleSet())

	assert.False(t, eval.CanAccess(2))
	assert.True(t, eval.CanInsert(2))
	assert.True(t, eval.CanModify(2))
	assert.True(t, eval.CanDelete(2))
}

func TestVisibleRecordPassesFlagsThrough(t *testing.T) {
	eval := NewEvaluator(sampleSet())

	assert.True(t, eval.CanAccess(1))
	assert.True(t, eval.CanInsert(1))
	assert.False(t, eval.CanModify(1))
	assert.False(t, eval.CanDelete(1))

	assert.True(t, eval.CanAccess(3))
	assert.False(t, eval.CanInsert(3))
}

func TestUnloadedEvaluatorDenies(t *testing.T) {
	var eval Evaluator
	assert.False(t, eval.Loaded())
	assert.False(t, eval.IsMaster())
	assert.False(t, eval.IsManagement())
	for _, idx := range []int{0, 1, 2, 3} {
		for _, c := range []Capability{View, Insert, Modify, Delete} {
			assert.False(t, eval.Allows(idx, c), "menu %d capability %s", idx, c)
		}
	}
}

func TestNilRecordsMapDenies(t *testing.T) {
	eval := NewEvaluator(Set{})
	assert.True(t, eval.Loaded())
	assert.False(t, eval.CanAccess(1))
	assert.False(t, eval.CanDelete(1))
}

func TestAllowsDispatch(t *testing.T) {
	eval := NewEvaluator(sampleSet())

	assert.True(t, eval.Allows(1, View))
	assert.True(t, eval.Allows(1, Insert))
	assert.False(t, eval.Allows(1, Modify))
	assert.False(t, eval.Allows(1, Delete))
	assert.False(t, eval.Allows(1, Capability(99)))
	assert.True(t, eval.IsManagement())
}

func TestNewSetKeepsFirstDuplicate(t *testing.T) {
	set := NewSet(false, false,
		Record{MenuIndex: 5, CanInsert: true},
		Record{MenuIndex: 5, CanInsert: false},
	)
	assert.Len(t, set.Records, 1)
	assert.True(t, set.Records[5].CanInsert)
}
