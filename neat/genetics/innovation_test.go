package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInnovationDB_LinkInnovationID_stable(t *testing.T) {
	db := NewInnovationDB(1, 10)
	id1 := db.LinkInnovationID(1, 3)
	id2 := db.LinkInnovationID(1, 3)
	assert.Equal(t, id1, id2, "same structural change must reuse the same innovation ID")

	id3 := db.LinkInnovationID(2, 3)
	assert.NotEqual(t, id1, id3)
}

func TestInnovationDB_NeuronSplitIDs_stable(t *testing.T) {
	db := NewInnovationDB(1, 10)
	n1, a1, b1 := db.NeuronSplitIDs(1, 3)
	n2, a2, b2 := db.NeuronSplitIDs(1, 3)
	assert.Equal(t, n1, n2)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)

	n3, _, _ := db.NeuronSplitIDs(2, 3)
	assert.NotEqual(t, n1, n3)
}

func TestInnovationDB_ReserveNeuronID_monotonic(t *testing.T) {
	db := NewInnovationDB(1, 10)
	a := db.ReserveNeuronID()
	b := db.ReserveNeuronID()
	assert.Equal(t, 10, a)
	assert.Equal(t, 11, b)
}

func TestInnovationDB_concurrentAccess(t *testing.T) {
	db := NewInnovationDB(1, 10)
	done := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		go func() {
			done <- db.LinkInnovationID(5, 6)
		}()
	}
	first := <-done
	for i := 1; i < 100; i++ {
		assert.Equal(t, first, <-done)
	}
}
