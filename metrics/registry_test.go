package metrics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutraconsulting/geodiff/wire"
)

func TestNilRegistryIsANoOp(t *testing.T) {
	var r *Registry
	id := uuid.New()
	assert.NotPanics(t, func() {
		r.Register(id, KindReader)
		r.AddBytes(id, 10)
		r.AddEntry(id, wire.TagInsert)
		r.AddParseError(id)
		r.Unregister(id)
	})
	assert.Equal(t, snapshotTotals{}, r.snapshot())
}

func TestRegistryTracksOpenInstances(t *testing.T) {
	r := NewRegistry()
	readerID := uuid.New()
	writerID := uuid.New()

	r.Register(readerID, KindReader)
	r.Register(writerID, KindWriter)
	r.AddBytes(readerID, 100)
	r.AddBytes(writerID, 50)
	r.AddEntry(readerID, wire.TagInsert)
	r.AddEntry(readerID, wire.TagInsert)
	r.AddEntry(writerID, wire.TagDelete)
	r.AddParseError(readerID)

	totals := r.snapshot()
	assert.EqualValues(t, 1, totals.readersOpen)
	assert.EqualValues(t, 1, totals.writersOpen)
	assert.EqualValues(t, 100, totals.bytesRead)
	assert.EqualValues(t, 50, totals.bytesWritten)
	assert.EqualValues(t, 2, totals.entries[0]) // insert
	assert.EqualValues(t, 1, totals.entries[2]) // delete
	assert.EqualValues(t, 1, totals.parseErrors)

	r.Unregister(readerID)
	r.Unregister(writerID)
	assert.Equal(t, snapshotTotals{}, r.snapshot())
}

func TestOpIndexRejectsUnknownOp(t *testing.T) {
	assert.Equal(t, -1, opIndex(0xFF))
	assert.Equal(t, 0, opIndex(wire.TagInsert))
	assert.Equal(t, 1, opIndex(wire.TagUpdate))
	assert.Equal(t, 2, opIndex(wire.TagDelete))
}

func TestCollectorDescribeEmitsAllDescs(t *testing.T) {
	c := NewCollector(NewRegistry())
	ch := make(chan *prometheus.Desc, 10)
	c.Describe(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	assert.Equal(t, 6, count)
}

func TestCollectorCollectOverNilRegistry(t *testing.T) {
	c := NewCollector(nil)
	require.NotPanics(t, func() {
		ch := make(chan prometheus.Metric, 16)
		c.Collect(ch)
		close(ch)
		for range ch {
		}
	})
}
