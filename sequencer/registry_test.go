package sequencer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	mock_sequencer "github.com/pg-sharding/spqr-sequencer/pkg/mock/sequencer"
	"github.com/pg-sharding/spqr-sequencer/qdb"
	"github.com/pg-sharding/spqr-sequencer/sequencer"
	"github.com/pg-sharding/spqr-sequencer/sequencer/xqdbseq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

// must run with -race
func TestRegistryResolveOnce(t *testing.T) {
	assert := assert.New(t)
	ctrl := gomock.NewController(t)

	r := sequencer.NewRegistry(mock_sequencer.NewMockSegmentStore(ctrl), 8)

	var wg sync.WaitGroup
	got := make([]*sequencer.Allocator, 64)
	for i := range got {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = r.Resolve("seq")
		}()
	}
	wg.Wait()

	for _, a := range got {
		assert.Same(got[0], a)
	}
	assert.Equal("seq", got[0].Name())
}

func TestRegistryDistinctNames(t *testing.T) {
	assert := assert.New(t)
	ctx := context.TODO()

	db, err := qdb.NewMemQDB("")
	assert.NoError(err)
	assert.NoError(db.CreateSequence(ctx, qdb.NewSequenceRow("a", 0, 10, time.Now())))
	assert.NoError(db.CreateSequence(ctx, qdb.NewSequenceRow("b", 0, 10, time.Now())))

	r := sequencer.NewRegistry(xqdbseq.NewRangeStore(db, 150, time.Millisecond), 0)
	assert.NotSame(r.Resolve("a"), r.Resolve("b"))

	va, err := r.Resolve("a").Next(ctx)
	assert.NoError(err)
	vb, err := r.Resolve("b").Next(ctx)
	assert.NoError(err)

	assert.Equal(int64(1), va)
	assert.Equal(int64(1), vb)

	rowA, err := db.GetSequenceRow(ctx, "a")
	assert.NoError(err)
	rowB, err := db.GetSequenceRow(ctx, "b")
	assert.NoError(err)
	assert.Equal(int64(10), rowA.Value)
	assert.Equal(int64(10), rowB.Value)
}
