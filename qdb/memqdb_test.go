package qdb_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pg-sharding/spqr-sequencer/qdb"
	"github.com/stretchr/testify/assert"
)

var mockModified = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMemqdbSequenceRow(t *testing.T) {
	assert := assert.New(t)
	ctx := context.TODO()

	memqdb, err := qdb.NewMemQDB("")
	assert.NoError(err)

	_, err = memqdb.GetSequenceRow(ctx, "seq")
	assert.ErrorIs(err, qdb.ErrSequenceNotFound)

	assert.NoError(memqdb.CreateSequence(ctx, qdb.NewSequenceRow("seq", 100, 50, mockModified)))
	assert.ErrorIs(memqdb.CreateSequence(ctx, qdb.NewSequenceRow("seq", 0, 1, mockModified)), qdb.ErrSequenceExists)

	row, err := memqdb.GetSequenceRow(ctx, "seq")
	assert.NoError(err)
	assert.Equal(qdb.NewSequenceRow("seq", 100, 50, mockModified), row)

	// returned rows are copies
	row.Value = 7
	row, err = memqdb.GetSequenceRow(ctx, "seq")
	assert.NoError(err)
	assert.Equal(int64(100), row.Value)
}

func TestMemqdbCompareAndSwap(t *testing.T) {
	assert := assert.New(t)
	ctx := context.TODO()

	memqdb, err := qdb.NewMemQDB("")
	assert.NoError(err)
	assert.NoError(memqdb.CreateSequence(ctx, qdb.NewSequenceRow("seq", 100, 50, mockModified)))

	later := mockModified.Add(time.Hour)

	ok, err := memqdb.CompareAndSwapSequence(ctx, "seq", 99, 149, later)
	assert.NoError(err)
	assert.False(ok)

	ok, err = memqdb.CompareAndSwapSequence(ctx, "absent", 100, 150, later)
	assert.NoError(err)
	assert.False(ok)

	ok, err = memqdb.CompareAndSwapSequence(ctx, "seq", 100, 150, later)
	assert.NoError(err)
	assert.True(ok)

	row, err := memqdb.GetSequenceRow(ctx, "seq")
	assert.NoError(err)
	assert.Equal(qdb.NewSequenceRow("seq", 150, 50, later), row)
}

func TestMemqdbListSorted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.TODO()

	memqdb, err := qdb.NewMemQDB("")
	assert.NoError(err)
	for _, name := range []string{"c", "a", "b"} {
		assert.NoError(memqdb.CreateSequence(ctx, qdb.NewSequenceRow(name, 0, 1, mockModified)))
	}

	rows, err := memqdb.ListSequences(ctx)
	assert.NoError(err)
	assert.Len(rows, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(name, rows[i].Name)
	}
}

func TestMemqdbBackupRestore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.TODO()

	path := filepath.Join(t.TempDir(), "memqdb.json")

	memqdb, err := qdb.RestoreQDB(path)
	assert.NoError(err)
	assert.NoError(memqdb.CreateSequence(ctx, qdb.NewSequenceRow("seq", 0, 10, mockModified)))
	ok, err := memqdb.CompareAndSwapSequence(ctx, "seq", 0, 10, mockModified)
	assert.NoError(err)
	assert.True(ok)
	assert.NoError(memqdb.Close())

	_, err = os.Stat(path + ".tmp")
	assert.True(os.IsNotExist(err))

	restored, err := qdb.RestoreQDB(path)
	assert.NoError(err)
	row, err := restored.GetSequenceRow(ctx, "seq")
	assert.NoError(err)
	assert.Equal(int64(10), row.Value)
	assert.Equal(int64(10), row.Step)
}

func TestMemqdbFailedBackupRollsBack(t *testing.T) {
	assert := assert.New(t)
	ctx := context.TODO()

	dir := filepath.Join(t.TempDir(), "gone")
	assert.NoError(os.Mkdir(dir, 0755))
	memqdb, err := qdb.NewMemQDB(filepath.Join(dir, "memqdb.json"))
	assert.NoError(err)
	assert.NoError(os.Remove(dir))

	assert.Error(memqdb.CreateSequence(ctx, qdb.NewSequenceRow("seq", 0, 10, mockModified)))

	_, err = memqdb.GetSequenceRow(ctx, "seq")
	assert.ErrorIs(err, qdb.ErrSequenceNotFound)
}

// must run with -race
func TestMemqdbRacing(t *testing.T) {
	assert := assert.New(t)
	ctx := context.TODO()

	memqdb, err := qdb.NewMemQDB("")
	assert.NoError(err)
	assert.NoError(memqdb.CreateSequence(ctx, qdb.NewSequenceRow("seq", 0, 1, mockModified)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for n := 0; n < 32; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				row, err := memqdb.GetSequenceRow(ctx, "seq")
				if !assert.NoError(err) {
					return
				}
				ok, err := memqdb.CompareAndSwapSequence(ctx, "seq", row.Value, row.Value+row.Step, time.Now())
				assert.NoError(err)
				if ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
				_, _ = memqdb.ListSequences(ctx)
			}
		}()
	}
	wg.Wait()

	row, err := memqdb.GetSequenceRow(ctx, "seq")
	assert.NoError(err)
	assert.Equal(int64(wins), row.Value)
}
