package qdb

import (
	"context"
	"testing"

	"github.com/pg-sharding/spqr-sequencer/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestNewXQDB(t *testing.T) {
	assert := assert.New(t)

	db, err := NewXQDB(context.TODO(), &config.Sequencer{StorageType: config.StorageMem})
	assert.NoError(err)
	assert.IsType(&MemQDB{}, db)

	db, err = NewXQDB(context.TODO(), &config.Sequencer{
		StorageType:       config.StorageSQL,
		StorageDriver:     "mysql",
		StorageConnString: "user:pass@tcp(localhost:3306)/seq",
		Structure:         defaultStructure(),
	})
	assert.NoError(err)
	assert.IsType(&SqlQDB{}, db)
	assert.NoError(db.Close())

	_, err = NewXQDB(context.TODO(), &config.Sequencer{StorageType: "zookeeper"})
	assert.EqualError(err, "qdb implementation zookeeper is invalid")
}

func TestUpdateCommandUndo(t *testing.T) {
	assert := assert.New(t)

	m := map[string]int{"a": 1}
	upd := NewUpdateCommand(m, "a", 2)
	ins := NewUpdateCommand(m, "b", 3)

	_, err := doCommands(upd, ins)
	assert.NoError(err)
	assert.Equal(map[string]int{"a": 2, "b": 3}, m)

	assert.NoError(undoCommands(upd, ins))
	assert.Equal(map[string]int{"a": 1}, m)
}

func defaultStructure() config.TableStructure {
	cfg := config.Sequencer{}
	_ = cfg.Validate()
	return cfg.Structure
}
