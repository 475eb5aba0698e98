package migration

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shashiranjanraj/kproduct/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.Migrator().CreateTable(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

type failing struct{}

func (failing) Up(db *gorm.DB) error   { return errors.New("boom") }
func (failing) Down(db *gorm.DB) error { return nil }

func withRegistry(t *testing.T, regs ...registeredMigration) {
	t.Helper()
	mu.Lock()
	saved := registry
	registry = regs
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func TestRunStatusRollback(t *testing.T) {
	withRegistry(t, registeredMigration{name: "20200101000000_create_widgets", m: createWidgets{}})

	db, err := database.OpenMemory()
	require.NoError(t, err)
	var out bytes.Buffer
	r := New(db, &out)

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"20200101000000_create_widgets"}, pending)

	require.NoError(t, r.Run())
	assert.True(t, db.Migrator().HasTable(&widget{}))

	status, err := r.Status()
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.True(t, status[0].Ran)
	assert.Equal(t, 1, status[0].Batch)

	out.Reset()
	require.NoError(t, r.Run())
	assert.Contains(t, out.String(), "Nothing to migrate.")

	require.NoError(t, r.Rollback())
	assert.False(t, db.Migrator().HasTable(&widget{}))

	pending, err = r.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	withRegistry(t, registeredMigration{name: "20200101000000_fail", m: failing{}})

	db, err := database.OpenMemory()
	require.NoError(t, err)
	r := New(db, nil)

	assert.ErrorContains(t, r.Run(), "boom")
	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"20200101000000_fail"}, pending)
}

func TestRunWithoutMigrations(t *testing.T) {
	withRegistry(t)
	db, err := database.OpenMemory()
	require.NoError(t, err)
	assert.ErrorIs(t, New(db, nil).Run(), ErrNoMigrations)
}
