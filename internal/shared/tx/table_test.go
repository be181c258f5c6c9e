package tx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_DraftsStayPrivateUntilCommit(t *testing.T) {
	m := NewMemory()
	var table Table[string, int]
	written := make(chan struct{})
	checked := make(chan struct{})
	errc := make(chan error, 1)

	go func() {
		errc <- m.WithinTx(context.Background(), func(ctx context.Context) error {
			if err := table.Put(ctx, "a", 1); err != nil {
				return err
			}
			v, ok := table.Get(ctx, "a")
			if !ok || v != 1 {
				return errors.New("writer cannot read its own draft")
			}
			close(written)
			<-checked
			return nil
		})
	}()

	<-written
	_, ok := table.Get(context.Background(), "a")
	assert.False(t, ok)
	assert.Empty(t, table.Select(context.Background(), nil))
	close(checked)

	require.NoError(t, <-errc)
	v, ok := table.Get(context.Background(), "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTable_RollbackDiscardsDrafts(t *testing.T) {
	m := NewMemory()
	var table Table[string, int]
	require.NoError(t, table.Put(context.Background(), "kept", 1))
	boom := errors.New("boom")

	err := m.WithinTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, table.Put(ctx, "kept", 2))
		require.NoError(t, table.Put(ctx, "added", 3))
		deleted, err := table.Delete(ctx, "kept")
		require.NoError(t, err)
		require.True(t, deleted)
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, ok := table.Get(context.Background(), "kept")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = table.Get(context.Background(), "added")
	assert.False(t, ok)
}

func TestTable_CommitPublishesDeletes(t *testing.T) {
	m := NewMemory()
	var table Table[string, int]
	require.NoError(t, table.Put(context.Background(), "a", 1))

	require.NoError(t, m.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := table.Delete(ctx, "a")
		return err
	}))

	_, ok := table.Get(context.Background(), "a")
	assert.False(t, ok)
	inserted, err := table.Insert(context.Background(), "a", 2)
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestTable_WritesToAnotherUnitsDraftConflict(t *testing.T) {
	m := NewMemory()
	var table Table[string, int]
	written := make(chan struct{})
	release := make(chan struct{})
	errc := make(chan error, 1)

	go func() {
		errc <- m.WithinTx(context.Background(), func(ctx context.Context) error {
			if _, err := table.Insert(ctx, "key", 1); err != nil {
				return err
			}
			close(written)
			<-release
			return nil
		})
	}()
	<-written

	err := m.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := table.Insert(ctx, "key", 2)
		return err
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, table.Put(context.Background(), "key", 3), ErrConflict)

	close(release)
	require.NoError(t, <-errc)
	v, _ := table.Get(context.Background(), "key")
	assert.Equal(t, 1, v)
}

func TestTable_InsertKeepsVisibleRow(t *testing.T) {
	var table Table[string, int]
	inserted, err := table.Insert(context.Background(), "a", 1)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = table.Insert(context.Background(), "a", 2)
	require.NoError(t, err)
	assert.False(t, inserted)
	v, _ := table.Get(context.Background(), "a")
	assert.Equal(t, 1, v)
}
