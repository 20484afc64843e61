package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_UserIDsCannotCollide(t *testing.T) {
	// a user whose id embeds another user's entity key
	entity := Key("stake", "a", "id")
	index := Key("stake", "a:id")
	assert.NotEqual(t, entity, index)
	assert.NotEqual(t, Key("stake", "a%3Aid"), index)
}

func TestKey(t *testing.T) {
	tests := []struct {
		ns    string
		parts []string
		want  string
	}{
		{"balance", []string{"0:abc"}, "balance:0%3Aabc"},
		{"stake", []string{"u1", "17000-1"}, "stake:u1:17000-1"},
		{"stake", []string{"0:abc", "17000-1"}, "stake:0%3Aabc:17000-1"},
		{"journal", []string{"50%:x"}, "journal:50%25%3Ax"},
		{"installment-index", nil, "installment-index"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.ns, tt.parts...))
		})
	}
}

func TestTx_ReadYourWrites(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, "a", []byte("1")))

	tx := NewTx(mem)
	v, err := tx.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	tx.Set("a", []byte("2"))
	tx.Set("b", []byte("3"))

	v, err = tx.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))

	// backend untouched until commit
	v, err = mem.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))
	_, err = mem.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tx.Commit(ctx))
	v, _ = mem.Get(ctx, "b")
	assert.Equal(t, "3", string(v))
}

func TestTx_EntriesKeepFirstWriteOrder(t *testing.T) {
	tx := NewTx(NewMemory())
	tx.Set("x", []byte("1"))
	tx.Set("y", []byte("2"))
	tx.Set("x", []byte("3"))

	entries := tx.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "x", entries[0].Key)
	assert.Equal(t, "3", string(entries[0].Value))
	assert.Equal(t, "y", entries[1].Key)
}

func TestTx_CommitEmptyIsNoop(t *testing.T) {
	tx := NewTx(failingStore{})
	assert.False(t, tx.Dirty())
	assert.NoError(t, tx.Commit(context.Background()))
}

// plainStore hides SetBatch so the sequential path is exercised.
type plainStore struct {
	inner   *Memory
	failKey string
}

func (p *plainStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, key)
}

func (p *plainStore) Set(ctx context.Context, key string, value []byte) error {
	if key == p.failKey {
		return errors.New("disk full")
	}
	return p.inner.Set(ctx, key, value)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (failingStore) Set(context.Context, string, []byte) error    { return errors.New("down") }

func TestTx_SequentialCommitRestoresPreviousValues(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, "balance:u", []byte("10")))
	backend := &plainStore{inner: mem, failKey: "journal:u"}

	tx := NewTx(backend)
	tx.Set("balance:u", []byte("5"))
	tx.Set("journal:u", []byte("[]"))

	err := tx.Commit(ctx)
	require.Error(t, err)

	v, err := mem.Get(ctx, "balance:u")
	require.NoError(t, err)
	assert.Equal(t, "10", string(v))
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	buf := []byte("abc")
	require.NoError(t, mem.Set(ctx, "k", buf))
	buf[0] = 'z'

	v, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))

	v[0] = 'q'
	again, _ := mem.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
	assert.Equal(t, 1, mem.Len())
}
