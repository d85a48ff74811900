package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/domain"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.Seed(schema.Defaults())
	return s
}

// ---------------------------------------------------------------------------
// Read / Write
// ---------------------------------------------------------------------------

func TestRead_UnseededKey(t *testing.T) {
	s := New()

	_, err := Read(s, schema.CartHidden)

	require.Error(t, err)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, schema.NameCartHidden, nf.Key)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRead_SeededDefaults(t *testing.T) {
	s := seeded(t)

	hidden, err := Read(s, schema.CartHidden)
	require.NoError(t, err)
	assert.False(t, hidden)

	items, err := Read(s, schema.CartItems)
	require.NoError(t, err)
	assert.Empty(t, items)

	count, err := Read(s, schema.ItemCount)
	require.NoError(t, err)
	assert.Zero(t, count)

	total, err := Read(s, schema.CartTotal)
	require.NoError(t, err)
	assert.Zero(t, total)

	user, err := Read(s, schema.CurrentUser)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestWrite_VisibleImmediately(t *testing.T) {
	s := seeded(t)

	Write(s, schema.CartHidden, true)

	hidden, err := Read(s, schema.CartHidden)
	require.NoError(t, err)
	assert.True(t, hidden)
}

func TestWrite_Overwrites(t *testing.T) {
	s := seeded(t)

	Write(s, schema.ItemCount, 3)
	Write(s, schema.ItemCount, 5)

	count, err := Read(s, schema.ItemCount)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestRead_TypeMismatchIsInternal(t *testing.T) {
	s := seeded(t)
	s.values[schema.NameItemCount] = "three"

	_, err := Read(s, schema.ItemCount)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInternal))
}

func TestRead_ReturnsCopies(t *testing.T) {
	s := seeded(t)
	Write(s, schema.CartItems, domain.CartItems{{ID: "1", Price: domain.Cents(1000), Quantity: 1}})
	Write(s, schema.CurrentUser, &domain.User{ID: "u1", DisplayName: "Jane"})

	items, err := Read(s, schema.CartItems)
	require.NoError(t, err)
	items[0].Quantity = 99

	user, err := Read(s, schema.CurrentUser)
	require.NoError(t, err)
	user.DisplayName = "Mallory"

	items, err = Read(s, schema.CartItems)
	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)

	user, err = Read(s, schema.CurrentUser)
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.DisplayName)
}

func TestWrite_StoresCopy(t *testing.T) {
	s := seeded(t)
	items := domain.CartItems{{ID: "1", Quantity: 1}}

	Write(s, schema.CartItems, items)
	items[0].Quantity = 42

	got, err := Read(s, schema.CartItems)
	require.NoError(t, err)
	assert.Equal(t, 1, got[0].Quantity)
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestUpdate_CommitsAllWrites(t *testing.T) {
	s := seeded(t)

	err := s.Update(func(tx *Tx) error {
		Write(tx, schema.ItemCount, 2)
		Write(tx, schema.CartTotal, domain.Cents(2000))
		return nil
	})
	require.NoError(t, err)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, domain.Cents(2000), snap.CartTotal)
}

func TestUpdate_ErrorDiscardsWrites(t *testing.T) {
	s := seeded(t)
	boom := errors.New("boom")

	err := s.Update(func(tx *Tx) error {
		Write(tx, schema.ItemCount, 2)
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := Read(s, schema.ItemCount)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdate_TxSeesOwnWrites(t *testing.T) {
	s := seeded(t)

	err := s.Update(func(tx *Tx) error {
		Write(tx, schema.CartHidden, true)
		hidden, err := Read(tx, schema.CartHidden)
		if err != nil {
			return err
		}
		assert.True(t, hidden)

		// Not yet visible outside the transaction.
		outside, ok := s.values[schema.NameCartHidden]
		assert.True(t, ok)
		assert.Equal(t, false, outside)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdate_ReadUnseededInsideTx(t *testing.T) {
	s := New()

	err := s.Update(func(tx *Tx) error {
		_, err := Read(tx, schema.CartItems)
		return err
	})

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// ---------------------------------------------------------------------------
// Seed / Snapshot
// ---------------------------------------------------------------------------

func TestSeeded(t *testing.T) {
	s := New()
	assert.False(t, s.Seeded())

	Write(s, schema.CartHidden, true)
	assert.False(t, s.Seeded())

	s.Seed(schema.Defaults())
	assert.True(t, s.Seeded())
}

func TestSnapshot_Unseeded(t *testing.T) {
	_, err := New().Snapshot()
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSnapshot_MatchesSeed(t *testing.T) {
	s := New()
	want := schema.Snapshot{
		CartState:   domain.NewCartState(true, domain.CartItems{{ID: "1", Price: domain.Cents(500), Quantity: 2}}),
		CurrentUser: &domain.User{ID: "u1", Email: "jane@example.com"},
	}

	s.Seed(want)

	got, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// ---------------------------------------------------------------------------
// Subscribe
// ---------------------------------------------------------------------------

func TestSubscribe_NotifiedAfterCommit(t *testing.T) {
	s := seeded(t)
	var changes []Change
	cancel := s.Subscribe(func(c Change) {
		// Observers run outside the lock and may read.
		_, err := Read(s, schema.ItemCount)
		assert.NoError(t, err)
		changes = append(changes, c)
	})
	defer cancel()

	require.NoError(t, s.Update(func(tx *Tx) error {
		Write(tx, schema.CartItems, domain.CartItems{})
		Write(tx, schema.ItemCount, 0)
		Write(tx, schema.CartTotal, domain.Money(0))
		return nil
	}))
	Write(s, schema.CartHidden, true)

	require.Len(t, changes, 2)
	assert.Equal(t, []schema.Name{schema.NameCartItems, schema.NameItemCount, schema.NameCartTotal}, changes[0].Names)
	assert.True(t, changes[1].Has(schema.NameCartHidden))
	assert.False(t, changes[1].Has(schema.NameCartItems))
}

func TestSubscribe_NoNotificationOnFailedOrEmptyTx(t *testing.T) {
	s := seeded(t)
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	_ = s.Update(func(tx *Tx) error { return errors.New("nope") })
	_ = s.Update(func(tx *Tx) error { return nil })

	assert.Zero(t, calls)
}

func TestSubscribe_Cancel(t *testing.T) {
	s := seeded(t)
	calls := 0
	cancel := s.Subscribe(func(Change) { calls++ })

	Write(s, schema.CartHidden, true)
	cancel()
	Write(s, schema.CartHidden, false)

	assert.Equal(t, 1, calls)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := seeded(t)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			Write(s, schema.ItemCount, n)
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.Snapshot()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, s.Seeded())
}
