package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upm-go/upm/pkg/model"
	"github.com/upm-go/upm/pkg/storage"
)

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLite_SaveAndLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	reading := &model.Reading{
		RemainingEnergy: 26.91,
		RemainingMoney:  14.44,
		MeterRoomID:     "meter-1",
		RoomDisplayName: "220407",
		RoomID:          "r-1",
		BuildingID:      "b-2",
		CampusID:        "c-1",
		RoomNumber:      "407",
		CapturedAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveReading(ctx, reading))

	got, err := store.LatestReading(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 26.91, got.RemainingEnergy, 0.001)
	assert.InDelta(t, 14.44, got.RemainingMoney, 0.001)
	assert.Equal(t, "220407", got.RoomDisplayName)
	assert.Equal(t, "407", got.RoomNumber)
}

func TestSQLite_LatestReturnsNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, money := range []float64{20.0, 15.0, 9.5} {
		require.NoError(t, store.SaveReading(ctx, &model.Reading{
			RemainingMoney:  money,
			MeterRoomID:     "meter-1",
			RoomDisplayName: "220407",
			CapturedAt:      time.Date(2025, 3, 1, 12, i, 0, 0, time.UTC),
		}))
	}

	got, err := store.LatestReading(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 9.5, got.RemainingMoney, 0.001)
}

func TestSQLite_LatestOnEmptyStore(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LatestReading(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_FillsCapturedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	reading := &model.Reading{RemainingMoney: 5.0, MeterRoomID: "m", RoomDisplayName: "r"}
	require.NoError(t, store.SaveReading(ctx, reading))
	assert.False(t, reading.CapturedAt.IsZero())
}
