package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/memory"
	"github.com/example/workspace-booking/internal/persistence/storetest"
)

func TestStorageContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) persistence.Store {
		return memory.New()
	})
}

func TestConcurrentSavesAdmitOneWinner(t *testing.T) {
	store := memory.New()
	day := booking.NewDate(2026, time.October, 20)
	interval := booking.Interval{Start: booking.NewTimeOfDay(9, 0), End: booking.NewTimeOfDay(12, 0)}

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.SaveReservation(context.Background(), booking.Reservation{
				ID:         string(rune('a' + i)),
				Kind:       booking.KindRoom,
				EmployeeID: "E",
				ResourceID: "R1",
				Date:       day,
				Interval:   interval,
			})
			if err == nil {
				wins.Add(1)
				return
			}
			assert.ErrorIs(t, err, persistence.ErrConflict)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := memory.New().FindReservationByID(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}
