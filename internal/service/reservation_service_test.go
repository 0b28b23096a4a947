package service

import (
	"context"
	"testing"
	"time"

	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slotDate = time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)

type engineFixture struct {
	repo   *fakeReservationRepo
	svc    *reservationService
	lookup LookupService
	clock  time.Time
}

// newEngineFixture seeds one theme (id 1) and one time slot (id 1, 13:00).
// The engine clock starts well before the slot and advances one minute per
// call, so successive requests get distinct created_at values.
func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		repo:  newFakeReservationRepo(),
		clock: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	themes := newFakeThemeRepo(&models.Theme{ID: 1, Name: "Vault of Ciphers"})
	times := newFakeTimeRepo(&models.ReservationTime{ID: 1, StartAt: "13:00"})

	svc := NewReservationService(f.repo, themes, times, nil).(*reservationService)
	svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	f.svc = svc
	f.lookup = NewLookupService(f.repo)
	return f
}

func (f *engineFixture) book(t *testing.T, memberID uint) *models.Reservation {
	t.Helper()
	r, err := f.svc.CreateBooking(context.Background(), memberID, slotDate, 1, 1)
	require.NoError(t, err)
	return r
}

func (f *engineFixture) enqueue(t *testing.T, memberID uint) *models.Reservation {
	t.Helper()
	r, err := f.svc.EnqueueWaiting(context.Background(), memberID, slotDate, 1, 1)
	require.NoError(t, err)
	return r
}

// bookedCount verifies the single-booking invariant for the test slot.
func (f *engineFixture) bookedCount() int {
	slot := models.NewSlot(1, slotDate, 1)
	count := 0
	for _, r := range f.repo.all() {
		if r.Slot.Equal(slot) && r.Status == models.StatusBooked {
			count++
		}
	}
	return count
}

func TestCreateBooking_EmptySlot(t *testing.T) {
	f := newEngineFixture(t)

	r := f.book(t, 10)

	assert.NotZero(t, r.ID)
	assert.Equal(t, models.StatusBooked, r.Status)
	assert.Equal(t, 1, f.bookedCount())
}

func TestCreateBooking_SlotAlreadyBooked(t *testing.T) {
	f := newEngineFixture(t)
	f.book(t, 10)

	_, err := f.svc.CreateBooking(context.Background(), 11, slotDate, 1, 1)

	assert.ErrorIs(t, err, ErrDuplicateReservation)
	assert.Equal(t, 1, f.bookedCount())
}

func TestCreateBooking_PastSlot(t *testing.T) {
	f := newEngineFixture(t)
	f.clock = time.Date(2026, 6, 20, 13, 30, 0, 0, time.UTC) // past 13:00 start

	_, err := f.svc.CreateBooking(context.Background(), 10, slotDate, 1, 1)

	assert.ErrorIs(t, err, models.ErrPastReservation)
}

func TestCreateBooking_UnknownReferences(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), 10, slotDate, 99, 1)
	assert.ErrorIs(t, err, ErrTimeNotFound)

	_, err = f.svc.CreateBooking(context.Background(), 10, slotDate, 1, 99)
	assert.ErrorIs(t, err, ErrThemeNotFound)
}

func TestCreateBooking_MemberAlreadyWaiting(t *testing.T) {
	f := newEngineFixture(t)
	// Waiting on an empty slot is allowed; grabbing the booking on top of
	// it is not.
	f.enqueue(t, 11)

	_, err := f.svc.CreateBooking(context.Background(), 11, slotDate, 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateReservation)

	active, err := f.repo.FindActiveByMember(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.StatusWaiting, active[0].Status)

	// The slot itself is still free for everyone else.
	r := f.book(t, 12)
	assert.Equal(t, models.StatusBooked, r.Status)
}

func TestCreateBooking_TxConflict(t *testing.T) {
	repo := &conflictReservationRepo{newFakeReservationRepo()}
	themes := newFakeThemeRepo(&models.Theme{ID: 1, Name: "Vault of Ciphers"})
	times := newFakeTimeRepo(&models.ReservationTime{ID: 1, StartAt: "13:00"})
	svc := NewReservationService(repo, themes, times, nil).(*reservationService)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }

	_, err := svc.CreateBooking(context.Background(), 10, slotDate, 1, 1)

	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestCreateBooking_PublishFailureTolerated(t *testing.T) {
	pub := &failingPublisher{}
	f := newEngineFixture(t)
	f.svc.publisher = pub

	r := f.book(t, 10)

	assert.Equal(t, models.StatusBooked, r.Status)
	assert.Equal(t, 1, pub.calls, "publish should still be attempted")
}

func TestEnqueueWaiting_QueueOrder(t *testing.T) {
	f := newEngineFixture(t)
	f.book(t, 10)
	f.enqueue(t, 11)
	f.enqueue(t, 12)

	views, err := f.lookup.StatusesForMember(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Rank)
	assert.Equal(t, 0, *views[0].Rank)

	views, err = f.lookup.StatusesForMember(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Rank)
	assert.Equal(t, 1, *views[0].Rank)
}

func TestEnqueueWaiting_DuplicateMember(t *testing.T) {
	f := newEngineFixture(t)
	f.book(t, 10)
	f.enqueue(t, 11)

	_, err := f.svc.EnqueueWaiting(context.Background(), 11, slotDate, 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateReservation)

	// The booking holder cannot also join the queue.
	_, err = f.svc.EnqueueWaiting(context.Background(), 10, slotDate, 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateReservation)
}

func TestEnqueueWaiting_CapacityReached(t *testing.T) {
	f := newEngineFixture(t)
	f.book(t, 10)
	for memberID := uint(11); memberID <= 15; memberID++ {
		f.enqueue(t, memberID)
	}

	_, err := f.svc.EnqueueWaiting(context.Background(), 16, slotDate, 1, 1)

	assert.ErrorIs(t, err, ErrWaitingListExceeded)

	count, err := f.repo.CountWaiting(context.Background(), models.NewSlot(1, slotDate, 1))
	require.NoError(t, err)
	assert.EqualValues(t, WaitingCapacity, count)
}

func TestCancel_BookedPromotesEarliestWaiter(t *testing.T) {
	f := newEngineFixture(t)
	booked := f.book(t, 10)
	first := f.enqueue(t, 11)
	second := f.enqueue(t, 12)

	err := f.svc.Cancel(context.Background(), Actor{MemberID: 10}, booked.ID)
	require.NoError(t, err)

	promoted, err := f.repo.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, promoted.Status)

	stillWaiting, err := f.repo.FindByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, stillWaiting.Status)

	assert.Equal(t, 1, f.bookedCount())
}

func TestCancel_BookedWithoutWaiters(t *testing.T) {
	f := newEngineFixture(t)
	booked := f.book(t, 10)

	err := f.svc.Cancel(context.Background(), Actor{MemberID: 10}, booked.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, f.bookedCount())

	// The slot is free again.
	r := f.book(t, 11)
	assert.Equal(t, models.StatusBooked, r.Status)
}

func TestCancel_WaitingDoesNotPromote(t *testing.T) {
	f := newEngineFixture(t)
	booked := f.book(t, 10)
	front := f.enqueue(t, 11)
	f.enqueue(t, 12)
	f.enqueue(t, 13)

	err := f.svc.Cancel(context.Background(), Actor{MemberID: 11}, front.ID)
	require.NoError(t, err)

	holder, err := f.repo.FindByID(context.Background(), booked.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, holder.Status)

	// Remaining waiters shift up one rank each.
	views, err := f.lookup.StatusesForMember(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 0, *views[0].Rank)

	views, err = f.lookup.StatusesForMember(context.Background(), 13)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, *views[0].Rank)
}

func TestCancel_SecondCancelFails(t *testing.T) {
	f := newEngineFixture(t)
	booked := f.book(t, 10)
	f.enqueue(t, 11)
	f.enqueue(t, 12)

	require.NoError(t, f.svc.Cancel(context.Background(), Actor{MemberID: 10}, booked.ID))

	err := f.svc.Cancel(context.Background(), Actor{MemberID: 10}, booked.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	// No second promotion happened.
	assert.Equal(t, 1, f.bookedCount())
	count, err := f.repo.CountWaiting(context.Background(), models.NewSlot(1, slotDate, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCancel_NotOwner(t *testing.T) {
	f := newEngineFixture(t)
	booked := f.book(t, 10)

	err := f.svc.Cancel(context.Background(), Actor{MemberID: 99}, booked.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// Admins may cancel any reservation.
	err = f.svc.Cancel(context.Background(), Actor{MemberID: 99, IsAdmin: true}, booked.ID)
	assert.NoError(t, err)
}

func TestCancel_NotFound(t *testing.T) {
	f := newEngineFixture(t)

	err := f.svc.Cancel(context.Background(), Actor{MemberID: 10}, 404)

	assert.ErrorIs(t, err, ErrReservationNotFound)
}

// Full walkthrough: book, queue, cancel, promote, drain.
func TestBookingLifecycle(t *testing.T) {
	f := newEngineFixture(t)

	a := f.book(t, 1)
	b := f.enqueue(t, 2)

	views, err := f.lookup.StatusesForMember(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 0, *views[0].Rank)

	require.NoError(t, f.svc.Cancel(context.Background(), Actor{MemberID: 1}, a.ID))

	promoted, err := f.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, promoted.Status)

	count, err := f.repo.CountWaiting(context.Background(), models.NewSlot(1, slotDate, 1))
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 1, f.bookedCount())
}
