package service

import (
	"context"
	"errors"
	"sort"

	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/repository"
	"gorm.io/gorm"
)

// fakeReservationRepo is an in-memory ReservationRepository. Tests drive the
// engine sequentially, so WithTx applies fn directly and LockSlot is a no-op.
type fakeReservationRepo struct {
	nextID uint
	items  map[uint]*models.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{items: make(map[uint]*models.Reservation)}
}

func (f *fakeReservationRepo) WithTx(ctx context.Context, fn func(tx repository.ReservationRepository) error) error {
	return fn(f)
}

func (f *fakeReservationRepo) LockSlot(ctx context.Context, slot models.Slot) error {
	return nil
}

func (f *fakeReservationRepo) Save(ctx context.Context, r *models.Reservation) error {
	if r.ID == 0 {
		f.nextID++
		r.ID = f.nextID
	}
	stored := *r
	f.items[r.ID] = &stored
	return nil
}

func (f *fakeReservationRepo) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	stored, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r := *stored
	return &r, nil
}

func (f *fakeReservationRepo) all() []*models.Reservation {
	out := make([]*models.Reservation, 0, len(f.items))
	for _, r := range f.items {
		out = append(out, r)
	}
	return out
}

func (f *fakeReservationRepo) ExistsBooked(ctx context.Context, slot models.Slot) (bool, error) {
	for _, r := range f.all() {
		if r.Slot.Equal(slot) && r.Status == models.StatusBooked {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) ExistsActiveByMember(ctx context.Context, memberID uint, slot models.Slot) (bool, error) {
	for _, r := range f.all() {
		if r.Slot.Equal(slot) && r.MemberID == memberID && r.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) CountWaiting(ctx context.Context, slot models.Slot) (int64, error) {
	var count int64
	for _, r := range f.all() {
		if r.Slot.Equal(slot) && r.Status == models.StatusWaiting {
			count++
		}
	}
	return count, nil
}

func (f *fakeReservationRepo) CountWaitingAhead(ctx context.Context, reservation *models.Reservation) (int64, error) {
	var count int64
	for _, r := range f.all() {
		if !r.Slot.Equal(reservation.Slot) || r.Status != models.StatusWaiting {
			continue
		}
		if r.CreatedAt.Before(reservation.CreatedAt) ||
			(r.CreatedAt.Equal(reservation.CreatedAt) && r.ID < reservation.ID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeReservationRepo) FirstWaiting(ctx context.Context, slot models.Slot) (*models.Reservation, error) {
	var waiting []*models.Reservation
	for _, r := range f.all() {
		if r.Slot.Equal(slot) && r.Status == models.StatusWaiting {
			waiting = append(waiting, r)
		}
	}
	if len(waiting) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(waiting, func(i, j int) bool {
		if !waiting[i].CreatedAt.Equal(waiting[j].CreatedAt) {
			return waiting[i].CreatedAt.Before(waiting[j].CreatedAt)
		}
		return waiting[i].ID < waiting[j].ID
	})
	first := *waiting[0]
	return &first, nil
}

func (f *fakeReservationRepo) FindActiveByMember(ctx context.Context, memberID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range f.all() {
		if r.MemberID == memberID && r.Status.IsActive() {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeReservationRepo) FindAllBooked(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range f.all() {
		if r.Status == models.StatusBooked {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeReservationRepo) FindBookedByFilter(ctx context.Context, filter repository.ReservationFilter) ([]models.Reservation, error) {
	booked, _ := f.FindAllBooked(ctx)
	var out []models.Reservation
	for _, r := range booked {
		if filter.MemberID != nil && r.MemberID != *filter.MemberID {
			continue
		}
		if filter.ThemeID != nil && r.Slot.ThemeID != *filter.ThemeID {
			continue
		}
		if filter.DateFrom != nil && r.Slot.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && r.Slot.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) ExistsByThemeID(ctx context.Context, themeID uint) (bool, error) {
	for _, r := range f.all() {
		if r.Slot.ThemeID == themeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) ExistsByTimeID(ctx context.Context, timeID uint) (bool, error) {
	for _, r := range f.all() {
		if r.Slot.TimeID == timeID {
			return true, nil
		}
	}
	return false, nil
}

// conflictReservationRepo aborts every transaction the way postgres reports a
// serialization failure.
type conflictReservationRepo struct {
	*fakeReservationRepo
}

func (f *conflictReservationRepo) WithTx(ctx context.Context, fn func(tx repository.ReservationRepository) error) error {
	return repository.ErrTxConflict
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(routingKey string, payload any) error {
	p.calls++
	return errors.New("channel closed")
}

type fakeThemeRepo struct {
	nextID uint
	items  map[uint]*models.Theme
}

func newFakeThemeRepo(seed ...*models.Theme) *fakeThemeRepo {
	f := &fakeThemeRepo{items: make(map[uint]*models.Theme)}
	for _, t := range seed {
		_ = f.Create(context.Background(), t)
	}
	return f
}

func (f *fakeThemeRepo) Create(ctx context.Context, theme *models.Theme) error {
	if theme.ID == 0 {
		f.nextID++
		theme.ID = f.nextID
	} else if theme.ID > f.nextID {
		f.nextID = theme.ID
	}
	f.items[theme.ID] = theme
	return nil
}

func (f *fakeThemeRepo) FindByID(ctx context.Context, id uint) (*models.Theme, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeThemeRepo) FindAll(ctx context.Context) ([]models.Theme, error) {
	out := make([]models.Theme, 0, len(f.items))
	for _, t := range f.items {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeThemeRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeTimeRepo struct {
	nextID uint
	items  map[uint]*models.ReservationTime
}

func newFakeTimeRepo(seed ...*models.ReservationTime) *fakeTimeRepo {
	f := &fakeTimeRepo{items: make(map[uint]*models.ReservationTime)}
	for _, t := range seed {
		_ = f.Create(context.Background(), t)
	}
	return f
}

func (f *fakeTimeRepo) Create(ctx context.Context, t *models.ReservationTime) error {
	if t.ID == 0 {
		f.nextID++
		t.ID = f.nextID
	} else if t.ID > f.nextID {
		f.nextID = t.ID
	}
	f.items[t.ID] = t
	return nil
}

func (f *fakeTimeRepo) FindByID(ctx context.Context, id uint) (*models.ReservationTime, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTimeRepo) FindAll(ctx context.Context) ([]models.ReservationTime, error) {
	out := make([]models.ReservationTime, 0, len(f.items))
	for _, t := range f.items {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt < out[j].StartAt })
	return out, nil
}

func (f *fakeTimeRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeMemberRepo struct {
	nextID uint
	items  map[uint]*models.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{items: make(map[uint]*models.Member)}
}

func (f *fakeMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if member.ID == 0 {
		f.nextID++
		member.ID = f.nextID
	}
	f.items[member.ID] = member
	return nil
}

func (f *fakeMemberRepo) FindByID(ctx context.Context, id uint) (*models.Member, error) {
	m, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeMemberRepo) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	for _, m := range f.items {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
