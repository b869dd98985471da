package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "supperclub/internal/errors"
	"supperclub/internal/models"
	"supperclub/internal/repository"
)

// fakeInventory mirrors the store-side conditional update: Reserve either
// wins atomically or classifies why it lost.
type fakeInventory struct {
	mu            sync.Mutex
	slot          *models.EventSlot
	tierPrices    []models.TierPrice
	tierPricesErr error
	releaseErr    error
	releases      int

	// getHook runs once after the next GetByID read, outside the lock.
	// Lets a test squeeze a competing reserve between the admission read
	// and the conditional update.
	getHook func()
}

func (f *fakeInventory) GetByID(ctx context.Context, id int64) (*models.EventSlot, error) {
	f.mu.Lock()
	var snapshot *models.EventSlot
	if f.slot != nil && f.slot.ID == id {
		copy := *f.slot
		snapshot = &copy
	}
	hook := f.getHook
	f.getHook = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return snapshot, nil
}

func (f *fakeInventory) TierPrices(ctx context.Context, slotID int64) ([]models.TierPrice, error) {
	if f.tierPricesErr != nil {
		return nil, f.tierPricesErr
	}
	return f.tierPrices, nil
}

func (f *fakeInventory) Reserve(ctx context.Context, slotID int64, seats int) (*models.SlotSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slot == nil || f.slot.ID != slotID {
		return nil, apperrors.ErrEventNotFound
	}
	// FULL at write time means a concurrent reserver took the last seats:
	// a lost race, not a closed slot.
	if f.slot.Status == models.SlotStatusCancelled || f.slot.Status == models.SlotStatusCompleted {
		return nil, apperrors.ErrSlotNotOpen
	}
	if f.slot.SeatsRemaining < seats {
		return nil, apperrors.ErrInsufficientSeats
	}
	f.slot.SeatsRemaining -= seats
	if f.slot.SeatsRemaining == 0 {
		f.slot.Status = models.SlotStatusFull
	}
	return &models.SlotSnapshot{SlotID: slotID, SeatsRemaining: f.slot.SeatsRemaining, Status: f.slot.Status}, nil
}

func (f *fakeInventory) Release(ctx context.Context, slotID int64, seats int) (*models.SlotSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	f.releases++
	f.slot.SeatsRemaining += seats
	if f.slot.SeatsRemaining > f.slot.MaxGuests {
		f.slot.SeatsRemaining = f.slot.MaxGuests
	}
	if f.slot.Status == models.SlotStatusFull && f.slot.SeatsRemaining > 0 {
		f.slot.Status = models.SlotStatusOpen
	}
	return &models.SlotSnapshot{SlotID: slotID, SeatsRemaining: f.slot.SeatsRemaining, Status: f.slot.Status}, nil
}

func (f *fakeInventory) seatsRemaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slot.SeatsRemaining
}

func (f *fakeInventory) status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slot.Status
}

// fakeLedger stores bookings in memory and enforces the one-active-booking
// rule the way the partial unique index does.
type fakeLedger struct {
	mu        sync.Mutex
	nextID    int64
	bookings  map[int64]*models.Booking
	createErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{bookings: map[int64]*models.Booking{}}
}

func (f *fakeLedger) Create(ctx context.Context, input repository.CreateBookingInput) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, b := range f.bookings {
		if b.GuestID == input.GuestID && b.SlotID == input.SlotID && b.Status != models.BookingStatusCancelled {
			return nil, apperrors.ErrDuplicateBooking
		}
	}
	f.nextID++
	booking := &models.Booking{
		ID:           f.nextID,
		SlotID:       input.SlotID,
		GuestID:      input.GuestID,
		Seats:        input.Seats,
		GuestTier:    input.GuestTier,
		PricePerSeat: input.PricePerSeat,
		AmountTotal:  input.PricePerSeat * int64(input.Seats),
		Currency:     input.Currency,
		Status:       models.BookingStatusPaymentPending,
	}
	f.bookings[booking.ID] = booking
	copy := *booking
	return &copy, nil
}

func (f *fakeLedger) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookings, id)
	return nil
}

func (f *fakeLedger) ActiveSeats(ctx context.Context, guestID, slotID int64) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count, seats int
	for _, b := range f.bookings {
		if b.GuestID == guestID && b.SlotID == slotID && b.Status != models.BookingStatusCancelled {
			count++
			seats += b.Seats
		}
	}
	return count, seats, nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

type fakeIntents struct {
	mu        sync.Mutex
	nextID    int
	createErr error
	created   []*models.PaymentIntent
}

func (f *fakeIntents) Create(ctx context.Context, bookingID, amount int64, currency string) (*models.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	intent := &models.PaymentIntent{
		ID:        fmt.Sprintf("pi-%d", f.nextID),
		BookingID: bookingID,
		Amount:    amount,
		Currency:  currency,
		Status:    models.IntentStatusPending,
	}
	f.created = append(f.created, intent)
	return intent, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copy := *u
	return &copy, nil
}

type fakePublisher struct{}

func (fakePublisher) Publish(subject string, data interface{}) error { return nil }

type fixture struct {
	svc       *ReservationService
	inventory *fakeInventory
	ledger    *fakeLedger
	intents   *fakeIntents
	users     *fakeUsers
}

func newFixture() *fixture {
	inventory := &fakeInventory{
		slot: &models.EventSlot{
			ID:             1,
			HostID:         10,
			Title:          "Georgian supra night",
			StartsAt:       time.Now().Add(48 * time.Hour),
			MaxGuests:      10,
			SeatsRemaining: 10,
			Status:         models.SlotStatusOpen,
			BasePrice:      5000,
			Currency:       "EUR",
		},
		tierPrices: []models.TierPrice{
			{SlotID: 1, Tier: "PLUS", PricePerSeat: 4500},
		},
	}
	ledger := newFakeLedger()
	intents := &fakeIntents{}
	users := &fakeUsers{users: map[int64]*models.User{
		10: {UserID: 10, Role: "host", Tier: "STANDARD"},
		20: {UserID: 20, Email: "guest@example.com", Role: "guest", Tier: "STANDARD"},
		21: {UserID: 21, Email: "plus@example.com", Role: "guest", Tier: "PLUS"},
	}}

	dispatcher := NewSideEffectDispatcher(fakePublisher{})
	compensator := NewCompensator(inventory, ledger)
	eligibility := NewEligibilityChecker(ledger)

	svc := NewReservationService(inventory, ledger, intents, users,
		eligibility, compensator, dispatcher, time.Second)

	return &fixture{svc: svc, inventory: inventory, ledger: ledger, intents: intents, users: users}
}

func reservationRequest(seats int) *models.CreateReservationRequest {
	return &models.CreateReservationRequest{
		SlotID:       1,
		Seats:        seats,
		PrimaryGuest: models.GuestInfo{Name: "Nino B", Contact: "+49151000000"},
	}
}

func TestCreateReservationSuccess(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(context.Background(), 20, reservationRequest(2))
	require.NoError(t, err)

	assert.Equal(t, int64(10000), resp.AmountTotal)
	assert.Equal(t, "EUR", resp.Currency)
	assert.Equal(t, models.BookingStatusPaymentPending, resp.Status)
	assert.NotEmpty(t, resp.PaymentIntentID)
	assert.Equal(t, 8, f.inventory.seatsRemaining())

	require.Len(t, f.intents.created, 1)
	assert.Equal(t, resp.BookingID, f.intents.created[0].BookingID)
	assert.Equal(t, int64(10000), f.intents.created[0].Amount)
	assert.Equal(t, models.IntentStatusPending, f.intents.created[0].Status)
}

func TestCreateReservationUsesTierPrice(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(context.Background(), 21, reservationRequest(2))
	require.NoError(t, err)

	assert.Equal(t, int64(9000), resp.AmountTotal)
}

func TestCreateReservationEventNotFound(t *testing.T) {
	f := newFixture()

	req := reservationRequest(1)
	req.SlotID = 99

	_, err := f.svc.Create(context.Background(), 20, req)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestCreateReservationSlotNotOpen(t *testing.T) {
	f := newFixture()
	f.inventory.slot.Status = models.SlotStatusCancelled

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(1))
	assert.ErrorIs(t, err, apperrors.ErrSlotNotOpen)
	assert.Equal(t, 10, f.inventory.seatsRemaining())
}

func TestCreateReservationHostSuspended(t *testing.T) {
	f := newFixture()
	f.users.users[10].Suspended = true

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(1))
	assert.ErrorIs(t, err, apperrors.ErrHostSuspended)
	assert.Equal(t, 10, f.inventory.seatsRemaining())
}

func TestCreateReservationDuplicate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(1))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), 20, reservationRequest(1))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBooking)

	// Only the first reservation holds seats.
	assert.Equal(t, 9, f.inventory.seatsRemaining())
	assert.Equal(t, 1, f.ledger.count())
}

func TestCreateReservationQuotaExceeded(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(models.GuestSeatCap+1))
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
	assert.Equal(t, 10, f.inventory.seatsRemaining())
}

func TestCreateReservationInvalidPriceReleasesSeats(t *testing.T) {
	f := newFixture()
	f.inventory.slot.BasePrice = -1
	f.inventory.tierPrices = nil

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(2))
	assert.ErrorIs(t, err, apperrors.ErrInvalidPrice)

	assert.Equal(t, 10, f.inventory.seatsRemaining())
	assert.Equal(t, 0, f.ledger.count())
}

func TestCreateReservationLedgerFailureReleasesSeats(t *testing.T) {
	f := newFixture()
	f.ledger.createErr = errors.New("disk on fire")

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(2))
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)

	assert.Equal(t, 10, f.inventory.seatsRemaining())
}

func TestCreateReservationIntentFailureRollsBackBooking(t *testing.T) {
	f := newFixture()
	f.intents.createErr = errors.New("disk on fire")

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(2))
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)

	// The orphaned booking is gone and the seats are back.
	assert.Equal(t, 0, f.ledger.count())
	assert.Equal(t, 10, f.inventory.seatsRemaining())
}

func TestCreateReservationTierPriceLoadFailureReleasesSeats(t *testing.T) {
	f := newFixture()
	f.inventory.tierPricesErr = errors.New("connection reset")

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(1))
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)
	assert.Equal(t, 10, f.inventory.seatsRemaining())
}

func TestCreateReservationSurvivesCallerCancellation(t *testing.T) {
	f := newFixture()

	// The ledger refuses writes on a cancelled context; the completion
	// sequence must run on a context that ignores the caller's cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The pre-reserve reads in the fakes do not consult the context, so the
	// sequence reaches the ledger write with the caller already gone.
	resp, err := f.svc.Create(ctx, 20, reservationRequest(1))
	require.NoError(t, err)
	assert.NotZero(t, resp.BookingID)
	assert.Equal(t, 1, f.ledger.count())
}

func TestLastSeatMarksSlotFull(t *testing.T) {
	f := newFixture()
	f.inventory.slot.SeatsRemaining = 1

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(1))
	require.NoError(t, err)

	assert.Equal(t, 0, f.inventory.seatsRemaining())
	assert.Equal(t, models.SlotStatusFull, f.inventory.status())
}

func TestReserveRaceLoserGetsInsufficientSeats(t *testing.T) {
	f := newFixture()
	f.inventory.slot.SeatsRemaining = 2

	// A competing guest grabs the remaining seats between this guest's
	// admission read and the conditional update, flipping the slot FULL.
	f.inventory.getHook = func() {
		_, err := f.inventory.Reserve(context.Background(), 1, 2)
		require.NoError(t, err)
	}

	_, err := f.svc.Create(context.Background(), 20, reservationRequest(2))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientSeats)
	assert.Equal(t, models.SlotStatusFull, f.inventory.status())
	assert.Equal(t, 0, f.ledger.count())
}

func TestReservationAgainstFullSlotIsSlotNotOpen(t *testing.T) {
	f := newFixture()
	f.inventory.slot.SeatsRemaining = 0
	f.inventory.slot.Status = models.SlotStatusFull

	// A request that arrives after the flip is rejected at admission, not
	// reported as a lost race.
	_, err := f.svc.Create(context.Background(), 20, reservationRequest(1))
	assert.ErrorIs(t, err, apperrors.ErrSlotNotOpen)
}

func TestConcurrentReservationsNeverOverbook(t *testing.T) {
	f := newFixture()
	f.inventory.slot.SeatsRemaining = 5
	f.inventory.slot.MaxGuests = 5

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		guestID := int64(100 + i)
		f.users.mu.Lock()
		f.users.users[guestID] = &models.User{UserID: guestID, Tier: "STANDARD"}
		f.users.mu.Unlock()

		wg.Add(1)
		go func(guestID int64) {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), guestID, reservationRequest(1))
			results <- err
		}(guestID)
	}

	wg.Wait()
	close(results)

	// Losers split two ways: a reserver that lost the conditional update
	// gets InsufficientSeats; one whose admission read already saw the
	// FULL flip gets SlotNotOpen. Neither may hold seats.
	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		losses++
		if !errors.Is(err, apperrors.ErrInsufficientSeats) && !errors.Is(err, apperrors.ErrSlotNotOpen) {
			t.Errorf("unexpected loser error: %v", err)
		}
	}

	assert.Equal(t, 5, wins)
	assert.Equal(t, attempts-5, losses)
	assert.Equal(t, 0, f.inventory.seatsRemaining())
	assert.Equal(t, models.SlotStatusFull, f.inventory.status())
	assert.Equal(t, 5, f.ledger.count())
}
