package application

import (
	"context"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/metrics"
	"github.com/frontdesk/service-reservation/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic, eventType, key string, data interface{}) error {
	args := m.Called(ctx, topic, eventType, key, data)
	return args.Error(0)
}

// published returns the event types published so far, in order.
func (m *mockPublisher) published() []string {
	var types []string
	for _, c := range m.Calls {
		if c.Method == "Publish" {
			types = append(types, c.Arguments.String(2))
		}
	}
	return types
}

func (m *mockPublisher) countOf(eventType string) int {
	n := 0
	for _, t := range m.published() {
		if t == eventType {
			n++
		}
	}
	return n
}

// fakeCache records invalidations and serves Set values back. Invalidate
// advances the generation without clearing entries, like the Redis cache.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	generation  int64
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Generation(context.Context) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, true
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *fakeCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidated++
}

// currentKey is the key ListRooms uses for listing right now.
func (c *fakeCache) currentKey(listing string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return roomCacheKey(c.generation, listing)
}

func (c *fakeCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

type fixture struct {
	store        *memory.Store
	publisher    *mockPublisher
	cache        *fakeCache
	registry     *prometheus.Registry
	intake       *BookingIntake
	engine       *LifecycleEngine
	rooms        *RoomService
	queries      *ReservationQueryService
	availability *AvailabilityChecker

	standard *room.Room
	suite    *room.Room
}

func newFixture(t require.TestingT) *fixture {
	return newFixtureWithWait(t, 2*time.Second)
}

func newFixtureWithWait(t require.TestingT, lockWait time.Duration) *fixture {
	store := memory.NewStore(lockWait)
	standard, err := room.NewRoom("101", room.Type{ID: uuid.New(), Name: "Standard", BaseNightlyRateCents: 8900})
	require.NoError(t, err)
	suite, err := room.NewRoom("301", room.Type{ID: uuid.New(), Name: "Suite", BaseNightlyRateCents: 21900})
	require.NoError(t, err)
	require.NoError(t, store.SeedRoom(context.Background(), standard))
	require.NoError(t, store.SeedRoom(context.Background(), suite))

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Maybe()

	cache := newFakeCache()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	logger := zap.NewNop()

	return &fixture{
		store:        store,
		publisher:    publisher,
		cache:        cache,
		registry:     registry,
		intake:       NewBookingIntake(store, reservation.NewNightlyRatePricing(), publisher, cache, m, logger),
		engine:       NewLifecycleEngine(store, publisher, cache, m, logger),
		rooms:        NewRoomService(store, publisher, cache, logger),
		queries:      NewReservationQueryService(store),
		availability: NewAvailabilityChecker(store, m),
		standard:     standard,
		suite:        suite,
	}
}

func newGuestInput() GuestInput {
	return GuestInput{
		FullName:   gofakeit.Name(),
		Phone:      gofakeit.Phone(),
		IDDocument: gofakeit.LetterN(2) + gofakeit.DigitN(7),
	}
}

func (f *fixture) book(t require.TestingT, roomID uuid.UUID, checkIn, checkOut, status string) *ReservationDTO {
	dto, err := f.intake.CreateBooking(context.Background(), CreateBookingRequest{
		Guest:    newGuestInput(),
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Status:   status,
	})
	require.NoError(t, err)
	return dto
}

func (f *fixture) transition(t require.TestingT, id uuid.UUID, status reservation.Status) *TransitionResult {
	result, err := f.engine.Transition(context.Background(), id, status)
	require.NoError(t, err)
	return result
}

func (f *fixture) roomStatus(t require.TestingT, id uuid.UUID) room.Status {
	rm, err := f.store.FindRoom(context.Background(), id)
	require.NoError(t, err)
	return rm.Status()
}

func (f *fixture) reservationStatus(t require.TestingT, id uuid.UUID) reservation.Status {
	r, err := f.store.FindReservation(context.Background(), id)
	require.NoError(t, err)
	return r.Status()
}

// forceRoomStatus overwrites a room outside the lifecycle to stage a
// precondition the lifecycle would not produce on its own.
func (f *fixture) forceRoomStatus(t require.TestingT, id uuid.UUID, status room.Status) {
	rm, err := f.store.FindRoom(context.Background(), id)
	require.NoError(t, err)
	rm.ChangeStatus(status)
	f.store.PutRoom(rm)
}

func zapNop() *zap.Logger { return zap.NewNop() }
