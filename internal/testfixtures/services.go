package testfixtures

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/memory"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("res"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("res")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Dependencies application.Dependencies
	IDGenerator  func() string
	Now          func() time.Time
	Location     *time.Location
	StoreTimeout time.Duration
	Logger       *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies
// combined with the factory defaults. The resource cache is disabled so tests
// see catalogue changes immediately.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBookingService(deps.Dependencies, application.Options{
		IDGenerator:  idGen,
		Now:          now,
		Location:     deps.Location,
		StoreTimeout: deps.StoreTimeout,
		CatalogTTL:   -1,
		Logger:       deps.Logger,
	})
}

// BookingHarness is a booking service over a seeded in-memory store.
type BookingHarness struct {
	Store   *memory.Storage
	Service *application.BookingService
	Factory *ServiceFactory
}

// NewBookingHarness seeds a memory store with StandardSeed and wires a
// service to it.
func NewBookingHarness(tb testing.TB, opts ...ServiceFactoryOption) *BookingHarness {
	tb.Helper()
	store := memory.New()
	if err := persistence.Seed(context.Background(), store, StandardSeed()); err != nil {
		tb.Fatalf("failed to seed store: %v", err)
	}
	factory := NewServiceFactory(opts...)
	return &BookingHarness{
		Store:   store,
		Factory: factory,
		Service: factory.NewBookingService(BookingServiceDeps{
			Dependencies: application.DependenciesFromStore(store),
		}),
	}
}

// Put stores a reservation directly, bypassing policy checks.
func (h *BookingHarness) Put(tb testing.TB, fixture ReservationFixture) ReservationFixture {
	tb.Helper()
	if err := h.Store.SaveReservation(context.Background(), fixture.Reservation()); err != nil {
		tb.Fatalf("failed to store reservation %s: %v", fixture.ID, err)
	}
	return fixture
}
