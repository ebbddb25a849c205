package repository

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"event-ticketing/internal/data/entity"

	"github.com/google/uuid"
)

// MemoryStore is the embedded storage backend. One mutex serializes atomic
// scopes; rollback restores a snapshot taken at scope entry. It trades the
// per-event parallelism of Postgres row locks for zero dependencies, which
// is what tests and the memory driver want.
type MemoryStore struct {
	mu   sync.Mutex
	data *memData

	repos   *Repository // locks per call
	txRepos *Repository // assumes the scope already holds the lock
}

type memData struct {
	users      map[uuid.UUID]entity.User
	categories map[uuid.UUID]entity.Category
	events     map[uuid.UUID]entity.Event
	bookings   map[uuid.UUID]entity.Booking
	payments   map[uuid.UUID]entity.Payment
}

func newMemData() *memData {
	return &memData{
		users:      make(map[uuid.UUID]entity.User),
		categories: make(map[uuid.UUID]entity.Category),
		events:     make(map[uuid.UUID]entity.Event),
		bookings:   make(map[uuid.UUID]entity.Booking),
		payments:   make(map[uuid.UUID]entity.Payment),
	}
}

func (d *memData) clone() *memData {
	return &memData{
		users:      maps.Clone(d.users),
		categories: maps.Clone(d.categories),
		events:     maps.Clone(d.events),
		bookings:   maps.Clone(d.bookings),
		payments:   maps.Clone(d.payments),
	}
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{data: newMemData()}
	s.repos = &Repository{
		Users:      &memUsers{s: s, locking: true},
		Categories: &memCategories{s: s, locking: true},
		Events:     &memEvents{s: s, locking: true},
		Ledger:     &memLedger{s: s, locking: true},
		Bookings:   &memBookings{s: s, locking: true},
		Payments:   &memPayments{s: s, locking: true},
	}
	s.txRepos = &Repository{
		Users:      &memUsers{s: s},
		Categories: &memCategories{s: s},
		Events:     &memEvents{s: s},
		Ledger:     &memLedger{s: s},
		Bookings:   &memBookings{s: s},
		Payments:   &memPayments{s: s},
	}
	return s
}

func (s *MemoryStore) Repos() *Repository {
	return s.repos
}

// InTx takes the store lock for the whole scope, so concurrent scopes
// serialize exactly like transactions contending for the same row lock.
func (s *MemoryStore) InTx(ctx context.Context, fn func(r *Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.txRepos); err != nil {
		*s.data = *snapshot
		return err
	}

	return nil
}

// acquire returns the matching unlock, or a no-op when the atomic scope
// already holds the store lock.
func (s *MemoryStore) acquire(locking bool) func() {
	if !locking {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ---------- users ----------

type memUsers struct {
	s       *MemoryStore
	locking bool
}

func (r *memUsers) Create(ctx context.Context, user *entity.User) error {
	defer r.s.acquire(r.locking)()
	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user %s: duplicate email", user.Email)
		}
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *memUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	defer r.s.acquire(r.locking)()
	if user, ok := r.s.data.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	defer r.s.acquire(r.locking)()
	for _, user := range r.s.data.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, nil
}

func (r *memUsers) FindAll(ctx context.Context) ([]*entity.User, error) {
	defer r.s.acquire(r.locking)()
	users := make([]*entity.User, 0, len(r.s.data.users))
	for _, user := range r.s.data.users {
		u := user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *memUsers) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.acquire(r.locking)()
	if _, ok := r.s.data.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id.String(), ErrNotFound)
	}
	delete(r.s.data.users, id)
	return nil
}

func (r *memUsers) CountCustomers(ctx context.Context) (int64, error) {
	defer r.s.acquire(r.locking)()
	var count int64
	for _, user := range r.s.data.users {
		if !user.IsAdmin {
			count++
		}
	}
	return count, nil
}

// ---------- categories ----------

type memCategories struct {
	s       *MemoryStore
	locking bool
}

func (r *memCategories) Create(ctx context.Context, category *entity.Category) error {
	defer r.s.acquire(r.locking)()
	r.s.data.categories[category.ID] = *category
	return nil
}

func (r *memCategories) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	defer r.s.acquire(r.locking)()
	if category, ok := r.s.data.categories[id]; ok {
		return &category, nil
	}
	return nil, nil
}

func (r *memCategories) FindAll(ctx context.Context) ([]*entity.Category, error) {
	defer r.s.acquire(r.locking)()
	categories := make([]*entity.Category, 0, len(r.s.data.categories))
	for _, category := range r.s.data.categories {
		c := category
		categories = append(categories, &c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// ---------- events ----------

type memEvents struct {
	s       *MemoryStore
	locking bool
}

func (r *memEvents) Create(ctx context.Context, event *entity.Event) error {
	defer r.s.acquire(r.locking)()
	r.s.data.events[event.ID] = *event
	return nil
}

func (r *memEvents) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	defer r.s.acquire(r.locking)()
	if event, ok := r.s.data.events[id]; ok {
		return &event, nil
	}
	return nil, nil
}

// LockByID is a plain read here: the atomic scope already holds the store
// lock, which is coarser than a row lock.
func (r *memEvents) LockByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	return r.FindByID(ctx, id)
}

func (r *memEvents) sorted(filter func(*entity.Event) bool) []*entity.Event {
	var events []*entity.Event
	for _, event := range r.s.data.events {
		e := event
		if filter(&e) {
			events = append(events, &e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartsAt().Before(events[j].StartsAt())
	})
	return events
}

func published(e *entity.Event) bool {
	return e.Status == entity.EventStatusUpcoming || e.Status == entity.EventStatusOngoing
}

func (r *memEvents) FindPublished(ctx context.Context, limit int) ([]*entity.Event, error) {
	defer r.s.acquire(r.locking)()
	events := r.sorted(published)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *memEvents) Search(ctx context.Context, query string) ([]*entity.Event, error) {
	defer r.s.acquire(r.locking)()
	needle := strings.ToLower(query)
	return r.sorted(func(e *entity.Event) bool {
		if !published(e) {
			return false
		}
		if strings.Contains(strings.ToLower(e.Title), needle) {
			return true
		}
		if e.Description != nil && strings.Contains(strings.ToLower(*e.Description), needle) {
			return true
		}
		if e.CategoryID != nil {
			if category, ok := r.s.data.categories[*e.CategoryID]; ok {
				return strings.Contains(strings.ToLower(category.Name), needle)
			}
		}
		return false
	}), nil
}

func (r *memEvents) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]*entity.Event, error) {
	defer r.s.acquire(r.locking)()
	return r.sorted(func(e *entity.Event) bool {
		return published(e) && e.CategoryID != nil && *e.CategoryID == categoryID
	}), nil
}

func (r *memEvents) FindAll(ctx context.Context) ([]*entity.Event, error) {
	defer r.s.acquire(r.locking)()
	return r.sorted(func(*entity.Event) bool { return true }), nil
}

func (r *memEvents) Update(ctx context.Context, event *entity.Event) error {
	defer r.s.acquire(r.locking)()
	if _, ok := r.s.data.events[event.ID]; !ok {
		return fmt.Errorf("event %s: %w", event.ID.String(), ErrNotFound)
	}
	r.s.data.events[event.ID] = *event
	return nil
}

func (r *memEvents) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.acquire(r.locking)()
	if _, ok := r.s.data.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id.String(), ErrNotFound)
	}
	delete(r.s.data.events, id)
	return nil
}

func (r *memEvents) Count(ctx context.Context) (int64, error) {
	defer r.s.acquire(r.locking)()
	return int64(len(r.s.data.events)), nil
}

func (r *memEvents) CountUpcoming(ctx context.Context) (int64, error) {
	defer r.s.acquire(r.locking)()
	var count int64
	for _, event := range r.s.data.events {
		if event.Status == entity.EventStatusUpcoming && !event.Date.Before(startOfDay(time.Now())) {
			count++
		}
	}
	return count, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ---------- ledger ----------

type memLedger struct {
	s       *MemoryStore
	locking bool
}

func (l *memLedger) Reserve(ctx context.Context, eventID uuid.UUID, quantity int) error {
	defer l.s.acquire(l.locking)()
	event, ok := l.s.data.events[eventID]
	if !ok {
		return fmt.Errorf("event %s: %w", eventID.String(), ErrNotFound)
	}
	if event.AvailableTickets < quantity {
		return ErrInsufficientTickets
	}
	event.AvailableTickets -= quantity
	event.UpdatedAt = time.Now()
	l.s.data.events[eventID] = event
	return nil
}

func (l *memLedger) Release(ctx context.Context, eventID uuid.UUID, quantity int) error {
	defer l.s.acquire(l.locking)()
	event, ok := l.s.data.events[eventID]
	if !ok {
		return fmt.Errorf("event %s: %w", eventID.String(), ErrNotFound)
	}
	event.AvailableTickets += quantity
	event.UpdatedAt = time.Now()
	l.s.data.events[eventID] = event
	return nil
}

// ---------- bookings ----------

type memBookings struct {
	s       *MemoryStore
	locking bool
}

func (r *memBookings) Create(ctx context.Context, booking *entity.Booking) error {
	defer r.s.acquire(r.locking)()
	r.s.data.bookings[booking.ID] = *booking
	return nil
}

func (r *memBookings) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	defer r.s.acquire(r.locking)()
	if booking, ok := r.s.data.bookings[id]; ok {
		return &booking, nil
	}
	return nil, nil
}

func (r *memBookings) sorted(filter func(*entity.Booking) bool) []*entity.Booking {
	var bookings []*entity.Booking
	for _, booking := range r.s.data.bookings {
		b := booking
		if filter(&b) {
			bookings = append(bookings, &b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings
}

func (r *memBookings) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	defer r.s.acquire(r.locking)()
	return r.sorted(func(b *entity.Booking) bool { return b.UserID == userID }), nil
}

func (r *memBookings) FindAll(ctx context.Context) ([]*entity.Booking, error) {
	defer r.s.acquire(r.locking)()
	return r.sorted(func(*entity.Booking) bool { return true }), nil
}

func (r *memBookings) FindCreatedSince(ctx context.Context, since time.Time, limit int) ([]*entity.Booking, error) {
	defer r.s.acquire(r.locking)()
	bookings := r.sorted(func(b *entity.Booking) bool { return !b.CreatedAt.Before(since) })
	if limit > 0 && len(bookings) > limit {
		bookings = bookings[:limit]
	}
	return bookings, nil
}

func (r *memBookings) SumConfirmedTickets(ctx context.Context, userID, eventID uuid.UUID) (int, error) {
	defer r.s.acquire(r.locking)()
	var total int
	for _, booking := range r.s.data.bookings {
		if booking.UserID == userID && booking.EventID == eventID && booking.Status == entity.BookingStatusConfirmed {
			total += booking.TicketsCount
		}
	}
	return total, nil
}

func (r *memBookings) CountByEventID(ctx context.Context, eventID uuid.UUID) (int64, error) {
	defer r.s.acquire(r.locking)()
	var count int64
	for _, booking := range r.s.data.bookings {
		if booking.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *memBookings) CountConfirmedByEventID(ctx context.Context, eventID uuid.UUID) (int64, error) {
	defer r.s.acquire(r.locking)()
	var count int64
	for _, booking := range r.s.data.bookings {
		if booking.EventID == eventID && booking.Status == entity.BookingStatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (r *memBookings) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus, paymentStatus entity.PaymentStatus) error {
	defer r.s.acquire(r.locking)()
	booking, ok := r.s.data.bookings[id]
	if !ok || booking.Status != from {
		return fmt.Errorf("booking %s not in status %s: %w", id.String(), string(from), ErrNotFound)
	}
	booking.Status = to
	booking.PaymentStatus = paymentStatus
	booking.UpdatedAt = time.Now()
	r.s.data.bookings[id] = booking
	return nil
}

func (r *memBookings) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.acquire(r.locking)()
	if _, ok := r.s.data.bookings[id]; !ok {
		return fmt.Errorf("booking %s: %w", id.String(), ErrNotFound)
	}
	delete(r.s.data.bookings, id)
	return nil
}

func (r *memBookings) SummaryByUserID(ctx context.Context, userID uuid.UUID) (int64, float64, error) {
	defer r.s.acquire(r.locking)()
	var count int64
	var spent float64
	for _, booking := range r.s.data.bookings {
		if booking.UserID != userID {
			continue
		}
		count++
		if booking.Status == entity.BookingStatusConfirmed {
			spent += booking.TotalAmount
		}
	}
	return count, spent, nil
}

func (r *memBookings) CountConfirmed(ctx context.Context) (int64, error) {
	defer r.s.acquire(r.locking)()
	var count int64
	for _, booking := range r.s.data.bookings {
		if booking.Status == entity.BookingStatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (r *memBookings) CountConfirmedSince(ctx context.Context, since time.Time) (int64, error) {
	defer r.s.acquire(r.locking)()
	var count int64
	for _, booking := range r.s.data.bookings {
		if booking.Status == entity.BookingStatusConfirmed && !booking.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memBookings) Revenue(ctx context.Context) (float64, error) {
	defer r.s.acquire(r.locking)()
	var total float64
	for _, booking := range r.s.data.bookings {
		if booking.Status == entity.BookingStatusConfirmed && booking.PaymentStatus == entity.PaymentStatusPaid {
			total += booking.TotalAmount
		}
	}
	return total, nil
}

func (r *memBookings) RevenueSince(ctx context.Context, since time.Time) (float64, error) {
	defer r.s.acquire(r.locking)()
	var total float64
	for _, booking := range r.s.data.bookings {
		if booking.Status == entity.BookingStatusConfirmed &&
			booking.PaymentStatus == entity.PaymentStatusPaid &&
			!booking.CreatedAt.Before(since) {
			total += booking.TotalAmount
		}
	}
	return total, nil
}

// ---------- payments ----------

type memPayments struct {
	s       *MemoryStore
	locking bool
}

func (r *memPayments) Create(ctx context.Context, payment *entity.Payment) error {
	defer r.s.acquire(r.locking)()
	r.s.data.payments[payment.ID] = *payment
	return nil
}

func (r *memPayments) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	defer r.s.acquire(r.locking)()
	for _, payment := range r.s.data.payments {
		if payment.BookingID == bookingID {
			p := payment
			return &p, nil
		}
	}
	return nil, nil
}

func (r *memPayments) UpdateStatusByBookingID(ctx context.Context, bookingID uuid.UUID, status entity.TransactionStatus) error {
	defer r.s.acquire(r.locking)()
	for id, payment := range r.s.data.payments {
		if payment.BookingID == bookingID {
			payment.Status = status
			payment.UpdatedAt = time.Now()
			r.s.data.payments[id] = payment
			return nil
		}
	}
	return fmt.Errorf("payment for booking %s: %w", bookingID.String(), ErrNotFound)
}

func (r *memPayments) DeleteByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	defer r.s.acquire(r.locking)()
	for id, payment := range r.s.data.payments {
		if payment.BookingID == bookingID {
			delete(r.s.data.payments, id)
			return nil
		}
	}
	return nil
}
