// Package stream fans seat state transitions out to live seat-map viewers.
// Events travel through Redis pub/sub so every service instance sees
// transitions made by its peers; each instance keeps one Redis subscription
// per showtime and distributes messages to its local subscribers. A slow
// subscriber is dropped rather than allowed to backpressure producers.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/redis/go-redis/v9"
)

const subscriberBuffer = 32

type Hub struct {
	redis       redis.UniversalClient
	lockStore   domain.SeatLockStore
	catalogRepo domain.CatalogRepository
	bookingRepo domain.BookingRepository
	logger      *slog.Logger

	mu    sync.Mutex
	feeds map[int]*feed
}

type feed struct {
	pubsub      *redis.PubSub
	subscribers map[*Subscriber]struct{}
}

// Subscriber receives events for one showtime from the subscription point
// forward. There is no history replay; callers take a snapshot first.
type Subscriber struct {
	C chan domain.SeatStateEvent

	showtimeID int
	closed     bool
}

type SeatStatus struct {
	SeatID int
	Row    int
	Col    int
	Type   string
	State  domain.SeatState
}

type Snapshot struct {
	ShowtimeID  int
	MovieTitle  string
	TheaterName string
	HallName    string
	StartTime   time.Time
	Seats       []SeatStatus
}

func NewHub(
	client redis.UniversalClient,
	lockStore domain.SeatLockStore,
	catalogRepo domain.CatalogRepository,
	bookingRepo domain.BookingRepository,
	logger *slog.Logger) *Hub {

	return &Hub{
		redis:       client,
		lockStore:   lockStore,
		catalogRepo: catalogRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
		feeds:       make(map[int]*feed),
	}
}

// SetLockStore wires the lock store after construction. The hub and the
// store reference each other: the store publishes through the hub, and the
// hub reads live lock state from the store when building snapshots.
func (h *Hub) SetLockStore(store domain.SeatLockStore) {
	h.lockStore = store
}

func eventChannel(showtimeID int) string {
	return fmt.Sprintf("seat_events:%d", showtimeID)
}

// Publish implements domain.SeatEventPublisher.
func (h *Hub) Publish(ctx context.Context, event domain.SeatStateEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return h.redis.Publish(ctx, eventChannel(event.ShowtimeID), payload).Err()
}

// Subscribe registers a live viewer for the showtime. The returned channel is
// closed when the viewer is dropped for falling behind or when Unsubscribe is
// called.
func (h *Hub) Subscribe(ctx context.Context, showtimeID int) (*Subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.feeds[showtimeID]
	if !ok {
		pubsub := h.redis.Subscribe(ctx, eventChannel(showtimeID))

		// Force the subscription to be established before we hand out
		// subscribers, so no event published after this call is missed.
		_, err := pubsub.Receive(ctx)
		if err != nil {
			pubsub.Close()
			return nil, err
		}

		f = &feed{
			pubsub:      pubsub,
			subscribers: make(map[*Subscriber]struct{}),
		}
		h.feeds[showtimeID] = f

		go h.fanOut(showtimeID, f)
	}

	sub := &Subscriber{
		C:          make(chan domain.SeatStateEvent, subscriberBuffer),
		showtimeID: showtimeID,
	}
	f.subscribers[sub] = struct{}{}

	return sub, nil
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(sub)
}

func (h *Hub) fanOut(showtimeID int, f *feed) {
	for msg := range f.pubsub.Channel() {
		var event domain.SeatStateEvent

		err := json.Unmarshal([]byte(msg.Payload), &event)
		if err != nil {
			h.logger.Error("discarding malformed seat event", "showtime_id", showtimeID, "error", err)
			continue
		}

		h.mu.Lock()
		for sub := range f.subscribers {
			select {
			case sub.C <- event:
			default:
				// Full buffer means the consumer stopped reading;
				// drop it instead of blocking the feed.
				h.logger.Warn("dropping slow seat-map subscriber", "showtime_id", showtimeID)
				h.dropLocked(sub)
			}
		}
		h.mu.Unlock()
	}
}

func (h *Hub) dropLocked(sub *Subscriber) {
	if sub.closed {
		return
	}

	f, ok := h.feeds[sub.showtimeID]
	if !ok {
		return
	}

	delete(f.subscribers, sub)
	sub.closed = true
	close(sub.C)

	if len(f.subscribers) == 0 {
		f.pubsub.Close()
		delete(h.feeds, sub.showtimeID)
	}
}

// BuildSnapshot returns a point-in-time view of every seat's state for the
// showtime: catalog layout overlaid with live locks and sold seats from both
// the lock store and the durable booking records.
func (h *Hub) BuildSnapshot(ctx context.Context, showtimeID int) (*Snapshot, error) {
	layout, err := h.catalogRepo.GetSeatsByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	if len(layout.Seats) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	locked, err := h.lockStore.LockedSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	sold, err := h.lockStore.SoldSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	booked, err := h.bookingRepo.GetSoldSeatIDs(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	states := make(map[int]domain.SeatState, len(layout.Seats))
	for _, seatID := range locked {
		states[seatID] = domain.SeatStateLocked
	}
	for _, seatID := range sold {
		states[seatID] = domain.SeatStateSold
	}
	for _, seatID := range booked {
		states[seatID] = domain.SeatStateSold
	}

	snapshot := &Snapshot{
		ShowtimeID:  showtimeID,
		MovieTitle:  layout.MovieTitle,
		TheaterName: layout.TheaterName,
		HallName:    layout.HallName,
		StartTime:   layout.StartTime,
		Seats:       make([]SeatStatus, len(layout.Seats)),
	}

	for i, seat := range layout.Seats {
		state, ok := states[seat.ID]
		if !ok {
			state = domain.SeatStateAvailable
		}

		snapshot.Seats[i] = SeatStatus{
			SeatID: seat.ID,
			Row:    seat.Row,
			Col:    seat.Col,
			Type:   seat.Type,
			State:  state,
		}
	}

	return snapshot, nil
}
