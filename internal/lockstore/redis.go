// Package lockstore implements the seat lock store on Redis. Locks are
// advisory leases with a TTL; the only durable state change is the one-way
// conversion of a hold into a sold seat. All multi-key transitions run as Lua
// scripts so two concurrent callers can never both succeed on the same seat.
package lockstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	maxAttempts  = 3
	retryBackoff = 50 * time.Millisecond
)

var acquireSeatsScript = redis.NewScript(`
	-- KEYS = seat lock keys
	-- ARGV = [sessionID, ttlSeconds, showtimeID, seatID...]

	local soldKey = "sold_seats:" .. ARGV[3]

	for i = 1, #KEYS do
		if redis.call("SISMEMBER", soldKey, ARGV[3 + i]) == 1 then
			return {err = "seat already sold"}
		end
		if redis.call("EXISTS", KEYS[i]) == 1 then
			return {err = "seat already locked"}
		end
	end

	for i = 1, #KEYS do
		redis.call("SET", KEYS[i], ARGV[1], "EX", ARGV[2])
		redis.call("SADD", "seat_locks:" .. ARGV[3], ARGV[3 + i])
	end

	redis.call("SADD", "seat_lock_showtimes", ARGV[3])

	return redis.status_reply("OK")
`)

var renewHoldScript = redis.NewScript(`
	-- KEYS = seat lock keys
	-- ARGV = [sessionID, ttlSeconds]

	for i = 1, #KEYS do
		local owner = redis.call("GET", KEYS[i])
		if not owner then
			return {err = "hold expired"}
		end
		if owner ~= ARGV[1] then
			return {err = "hold not owned"}
		end
	end

	for i = 1, #KEYS do
		redis.call("EXPIRE", KEYS[i], ARGV[2])
	end

	return redis.status_reply("OK")
`)

var releaseHoldScript = redis.NewScript(`
	-- KEYS = seat lock keys
	-- ARGV = [sessionID, showtimeID, seatID...]
	-- Deletes only locks still owned by the session, so a newer lock taken
	-- by another customer after expiry is never released by accident.

	local released = {}

	for i = 1, #KEYS do
		local owner = redis.call("GET", KEYS[i])
		if owner == ARGV[1] then
			redis.call("DEL", KEYS[i])
			redis.call("SREM", "seat_locks:" .. ARGV[2], ARGV[2 + i])
			table.insert(released, ARGV[2 + i])
		end
	end

	return released
`)

var convertToSoldScript = redis.NewScript(`
	-- KEYS = [seat lock key]
	-- ARGV = [sessionID, showtimeID, seatID]

	local owner = redis.call("GET", KEYS[1])
	if not owner then
		return {err = "hold expired"}
	end
	if owner ~= ARGV[1] then
		return {err = "hold not owned"}
	end

	redis.call("SADD", "sold_seats:" .. ARGV[2], ARGV[3])
	redis.call("DEL", KEYS[1])
	redis.call("SREM", "seat_locks:" .. ARGV[2], ARGV[3])

	return redis.status_reply("OK")
`)

// sweepShowtimeScript walks the per-showtime index set and removes entries
// whose lock key has already expired, returning the reclaimed seat IDs.
var sweepShowtimeScript = redis.NewScript(`
	local setKey = KEYS[1]
	local showtimeId = ARGV[1]
	local cursor = "0"
	local expired = {}

	repeat
		local result = redis.call("SSCAN", setKey, cursor, "COUNT", 100)
		cursor = result[1]
		local seatIds = result[2]

		for _, seatId in ipairs(seatIds) do
			if redis.call("EXISTS", "seat_lock:" .. showtimeId .. ":" .. seatId) == 0 then
				table.insert(expired, seatId)
			end
		end
	until cursor == "0"

	if #expired > 0 then
		redis.call("SREM", setKey, unpack(expired))
	end

	if redis.call("SCARD", setKey) == 0 then
		redis.call("SREM", "seat_lock_showtimes", showtimeId)
	end

	return expired
`)

// validLockedSeatsScript returns the seat IDs from the index set whose lock
// key is still live, cleaning up expired entries on the way.
var validLockedSeatsScript = redis.NewScript(`
	local setKey = KEYS[1]
	local showtimeId = ARGV[1]
	local cursor = "0"
	local expired = {}
	local valid = {}

	repeat
		local result = redis.call("SSCAN", setKey, cursor, "COUNT", 100)
		cursor = result[1]
		local seatIds = result[2]

		for _, seatId in ipairs(seatIds) do
			if redis.call("EXISTS", "seat_lock:" .. showtimeId .. ":" .. seatId) == 0 then
				table.insert(expired, seatId)
			else
				table.insert(valid, seatId)
			end
		end
	until cursor == "0"

	if #expired > 0 then
		redis.call("SREM", setKey, unpack(expired))
	end

	return valid
`)

type RedisSeatLockStore struct {
	redis     redis.UniversalClient
	publisher domain.SeatEventPublisher
	logger    *slog.Logger
}

func NewRedisSeatLockStore(client redis.UniversalClient, publisher domain.SeatEventPublisher, logger *slog.Logger) *RedisSeatLockStore {
	return &RedisSeatLockStore{
		redis:     client,
		publisher: publisher,
		logger:    logger,
	}
}

func seatLockKey(showtimeID, seatID int) string {
	return fmt.Sprintf("seat_lock:%d:%d", showtimeID, seatID)
}

func seatSetKey(showtimeID int) string {
	return fmt.Sprintf("seat_locks:%d", showtimeID)
}

func soldSetKey(showtimeID int) string {
	return fmt.Sprintf("sold_seats:%d", showtimeID)
}

const showtimeSetKey = "seat_lock_showtimes"

func (s *RedisSeatLockStore) AcquireHolds(
	ctx context.Context,
	showtimeID int,
	seatIDs []int,
	sessionID string,
	ttl time.Duration) (*domain.Hold, error) {

	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("seat list must not be empty")
	}

	keys := make([]string, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+3)
	args = append(args, sessionID, int(ttl.Seconds()), showtimeID)

	for i, seatID := range seatIDs {
		keys[i] = seatLockKey(showtimeID, seatID)
		args = append(args, seatID)
	}

	now := time.Now()

	err := s.withRetry(ctx, func() error {
		return acquireSeatsScript.Run(ctx, s.redis, keys, args...).Err()
	})
	if err != nil {
		if redis.HasErrorPrefix(err, "seat already locked") || redis.HasErrorPrefix(err, "seat already sold") {
			return nil, domain.ErrSeatUnavailable
		}

		return nil, err
	}

	for _, seatID := range seatIDs {
		s.publish(ctx, showtimeID, seatID, domain.SeatEventLocked)
	}

	return &domain.Hold{
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDs,
		SessionID:  sessionID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

func (s *RedisSeatLockStore) RenewHold(ctx context.Context, hold *domain.Hold, ttl time.Duration) error {
	keys := make([]string, len(hold.SeatIDs))
	for i, seatID := range hold.SeatIDs {
		keys[i] = seatLockKey(hold.ShowtimeID, seatID)
	}

	err := renewHoldScript.Run(ctx, s.redis, keys, hold.SessionID, int(ttl.Seconds())).Err()
	if err != nil {
		switch {
		case redis.HasErrorPrefix(err, "hold expired"):
			return domain.ErrHoldExpired
		case redis.HasErrorPrefix(err, "hold not owned"):
			return domain.ErrHoldNotFound
		}

		return err
	}

	hold.ExpiresAt = time.Now().Add(ttl)

	return nil
}

func (s *RedisSeatLockStore) ReleaseHold(ctx context.Context, hold *domain.Hold) error {
	keys := make([]string, len(hold.SeatIDs))
	args := make([]interface{}, 0, len(hold.SeatIDs)+2)
	args = append(args, hold.SessionID, hold.ShowtimeID)

	for i, seatID := range hold.SeatIDs {
		keys[i] = seatLockKey(hold.ShowtimeID, seatID)
		args = append(args, seatID)
	}

	var released []int64

	err := s.withRetry(ctx, func() error {
		cmd := releaseHoldScript.Run(ctx, s.redis, keys, args...)

		var runErr error
		released, runErr = cmd.Int64Slice()

		return runErr
	})
	if err != nil {
		return err
	}

	for _, seatID := range released {
		s.publish(ctx, hold.ShowtimeID, int(seatID), domain.SeatEventReleased)
	}

	return nil
}

func (s *RedisSeatLockStore) ConvertToSold(ctx context.Context, showtimeID, seatID int, sessionID string) error {
	key := seatLockKey(showtimeID, seatID)

	err := convertToSoldScript.Run(ctx, s.redis, []string{key}, sessionID, showtimeID, seatID).Err()
	if err != nil {
		switch {
		case redis.HasErrorPrefix(err, "hold expired"):
			return domain.ErrHoldExpired
		case redis.HasErrorPrefix(err, "hold not owned"):
			return domain.ErrHoldNotFound
		}

		return err
	}

	return nil
}

func (s *RedisSeatLockStore) HeldBy(ctx context.Context, showtimeID int, seatIDs []int) (map[int]string, error) {
	owners := make(map[int]string, len(seatIDs))

	for _, seatID := range seatIDs {
		owner, err := s.redis.Get(ctx, seatLockKey(showtimeID, seatID)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}

			return nil, err
		}

		owners[seatID] = owner
	}

	return owners, nil
}

func (s *RedisSeatLockStore) LockedSeatIDs(ctx context.Context, showtimeID int) ([]int, error) {
	cmd := validLockedSeatsScript.Run(ctx, s.redis, []string{seatSetKey(showtimeID)}, showtimeID)

	ids, err := cmd.Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to list valid seat locks: %w", err)
	}

	return toIntSlice(ids), nil
}

func (s *RedisSeatLockStore) SoldSeatIDs(ctx context.Context, showtimeID int) ([]int, error) {
	members, err := s.redis.SMembers(ctx, soldSetKey(showtimeID)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(members))
	for _, member := range members {
		id, err := strconv.Atoi(member)
		if err != nil {
			return nil, fmt.Errorf("malformed sold seat entry %q: %w", member, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func (s *RedisSeatLockStore) Sweep(ctx context.Context) (int, error) {
	showtimes, err := s.redis.SMembers(ctx, showtimeSetKey).Result()
	if err != nil {
		return 0, err
	}

	swept := 0

	for _, member := range showtimes {
		showtimeID, err := strconv.Atoi(member)
		if err != nil {
			s.logger.Error("skipping malformed showtime index entry", "entry", member)
			continue
		}

		cmd := sweepShowtimeScript.Run(ctx, s.redis, []string{seatSetKey(showtimeID)}, showtimeID)

		expired, err := cmd.Int64Slice()
		if err != nil {
			return swept, fmt.Errorf("sweep failed for showtime %d: %w", showtimeID, err)
		}

		for _, seatID := range expired {
			s.publish(ctx, showtimeID, int(seatID), domain.SeatEventReleased)
		}

		swept += len(expired)
	}

	return swept, nil
}

func (s *RedisSeatLockStore) publish(ctx context.Context, showtimeID, seatID int, kind domain.SeatEventKind) {
	event := domain.SeatStateEvent{
		ShowtimeID: showtimeID,
		SeatID:     seatID,
		Kind:       kind,
		Timestamp:  time.Now(),
	}

	err := s.publisher.Publish(ctx, event)
	if err != nil {
		s.logger.Error("failed to publish seat event", "showtime_id", showtimeID, "seat_id", seatID, "kind", kind, "error", err)
	}
}

// withRetry retries transient storage failures a bounded number of times.
// Domain-level rejections come back as Redis error replies and are not
// retried.
func (s *RedisSeatLockStore) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || redis.HasErrorPrefix(err, "seat already locked") ||
			redis.HasErrorPrefix(err, "seat already sold") {
			return err
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	return err
}

func toIntSlice(ids []int64) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}

	return out
}
