package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

type PostgresSessionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSessionRepository(db *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{
		db: db,
	}
}

// sessionSnapshot is the persisted form of the session's item lists and
// pricing. It only exists at this boundary; business logic always works on
// the typed session fields.
type sessionSnapshot struct {
	SchemaVersion int                     `json:"schema_version"`
	Seats         []domain.SeatSelection  `json:"seats"`
	Combos        []domain.ComboSelection `json:"combos"`
	Pricing       domain.PricingBreakdown `json:"pricing"`
	VoucherCode   string                  `json:"voucher_code,omitempty"`
}

func (p *PostgresSessionRepository) Insert(ctx context.Context, session *domain.BookingSession) error {
	snapshot, err := encodeSnapshot(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO booking_sessions (
			id,
			showtime_id,
			user_id,
			state,
			snapshot,
			version,
			created_at,
			expires_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = p.db.Exec(
		ctx,
		query,
		session.ID,
		session.ShowtimeID,
		session.UserID,
		session.State,
		snapshot,
		session.Version,
		session.CreatedAt,
		session.ExpiresAt,
		session.UpdatedAt,
	)

	return err
}

func (p *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.BookingSession, error) {
	query := `
		SELECT id, showtime_id, user_id, state, snapshot, version, created_at, expires_at, updated_at
		FROM booking_sessions
		WHERE id = $1
	`

	var session domain.BookingSession
	var rawSnapshot []byte

	err := p.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.ShowtimeID,
		&session.UserID,
		&session.State,
		&rawSnapshot,
		&session.Version,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	decodeSnapshot(rawSnapshot, &session)

	return &session, nil
}

// Update persists the session with compare-and-set on the version column.
// A lost race surfaces as ErrEditConflict, never as a silent overwrite.
func (p *PostgresSessionRepository) Update(ctx context.Context, session *domain.BookingSession) error {
	snapshot, err := encodeSnapshot(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE booking_sessions
		SET state = $1, snapshot = $2, expires_at = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6
	`

	tag, err := p.db.Exec(
		ctx,
		query,
		session.State,
		snapshot,
		session.ExpiresAt,
		session.UpdatedAt,
		session.ID,
		session.Version,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEditConflict
	}

	session.Version++

	return nil
}

func encodeSnapshot(session *domain.BookingSession) ([]byte, error) {
	return json.Marshal(sessionSnapshot{
		SchemaVersion: domain.PricingSchemaVersion,
		Seats:         session.Seats,
		Combos:        session.Combos,
		Pricing:       session.Pricing,
		VoucherCode:   session.VoucherCode,
	})
}

// decodeSnapshot fills the session's typed fields from the stored document.
// A missing or malformed snapshot degrades to an empty breakdown; it is
// never treated as a fatal error.
func decodeSnapshot(raw []byte, session *domain.BookingSession) {
	session.Pricing = domain.EmptyPricingBreakdown()

	if len(raw) == 0 {
		return
	}

	var snapshot sessionSnapshot

	err := json.Unmarshal(raw, &snapshot)
	if err != nil {
		return
	}

	session.Seats = snapshot.Seats
	session.Combos = snapshot.Combos
	session.Pricing = snapshot.Pricing
	session.VoucherCode = snapshot.VoucherCode
}
