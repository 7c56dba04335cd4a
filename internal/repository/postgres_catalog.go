package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

type PostgresCatalogRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCatalogRepository(db *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db: db,
	}
}

func (p *PostgresCatalogRepository) GetSeatsByShowtime(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
	query := `
		SELECT
			m.title,
			t.name AS theater_name,
			h.name AS hall_name,
			sh.start_time,
			sh.base_price,
			se.id AS seat_id,
			se.seat_row,
			se.seat_col,
			se.seat_type,
			se.extra_price
		FROM showtimes sh
		JOIN movies m
			ON sh.movie_id = m.id
		JOIN halls h
			ON sh.hall_id = h.id
		JOIN theaters t
			ON h.theater_id = t.id
		JOIN seats se
			ON se.hall_id = h.id
		WHERE sh.id = $1
		ORDER BY se.seat_row, se.seat_col
	`

	return p.querySeats(ctx, query, showtimeID)
}

func (p *PostgresCatalogRepository) GetSeatsByShowtimeAndSeatIds(
	ctx context.Context,
	showtimeID int,
	seatIDs []int) (*domain.ShowtimeSeats, error) {

	query := `
		SELECT
			m.title,
			t.name AS theater_name,
			h.name AS hall_name,
			sh.start_time,
			sh.base_price,
			se.id AS seat_id,
			se.seat_row,
			se.seat_col,
			se.seat_type,
			se.extra_price
		FROM showtimes sh
		JOIN movies m
			ON sh.movie_id = m.id
		JOIN halls h
			ON sh.hall_id = h.id
		JOIN theaters t
			ON h.theater_id = t.id
		JOIN seats se
			ON se.hall_id = h.id
		WHERE sh.id = $1 AND se.id = ANY($2)
		ORDER BY se.seat_row, se.seat_col
	`

	return p.querySeats(ctx, query, showtimeID, seatIDs)
}

func (p *PostgresCatalogRepository) querySeats(ctx context.Context, query string, args ...any) (*domain.ShowtimeSeats, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimeSeats := domain.ShowtimeSeats{}

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&showtimeSeats.MovieTitle,
			&showtimeSeats.TheaterName,
			&showtimeSeats.HallName,
			&showtimeSeats.StartTime,
			&seat.BasePrice,
			&seat.ID,
			&seat.Row,
			&seat.Col,
			&seat.Type,
			&seat.Surcharge,
		)
		if err != nil {
			return nil, err
		}

		showtimeSeats.Seats = append(showtimeSeats.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &showtimeSeats, nil
}

func (p *PostgresCatalogRepository) GetCombosByIds(ctx context.Context, comboIDs []int) ([]domain.Combo, error) {
	query := `
		SELECT id, name, price
		FROM combos
		WHERE id = ANY($1) AND active = TRUE
	`

	rows, err := p.db.Query(ctx, query, comboIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	combos := make([]domain.Combo, 0, len(comboIDs))

	for rows.Next() {
		var combo domain.Combo

		err = rows.Scan(&combo.ID, &combo.Name, &combo.Price)
		if err != nil {
			return nil, err
		}

		combos = append(combos, combo)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return combos, nil
}
