package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			session_id,
			user_id,
			email,
			order_ref,
			amount,
			currency,
			status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.SessionID,
		payment.UserID,
		payment.Email,
		payment.OrderRef,
		payment.Amount,
		payment.Currency,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt)

	return err
}

func (p *PostgresPaymentRepository) GetByOrderRef(ctx context.Context, orderRef string) (*domain.Payment, error) {
	query := `
		SELECT id, session_id, user_id, email, order_ref, amount, currency, status, error_message, payment_date, created_at, updated_at
		FROM payments
		WHERE order_ref = $1
	`

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, orderRef).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.UserID,
		&payment.Email,
		&payment.OrderRef,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.ErrorMsg,
		&payment.PaymentDate,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &payment, nil
}

func (p *PostgresPaymentRepository) UpdateStatus(
	ctx context.Context,
	orderRef string,
	status domain.PaymentStatus,
	errMsg string) error {

	query := `
		UPDATE payments
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE order_ref = $3
	`

	_, err := p.db.Exec(ctx, query, status, errMsg, orderRef)

	return err
}
