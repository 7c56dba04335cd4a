// Package api holds the request and response types of the public HTTP surface.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeatState describes how a seat appears on the live seat map.
type SeatState string

const (
	SeatAvailable SeatState = "AVAILABLE"
	SeatLocked    SeatState = "LOCKED"
	SeatSold      SeatState = "SOLD"
)

type CreateSessionRequest struct {
	SeatIdList  []int `json:"seatIdList" validate:"required,min=1,max=8,dive,gt=0"`
	ComboIdList []int `json:"comboIdList" validate:"omitempty,max=10,dive,gt=0"`
}

type UpdateSelectionRequest struct {
	SeatIdList  []int `json:"seatIdList" validate:"required,min=1,max=8,dive,gt=0"`
	ComboIdList []int `json:"comboIdList" validate:"omitempty,max=10,dive,gt=0"`
}

type ApplyVoucherRequest struct {
	Code string `json:"code" validate:"required,voucher_code"`
}

type CheckoutRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PaymentCallbackRequest is posted by the payment gateway adapter once the
// gateway reports an outcome for an order.
type PaymentCallbackRequest struct {
	OrderRef string `json:"orderRef" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=success failure"`
	Reason   string `json:"reason"`
}

type SessionSeat struct {
	Id        int             `json:"id"`
	Row       int             `json:"row"`
	Column    int             `json:"column"`
	Type      string          `json:"type"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

type SessionCombo struct {
	Id    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Pricing struct {
	SeatsSubtotal     decimal.Decimal `json:"seatsSubtotal"`
	CombosSubtotal    decimal.Decimal `json:"combosSubtotal"`
	SurchargeSubtotal decimal.Decimal `json:"surchargeSubtotal"`
	Fees              decimal.Decimal `json:"fees"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
}

type BookingSession struct {
	SessionId   string         `json:"sessionId"`
	ShowtimeId  int            `json:"showtimeId"`
	State       string         `json:"state"`
	Seats       []SessionSeat  `json:"seats"`
	Combos      []SessionCombo `json:"combos"`
	Pricing     Pricing        `json:"pricing"`
	VoucherCode string         `json:"voucherCode,omitempty"`
	ExpiresAt   time.Time      `json:"expiresAt"`
}

type SessionResponse struct {
	Session BookingSession `json:"session"`
}

type VoucherResponse struct {
	Session BookingSession `json:"session"`
	Message string         `json:"message,omitempty"`
}

type CheckoutResponse struct {
	OrderRef    string `json:"orderRef"`
	RedirectUrl string `json:"redirectUrl"`
}

type SeatMapSeat struct {
	Id     int       `json:"id"`
	Row    int       `json:"row"`
	Column int       `json:"column"`
	Type   string    `json:"type"`
	State  SeatState `json:"state"`
}

type SeatRow struct {
	Row   int           `json:"row"`
	Seats []SeatMapSeat `json:"seats"`
}

type SeatMapResponse struct {
	ShowtimeId  int       `json:"showtimeId"`
	MovieName   string    `json:"movieName"`
	TheaterName string    `json:"theaterName"`
	HallName    string    `json:"hallName"`
	StartTime   time.Time `json:"startTime"`
	SeatRows    []SeatRow `json:"seatRows"`
}

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
