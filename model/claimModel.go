package model

import "time"

type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "PENDING"
	ClaimCompleted ClaimStatus = "COMPLETED"
	ClaimFailed    ClaimStatus = "FAILED"

	// ClaimRefundPending marks a paid claim whose reservation was released
	// but whose refund has not reached the ledger yet.
	ClaimRefundPending ClaimStatus = "REFUND_PENDING"
)

// ReservationClaim ties a reservation attempt to the payment expected on the ledger.
// Memo is the correlation id the payer must attach to the transfer.
type ReservationClaim struct {
	Memo       uint64      `json:"memo"`
	VehicleID  string      `json:"vehicle_id"`
	Claimant   string      `json:"claimant"`
	Amount     uint64      `json:"amount"`
	BlockIndex *uint64     `json:"block_index,omitempty"`
	Status     ClaimStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
