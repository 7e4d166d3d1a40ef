package reservation

type PaymentReq struct {
	BlockIndex *uint64 `json:"block_index" validate:"required"`
}
