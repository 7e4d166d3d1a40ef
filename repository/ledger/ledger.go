package ledgerrepo

import (
	"context"
	"errors"
)

// ErrTransfer is returned when the ledger rejects a transfer.
var ErrTransfer = errors.New("ledger transfer rejected")

// Transfer is the single operation a block may carry. Addresses are binary
// account identifiers.
type Transfer struct {
	From   []byte
	To     []byte
	Amount uint64
}

type Block struct {
	Index    uint64
	Memo     uint64
	Transfer *Transfer
}

type TransferArgs struct {
	To     []byte
	Amount uint64
	Fee    uint64
	Memo   uint64
}

// Client is the subset of the ledger API the service consumes.
type Client interface {
	TransferFee(ctx context.Context) (uint64, error)
	// Transfer returns the index of the block recording the transfer.
	Transfer(ctx context.Context, args TransferArgs) (uint64, error)
	QueryBlocks(ctx context.Context, start, length uint64) ([]Block, error)
}
