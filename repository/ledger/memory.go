package ledgerrepo

import (
	"context"
	"sync"
)

// Memory is an append-only ledger kept in process. Transfers issued through
// Client are recorded as sent from Owner.
type Memory struct {
	mu          sync.RWMutex
	blocks      []Block
	fee         uint64
	owner       []byte
	transferErr error
}

func NewMemory(owner []byte, fee uint64) *Memory {
	return &Memory{owner: append([]byte(nil), owner...), fee: fee}
}

// Append records an external transfer and returns its block index.
func (m *Memory) Append(from, to []byte, amount, memo uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(from, to, amount, memo)
}

// AppendEmpty records a block without a transfer operation.
func (m *Memory) AppendEmpty(memo uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := uint64(len(m.blocks))
	m.blocks = append(m.blocks, Block{Index: idx, Memo: memo})
	return idx
}

func (m *Memory) appendLocked(from, to []byte, amount, memo uint64) uint64 {
	idx := uint64(len(m.blocks))
	m.blocks = append(m.blocks, Block{
		Index: idx,
		Memo:  memo,
		Transfer: &Transfer{
			From:   append([]byte(nil), from...),
			To:     append([]byte(nil), to...),
			Amount: amount,
		},
	})
	return idx
}

// FailTransfers makes every following Transfer return err; nil restores normal behaviour.
func (m *Memory) FailTransfers(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transferErr = err
}

func (m *Memory) TransferFee(context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fee, nil
}

func (m *Memory) Transfer(_ context.Context, args TransferArgs) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transferErr != nil {
		return 0, m.transferErr
	}
	return m.appendLocked(m.owner, args.To, args.Amount, args.Memo), nil
}

func (m *Memory) QueryBlocks(_ context.Context, start, length uint64) ([]Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := uint64(len(m.blocks))
	if start >= n {
		return nil, nil
	}
	end := min(start+length, n)
	out := make([]Block, end-start)
	copy(out, m.blocks[start:end])
	return out, nil
}

// Blocks returns a snapshot of the chain.
func (m *Memory) Blocks() []Block {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Block(nil), m.blocks...)
}
