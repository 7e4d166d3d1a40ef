package paymentsvc

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ledgerrepo "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/repository/ledger"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/service/apperr"
	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/address"
)

// DefaultWindow is how many blocks Verify inspects from the claimed index.
const DefaultWindow uint64 = 1

type Service interface {
	// Verify reports whether exactly one block in the window records a transfer
	// of amount from payer to the service account carrying memo.
	Verify(ctx context.Context, payer string, amount, blockIndex, memo uint64) (bool, error)
	// IssueRefund sends amount to recipient with the network fee deducted from it.
	IssueRefund(ctx context.Context, recipient string, amount uint64) (uint64, error)
	ServiceAddress() address.Address
}

type service struct {
	ledger ledgerrepo.Client
	self   address.Address
	window uint64
	log    *slog.Logger
	tracer trace.Tracer
}

func New(l ledgerrepo.Client, servicePrincipal string, window uint64, log *slog.Logger) (Service, error) {
	self, err := address.FromPrincipal(servicePrincipal, address.DefaultSubaccount)
	if err != nil {
		return nil, fmt.Errorf("service principal: %w", err)
	}
	if window == 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{
		ledger: l,
		self:   self,
		window: window,
		log:    log,
		tracer: otel.Tracer("car-bazar/payment"),
	}, nil
}

func (s *service) ServiceAddress() address.Address { return s.self }

func (s *service) Verify(ctx context.Context, payer string, amount, blockIndex, memo uint64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "payment.verify")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.payer", payer),
		attribute.Int64("payment.block_index", int64(blockIndex)),
		attribute.String("payment.memo", strconv.FormatUint(memo, 10)),
	)

	from, err := address.FromPrincipal(payer, address.DefaultSubaccount)
	if err != nil {
		return false, apperr.Wrap(apperr.ErrInvalidPayload, "payer", err)
	}

	if blockIndex > math.MaxUint64-s.window {
		return false, apperr.Make(apperr.ErrInvalidPayload, fmt.Sprintf("block index %d is out of range", blockIndex))
	}

	blocks, err := s.ledger.QueryBlocks(ctx, blockIndex, s.window)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query_blocks failed")
		return false, fmt.Errorf("query blocks %d+%d: %w", blockIndex, s.window, err)
	}

	matched := make(map[uint64]struct{})
	for _, b := range blocks {
		if b.Index < blockIndex || b.Index >= blockIndex+s.window {
			continue
		}
		if s.matches(b, from, amount, memo) {
			matched[b.Index] = struct{}{}
		}
	}

	ok := len(matched) == 1
	if len(matched) > 1 {
		s.log.Warn("ambiguous payment match",
			"payer", payer,
			"memo", memo,
			"block_index", blockIndex,
			"matches", len(matched),
		)
	}
	span.SetAttributes(attribute.Bool("payment.verified", ok))
	return ok, nil
}

func (s *service) matches(b ledgerrepo.Block, from address.Address, amount, memo uint64) bool {
	tx := b.Transfer
	if tx == nil {
		return false
	}
	return b.Memo == memo &&
		address.Equal(from.Bytes(), tx.From) &&
		address.Equal(s.self.Bytes(), tx.To) &&
		tx.Amount == amount
}

func (s *service) IssueRefund(ctx context.Context, recipient string, amount uint64) (uint64, error) {
	ctx, span := s.tracer.Start(ctx, "payment.refund")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.recipient", recipient),
		attribute.Int64("payment.amount", int64(amount)),
	)

	to, err := address.FromPrincipal(recipient, address.DefaultSubaccount)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrInvalidPayload, "recipient", err)
	}

	fee, err := s.ledger.TransferFee(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, apperr.Wrap(apperr.ErrPaymentFailed, "transfer fee", err)
	}
	if amount <= fee {
		return 0, apperr.Make(apperr.ErrPaymentFailed, fmt.Sprintf("amount %d does not cover fee %d", amount, fee))
	}

	block, err := s.ledger.Transfer(ctx, ledgerrepo.TransferArgs{
		To:     to.Bytes(),
		Amount: amount - fee,
		Fee:    fee,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transfer failed")
		return 0, apperr.Wrap(apperr.ErrPaymentFailed, "refund", err)
	}

	s.log.Info("refund issued", "recipient", recipient, "amount", amount-fee, "fee", fee, "block_index", block)
	return block, nil
}

// CorrelationID hashes vehicle, claimant and request time into a ledger memo.
func CorrelationID(vehicleID, claimant string, ts time.Time) uint64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%s_%d", vehicleID, claimant, ts.UnixNano())))
	return binary.BigEndian.Uint64(sum[:8])
}
