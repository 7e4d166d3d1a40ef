package ledgerrepo

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/httpx"
)

type httpRepo struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTP(baseURL, apiKey string) Client {
	return &httpRepo{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: httpx.Client()}
}

type tokens struct {
	E8s uint64 `json:"e8s"`
}

func (r *httpRepo) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return err
	}
	if r.apiKey != "" {
		req.SetBasicAuth(r.apiKey, "")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ledger %s %s failed: %s", method, path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (r *httpRepo) TransferFee(ctx context.Context) (uint64, error) {
	var out struct {
		TransferFee tokens `json:"transfer_fee"`
	}
	if err := r.do(ctx, http.MethodGet, "/transfer_fee", nil, &out); err != nil {
		return 0, err
	}
	return out.TransferFee.E8s, nil
}

func (r *httpRepo) Transfer(ctx context.Context, args TransferArgs) (uint64, error) {
	in := map[string]any{
		"to":     hex.EncodeToString(args.To),
		"amount": tokens{E8s: args.Amount},
		"fee":    tokens{E8s: args.Fee},
		"memo":   args.Memo,
	}
	var out struct {
		Ok  *uint64 `json:"Ok"`
		Err any     `json:"Err"`
	}
	if err := r.do(ctx, http.MethodPost, "/transfer", in, &out); err != nil {
		return 0, err
	}
	if out.Err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransfer, out.Err)
	}
	if out.Ok == nil {
		return 0, errors.New("ledger: empty transfer result")
	}
	return *out.Ok, nil
}

type wireBlock struct {
	Index       uint64 `json:"index"`
	Transaction struct {
		Memo      uint64 `json:"memo"`
		Operation *struct {
			Transfer *struct {
				From   string `json:"from"`
				To     string `json:"to"`
				Amount tokens `json:"amount"`
			} `json:"Transfer"`
		} `json:"operation"`
	} `json:"transaction"`
}

func (r *httpRepo) QueryBlocks(ctx context.Context, start, length uint64) ([]Block, error) {
	in := map[string]uint64{"start": start, "length": length}
	var out struct {
		Blocks []wireBlock `json:"blocks"`
	}
	if err := r.do(ctx, http.MethodPost, "/query_blocks", in, &out); err != nil {
		return nil, err
	}

	blocks := make([]Block, 0, len(out.Blocks))
	for _, wb := range out.Blocks {
		b := Block{Index: wb.Index, Memo: wb.Transaction.Memo}
		if op := wb.Transaction.Operation; op != nil && op.Transfer != nil {
			from, err := hex.DecodeString(op.Transfer.From)
			if err != nil {
				return nil, fmt.Errorf("block %d: bad sender: %w", wb.Index, err)
			}
			to, err := hex.DecodeString(op.Transfer.To)
			if err != nil {
				return nil, fmt.Errorf("block %d: bad receiver: %w", wb.Index, err)
			}
			b.Transfer = &Transfer{From: from, To: to, Amount: op.Transfer.Amount.E8s}
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
