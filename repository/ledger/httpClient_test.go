package ledgerrepo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTP_TransferFee(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transfer_fee", r.URL.Path)
		_, _ = w.Write([]byte(`{"transfer_fee":{"e8s":10000}}`))
	}))
	defer srv.Close()

	fee, err := NewHTTP(srv.URL, "").TransferFee(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(10000), fee)
}

func TestHTTP_TransferErr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "0a0b", in["to"])
		_, _ = w.Write([]byte(`{"Err":{"InsufficientFunds":{}}}`))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, "key").Transfer(context.Background(), TransferArgs{To: []byte{0x0a, 0x0b}, Amount: 5})
	require.ErrorIs(t, err, ErrTransfer)
}

func TestHTTP_QueryBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"blocks":[
			{"index":5,"transaction":{"memo":42,"operation":{"Transfer":{"from":"01","to":"02","amount":{"e8s":100}}}}},
			{"index":6,"transaction":{"memo":0}}
		]}`))
	}))
	defer srv.Close()

	blocks, err := NewHTTP(srv.URL, "").QueryBlocks(context.Background(), 5, 2)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, uint64(42), blocks[0].Memo)
	require.Equal(t, []byte{0x01}, blocks[0].Transfer.From)
	require.Equal(t, uint64(100), blocks[0].Transfer.Amount)
	require.Nil(t, blocks[1].Transfer)
}

func TestHTTP_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, "").QueryBlocks(context.Background(), 0, 1)
	require.Error(t, err)
}
