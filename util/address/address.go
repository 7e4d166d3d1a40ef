// Package address derives canonical ledger account identifiers from principals
// and compares them by content digest.
package address

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
)

// Size is the length of a binary account identifier.
const Size = 32

var (
	ErrInvalidPrincipal = errors.New("address: invalid principal")
	ErrInvalidAddress   = errors.New("address: invalid account identifier")
)

var (
	b32          = base32.StdEncoding.WithPadding(base32.NoPadding)
	domainPrefix = []byte("\x0Aaccount-id")
)

// Address is a binary account identifier: CRC32(h) || h.
type Address [Size]byte

// Subaccount selects one of the accounts owned by a principal.
type Subaccount [32]byte

// DefaultSubaccount is subaccount 0.
var DefaultSubaccount Subaccount

func (a Address) Hex() string    { return hex.EncodeToString(a[:]) }
func (a Address) String() string { return a.Hex() }
func (a Address) Bytes() []byte  { return a[:] }
func (a Address) IsZero() bool   { return a == Address{} }

// ParseHex decodes a 64 char hex account identifier and validates its checksum.
func ParseHex(s string) (Address, error) {
	var a Address
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(raw) != Size {
		return a, ErrInvalidAddress
	}
	copy(a[:], raw)
	if binary.BigEndian.Uint32(a[:4]) != crc32.ChecksumIEEE(a[4:]) {
		return a, ErrInvalidAddress
	}
	return a, nil
}

// EncodePrincipal renders raw principal bytes in the dashed textual form.
func EncodePrincipal(raw []byte) string {
	buf := make([]byte, 4+len(raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(raw))
	copy(buf[4:], raw)
	s := strings.ToLower(b32.EncodeToString(buf))

	var sb strings.Builder
	for i := 0; i < len(s); i += 5 {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := min(i+5, len(s))
		sb.WriteString(s[i:end])
	}
	return sb.String()
}

// DecodePrincipal parses the textual form and verifies its checksum.
func DecodePrincipal(text string) ([]byte, error) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(text), "-", ""))
	if s == "" {
		return nil, ErrInvalidPrincipal
	}
	buf, err := b32.DecodeString(s)
	if err != nil || len(buf) < 4 || len(buf) > 33 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrincipal, text)
	}
	raw := buf[4:]
	if binary.BigEndian.Uint32(buf[:4]) != crc32.ChecksumIEEE(raw) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidPrincipal)
	}
	if EncodePrincipal(raw) != strings.ToLower(strings.TrimSpace(text)) {
		return nil, fmt.Errorf("%w: not canonical", ErrInvalidPrincipal)
	}
	return raw, nil
}

// FromPrincipal derives the account identifier of a principal's subaccount.
func FromPrincipal(principal string, sub Subaccount) (Address, error) {
	raw, err := DecodePrincipal(principal)
	if err != nil {
		return Address{}, err
	}

	h := sha256.New224()
	h.Write(domainPrefix)
	h.Write(raw)
	h.Write(sub[:])
	sum := h.Sum(nil)

	var a Address
	binary.BigEndian.PutUint32(a[:4], crc32.ChecksumIEEE(sum))
	copy(a[4:], sum)
	return a, nil
}

// Equal compares two encodings of an account by SHA-256 digest in constant time.
// Nil or empty inputs never match.
func Equal(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	da := sha256.Sum256(a)
	db := sha256.Sum256(b)
	return subtle.ConstantTimeCompare(da[:], db[:]) == 1
}
