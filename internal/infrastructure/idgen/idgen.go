// Package idgen produces entry IDs and account numbers.
package idgen

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs. ulid.Make draws from a process-wide
// monotonic entropy source, so IDs sort in generation order.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// AccountNumberGenerator generates random 10-digit account numbers without a
// leading zero.
type AccountNumberGenerator struct{}

// NewAccountNumberGenerator creates a new AccountNumberGenerator.
func NewAccountNumberGenerator() *AccountNumberGenerator {
	return &AccountNumberGenerator{}
}

var accountNumberSpan = big.NewInt(9_000_000_000)

// Generate generates a new account number.
func (g *AccountNumberGenerator) Generate() string {
	n, err := rand.Int(rand.Reader, accountNumberSpan)
	if err != nil {
		// Fall back to the ULID entropy so callers never see an empty number.
		return fallbackNumber()
	}
	return n.Add(n, big.NewInt(1_000_000_000)).String()
}

func fallbackNumber() string {
	var b strings.Builder
	for _, c := range ulid.Make().String() {
		b.WriteByte('0' + byte(c)%10)
	}
	s := b.String()
	return "1" + s[len(s)-9:]
}
