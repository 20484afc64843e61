package ton

import (
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

// ParseAddress accepts both raw ("0:abcd...") and user-friendly
// ("EQ..."/"UQ...") forms.
func ParseAddress(s string) (*address.Address, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		addr, err := address.ParseRawAddr(s)
		if err != nil {
			return nil, fmt.Errorf("invalid raw address %q: %w", s, err)
		}
		return addr, nil
	}
	addr, err := address.ParseAddr(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return addr, nil
}

// NormalizeAddress returns the raw form used as the ledger user key, so a
// wallet maps to one account whatever form the client sent.
func NormalizeAddress(s string) (string, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.StringRaw()), nil
}
