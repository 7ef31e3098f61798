// Package token is the typed client of IRC2 token contracts.
package token

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// ErrUnknownToken is returned when a symbol is not in the known table.
var ErrUnknownToken = errors.New("unknown token")

// Known maps lowercase symbols of well-known mainnet tokens to their
// contracts.
var Known = map[string]types.Address{
	"sicx":  types.MustParseAddress("cx2609b924e33ef00b648a409245c7ea394c467824"),
	"baln":  types.MustParseAddress("cxf61cd5a45dc9f91c15aa65831a30a90d59a09619"),
	"bnusd": types.MustParseAddress("cx88fd7df7ddff82f7cc735c871dc519838cb235bb"),
	"iusdc": types.MustParseAddress("cxae3034235540b924dfcc1b45836c293dcc82bfb7"),
	"usds":  types.MustParseAddress("cxbb2871f468a3008f80b08fdde5b8b951583acf06"),
	"omm":   types.MustParseAddress("cx1a29259a59f463a67bb2ef84398b30ca56b5830a"),
	"cft":   types.MustParseAddress("cx2e6d0fc0eca04965d06038c8406093337f085fcf"),
	"gbet":  types.MustParseAddress("cx6139a27c15f1653471ffba0b4b88dc15de7e3267"),
}

// Symbols returns the known symbols in sorted order.
func Symbols() []string {
	return slices.Sorted(maps.Keys(Known))
}

// Resolve returns the contract of a known symbol or parses a cx address.
func Resolve(s string) (types.Address, error) {
	if strings.HasPrefix(s, types.ContractPrefix) {
		addr, err := types.ParseAddress(s)
		if err != nil {
			return types.Address{}, err
		}
		return addr, nil
	}
	if addr, ok := Known[strings.ToLower(s)]; ok {
		return addr, nil
	}
	return types.Address{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownToken, s, strings.Join(Symbols(), ", "))
}

// Metadata holds descriptive information about a token.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Format renders a base-unit amount in token units with the symbol.
func (m *Metadata) Format(a types.Amount) string {
	return a.FormatUnits(m.Decimals) + " " + m.Symbol
}
