// Package delegation models a staker's delegation set and rebalances newly
// available voting power into it.
package delegation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Errors.
var (
	ErrNoDelegation     = errors.New("no delegation to rebalance")
	ErrNoVotingPower    = errors.New("no voting power to delegate")
	ErrDuplicate        = errors.New("duplicate delegation beneficiary")
	ErrExceedsAuthority = errors.New("delegation exceeds authorized voting power")
)

// Entry is one beneficiary and the weight delegated to it.
type Entry struct {
	Address types.Address `json:"address"`
	Value   types.Amount  `json:"value"`
}

// Set is an ordered mapping from beneficiary to weight. Insertion order is
// kept; the first entry absorbs rebalanced voting power.
type Set struct {
	entries []Entry
	index   map[types.Address]int
}

// NewSet builds a set from entries in order.
func NewSet(entries ...Entry) (*Set, error) {
	s := &Set{index: make(map[types.Address]int, len(entries))}
	for _, e := range entries {
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a beneficiary.
func (s *Set) Add(e Entry) error {
	if s.index == nil {
		s.index = make(map[types.Address]int)
	}
	if _, ok := s.index[e.Address]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.Address)
	}
	s.index[e.Address] = len(s.entries)
	s.entries = append(s.entries, e)
	return nil
}

// Len returns the number of beneficiaries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Get returns the weight delegated to addr.
func (s *Set) Get(addr types.Address) (types.Amount, bool) {
	i, ok := s.index[addr]
	if !ok {
		return types.Amount{}, false
	}
	return s.entries[i].Value, true
}

// Entries returns a copy of the entries in insertion order.
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Total returns the sum of all weights.
func (s *Set) Total() (types.Amount, error) {
	var total types.Amount
	for _, e := range s.Entries() {
		var err error
		if total, err = total.Add(e.Value); err != nil {
			return types.Amount{}, err
		}
	}
	return total, nil
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	c, _ := NewSet(s.Entries()...)
	return c
}

// CheckWithin returns ErrExceedsAuthority when the total weight is larger
// than authorized.
func (s *Set) CheckWithin(authorized types.Amount) error {
	total, err := s.Total()
	if err != nil {
		return err
	}
	if total.Cmp(authorized) > 0 {
		return fmt.Errorf("%w: %s > %s ICX", ErrExceedsAuthority, total.ICXString(), authorized.ICXString())
	}
	return nil
}

// String renders the set as "address=ICX" pairs.
func (s *Set) String() string {
	parts := make([]string, 0, s.Len())
	for _, e := range s.Entries() {
		parts = append(parts, e.Address.String()+"="+e.Value.ICXString())
	}
	return strings.Join(parts, ",")
}

// Rebalance returns a copy of set in which the first beneficiary's weight
// is increased by vp. All other weights are unchanged and set itself is
// never modified. An empty set or zero vp is refused.
func Rebalance(set *Set, vp types.Amount) (*Set, error) {
	if set.Len() == 0 {
		return nil, ErrNoDelegation
	}
	if vp.IsZero() {
		return nil, ErrNoVotingPower
	}
	out := set.Clone()
	first := &out.entries[0]
	sum, err := first.Value.Add(vp)
	if err != nil {
		return nil, fmt.Errorf("rebalance %s: %w", first.Address, err)
	}
	first.Value = sum
	return out, nil
}

// Parse reads "address=ICX,address=ICX" into a set.
func Parse(s string) (*Set, error) {
	set, _ := NewSet()
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		addrStr, amountStr, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("delegation %q: want address=amount", part)
		}
		addr, err := types.ParseAddress(strings.TrimSpace(addrStr))
		if err != nil {
			return nil, err
		}
		amount, err := types.ParseICX(amountStr)
		if err != nil {
			return nil, err
		}
		if err := set.Add(Entry{Address: addr, Value: amount}); err != nil {
			return nil, err
		}
	}
	return set, nil
}
