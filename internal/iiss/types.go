package iiss

import (
	"encoding/json"

	"github.com/Klingon-tech/icon-cli/internal/delegation"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// P-Rep grades.
const (
	GradeMain      uint64 = 0
	GradeSub       uint64 = 1
	GradeCandidate uint64 = 2
)

// Stake is the result of getStake.
type Stake struct {
	Stake    types.Amount `json:"stake"`
	Unstakes []Unstake    `json:"unstakes,omitempty"`
}

// Unstake is a pending unstake slot.
type Unstake struct {
	Unstake            types.Amount    `json:"unstake"`
	UnstakeBlockHeight types.HexUint64 `json:"unstakeBlockHeight"`
	RemainingBlocks    types.HexUint64 `json:"remainingBlocks"`
}

// TotalUnstaking sums the pending unstakes.
func (s *Stake) TotalUnstaking() (types.Amount, error) {
	var total types.Amount
	for _, u := range s.Unstakes {
		var err error
		if total, err = total.Add(u.Unstake); err != nil {
			return types.Amount{}, err
		}
	}
	return total, nil
}

// Delegation is the result of getDelegation.
type Delegation struct {
	Delegations    []delegation.Entry `json:"delegations"`
	TotalDelegated types.Amount       `json:"totalDelegated"`
	VotingPower    types.Amount       `json:"votingPower"`
}

// Set returns the delegations as an ordered set, in the order the chain
// reports them.
func (d *Delegation) Set() (*delegation.Set, error) {
	return delegation.NewSet(d.Delegations...)
}

// IScore is the result of queryIScore.
type IScore struct {
	IScore       types.Amount    `json:"iscore"`
	EstimatedICX types.Amount    `json:"estimatedICX"`
	BlockHeight  types.HexUint64 `json:"blockHeight"`
}

// PRep is the subset of getPRep fields the tool reads. Raw keeps the full
// response for printing.
type PRep struct {
	Address      types.Address    `json:"address"`
	Name         string           `json:"name"`
	Country      string           `json:"country"`
	City         string           `json:"city"`
	Grade        types.HexUint64  `json:"grade"`
	Status       types.HexUint64  `json:"status"`
	Delegated    types.Amount     `json:"delegated"`
	Bonded       types.Amount     `json:"bonded"`
	Power        types.Amount     `json:"power"`
	HasPublicKey *types.HexUint64 `json:"hasPublicKey,omitempty"`
	NodeAddress  types.Address    `json:"nodeAddress"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the raw document.
func (p *PRep) UnmarshalJSON(data []byte) error {
	type plain PRep
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PRep(v)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// PReps is the result of getPReps.
type PReps struct {
	BlockHeight    types.HexUint64 `json:"blockHeight"`
	StartRanking   types.HexUint64 `json:"startRanking"`
	TotalDelegated types.Amount    `json:"totalDelegated"`
	TotalStake     types.Amount    `json:"totalStake"`
	PReps          []PRep          `json:"preps"`
}

// Bond is the result of getBond.
type Bond struct {
	Bonds       []delegation.Entry `json:"bonds"`
	Unbonds     []json.RawMessage  `json:"unbonds,omitempty"`
	TotalBonded types.Amount       `json:"totalBonded"`
	VotingPower types.Amount       `json:"votingPower"`
}

// Info is the result of getIISSInfo.
type Info struct {
	BlockHeight     types.HexUint64 `json:"blockHeight"`
	NextCalculation types.HexUint64 `json:"nextCalculation"`
	NextPRepTerm    types.HexUint64 `json:"nextPRepTerm"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the raw document.
func (i *Info) UnmarshalJSON(data []byte) error {
	type plain Info
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = Info(v)
	i.Raw = append(json.RawMessage(nil), data...)
	return nil
}
