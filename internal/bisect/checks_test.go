package bisect

import (
	"context"
	"testing"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/iiss"
	"github.com/Klingon-tech/icon-cli/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var account = types.MustParseAddress("hx0b047c751658f7ce1b2595da34d57a0e7dad357d")

type stubSources struct {
	heights []uint64
}

func (s *stubSources) GetPRep(_ context.Context, addr types.Address, height uint64) (*iiss.PRep, error) {
	s.heights = append(s.heights, height)
	one := types.HexUint64(1)
	return &iiss.PRep{
		Address:      addr,
		Grade:        types.HexUint64(iiss.GradeCandidate),
		Delegated:    types.MustParseICX("1234.5"),
		Bonded:       types.NewAmount(42),
		HasPublicKey: &one,
	}, nil
}

func (s *stubSources) GetBalance(_ context.Context, _ types.Address, height uint64) (types.Amount, error) {
	s.heights = append(s.heights, height)
	return types.NewAmount(height * 10), nil
}

func (s *stubSources) GetScoreStatus(_ context.Context, _ types.Address, height uint64) (*chain.ScoreStatus, error) {
	s.heights = append(s.heights, height)
	return &chain.ScoreStatus{Owner: account}, nil
}

func TestNewCheck_Catalogue(t *testing.T) {
	want := map[string]string{
		CheckPRepDelegated: "1234.5",
		CheckPRepBonded:    "42",
		CheckPRepPublicKey: "0x1",
		CheckPRepGrade:     "0x2",
		CheckBalance:       "70",
		CheckScoreOwner:    account.String(),
	}
	require.Len(t, Checks, len(want))
	for _, name := range Checks {
		src := &stubSources{}
		check, err := NewCheck(name, Sources{PReps: src, State: src}, account)
		require.NoError(t, err, name)
		v, err := check(context.Background(), 7)
		require.NoError(t, err, name)
		assert.Equal(t, want[name], v, name)
		assert.Equal(t, []uint64{7}, src.heights, name)
	}
}

func TestNewCheck_PublicKeyMissing(t *testing.T) {
	check, err := NewCheck(CheckPRepPublicKey, Sources{PReps: noKey{}}, account)
	require.NoError(t, err)
	v, err := check(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "none", v)
}

type noKey struct{}

func (noKey) GetPRep(context.Context, types.Address, uint64) (*iiss.PRep, error) {
	return &iiss.PRep{}, nil
}

func TestNewCheck_Unknown(t *testing.T) {
	for _, name := range []string{"prep.power", "stake", ""} {
		_, err := NewCheck(name, Sources{}, account)
		require.ErrorIs(t, err, ErrUnknownCheck, name)
	}
}
