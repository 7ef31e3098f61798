package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// PendingListSize is the number of pending deploys requested.
const PendingListSize = 25

// contractPageSize is the page size used to walk the contract list.
const contractPageSize = 90

// ErrNoTracker is returned when the network has no known tracker.
var ErrNoTracker = errors.New("cannot find tracker server")

// Contract is a deploy listed by the tracker.
type Contract struct {
	Address    types.Address `json:"contractAddr"`
	Name       string        `json:"contractName"`
	Version    string        `json:"version"`
	CreateTx   string        `json:"createTx"`
	CreateDate string        `json:"createDate"`
}

// DeployTx returns the hash of the deploy transaction.
func (c *Contract) DeployTx() (types.Hash, error) {
	return types.ParseHash(c.CreateTx)
}

// Created returns the creation date without fractional seconds.
func (c *Contract) Created() string {
	d, _, _ := strings.Cut(c.CreateDate, ".")
	return d
}

// ActiveContract is an entry of the verified contract list.
type ActiveContract struct {
	Address      types.Address `json:"address"`
	Name         string        `json:"contractName"`
	VerifiedDate string        `json:"verifiedDate"`
}

// Tracker reads deploy lists from a block explorer.
type Tracker struct {
	base   string
	client *http.Client
}

// NewTracker creates a tracker client for base, e.g.
// https://tracker.icon.foundation. An empty base yields ErrNoTracker on use.
func NewTracker(base string) *Tracker {
	return &Tracker{
		base:   strings.TrimSuffix(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *Tracker) get(ctx context.Context, path string, q url.Values, out any) error {
	if t.base == "" {
		return ErrNoTracker
	}
	u := t.base + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	klog.Audit.Debug().Str("url", u).Msg("Tracker request")
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("tracker request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tracker %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tracker response: %w", err)
	}
	return nil
}

// PendingList returns deploys waiting for audit, skipping addresses in
// ignore.
func (t *Tracker) PendingList(ctx context.Context, ignore IgnoreList) ([]Contract, error) {
	var resp struct {
		Data []Contract `json:"data"`
	}
	q := url.Values{"count": {fmt.Sprint(PendingListSize)}}
	if err := t.get(ctx, "/v3/contract/pendingList", q, &resp); err != nil {
		return nil, err
	}
	out := make([]Contract, 0, len(resp.Data))
	for _, c := range resp.Data {
		if ignore.Has(c.Address) {
			klog.Audit.Debug().Str("address", c.Address.String()).Msg("Ignored")
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ContractList returns every active contract, walking all pages.
func (t *Tracker) ContractList(ctx context.Context) ([]ActiveContract, error) {
	var out []ActiveContract
	for page, size := 1, 0; size == 0 || (page-1)*contractPageSize < size; page++ {
		var resp struct {
			Data     []ActiveContract `json:"data"`
			ListSize int              `json:"listSize"`
		}
		q := url.Values{
			"page":   {fmt.Sprint(page)},
			"count":  {fmt.Sprint(contractPageSize)},
			"status": {"1"},
		}
		if err := t.get(ctx, "/v3/contract/list", q, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Data...)
		size = resp.ListSize
		if size == 0 {
			break
		}
	}
	return out, nil
}
