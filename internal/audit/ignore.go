package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// IgnoreFile is the default ignore list file name.
const IgnoreFile = ".audit_ignore_list"

// IgnoreList holds contract addresses hidden from the pending list.
type IgnoreList map[types.Address]struct{}

// Has reports whether addr is ignored. A nil list ignores nothing.
func (l IgnoreList) Has(addr types.Address) bool {
	_, ok := l[addr]
	return ok
}

// LoadIgnoreList reads a JSON array of addresses. A missing file yields an
// empty list.
func LoadIgnoreList(path string) (IgnoreList, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return IgnoreList{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ignore list: %w", err)
	}
	var addrs []types.Address
	if err := json.Unmarshal(data, &addrs); err != nil {
		return nil, fmt.Errorf("parse ignore list %s: %w", path, err)
	}
	l := make(IgnoreList, len(addrs))
	for _, a := range addrs {
		l[a] = struct{}{}
	}
	return l, nil
}
