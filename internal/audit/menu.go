package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Klingon-tech/icon-cli/internal/prompt"
)

const actionPrompt = "Action ([a]ccept, [r]eject, [s]tatus, [d]ownload, [v]erify): "

// PrintPending writes the numbered pending list.
func PrintPending(w io.Writer, contracts []Contract) {
	for i, c := range contracts {
		fmt.Fprintf(w, "[%d] %s %s, %s - %s - %s\n", i, c.Version, c.Name, c.CreateTx, c.Address, c.Created())
	}
}

// Export writes the list as a JSON object keyed "index:version:name",
// highest index first.
func Export(w io.Writer, contracts []Contract) error {
	var b strings.Builder
	b.WriteString("{\n")
	for i := len(contracts) - 1; i >= 0; i-- {
		c := contracts[i]
		key, err := json.Marshal(fmt.Sprintf("%d:%s:%s", i, c.Version, c.Name))
		if err != nil {
			return fmt.Errorf("export key: %w", err)
		}
		addr, err := json.Marshal(c.Address.String())
		if err != nil {
			return fmt.Errorf("export address: %w", err)
		}
		sep := ","
		if i == 0 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %s: %s%s\n", key, addr, sep)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Menu lets the user pick deploys and actions until an action ends the
// session, input ends, or "q" is entered.
func (a *Auditor) Menu(ctx context.Context, contracts []Contract) error {
	PrintPending(a.out, contracts)
	for {
		sel, err := a.input.Line("Select: ")
		if errors.Is(err, prompt.ErrNoInput) || sel == "q" {
			return nil
		}
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(sel)
		if err != nil || n < 0 || n >= len(contracts) {
			fmt.Fprintf(a.out, "Error: invalid input: %s\n", sel)
			PrintPending(a.out, contracts)
			continue
		}

		key, err := a.input.Line(actionPrompt)
		if errors.Is(err, prompt.ErrNoInput) {
			return nil
		}
		if err != nil {
			return err
		}
		action, err := ParseAction(key)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			PrintPending(a.out, contracts)
			continue
		}

		more, err := a.Do(ctx, action, contracts[n])
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
