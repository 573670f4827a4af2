package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/scry-re/scry/internal/decomp"
	"github.com/scry-re/scry/sdk"
)

// ParseAddress reads an address in decimal or, with the usual
// prefixes, binary, octal, or hexadecimal.
func ParseAddress(s string) (uint64, error) {
	addr, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	return addr, nil
}

// Decompile runs the decompiler with the given id at addr and waits
// for its result. The result is always renderable; a failed backend
// run arrives as a warning Code, not an error.
func (app *Application) Decompile(ctx context.Context, id string, addr uint64) (*sdk.Code, error) {
	d := decomp.Find(app.decs, id)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDecompiler, id)
	}

	results := make(chan *sdk.Code, 1)
	cancel := d.SubscribeFinished(func(code *sdk.Code) {
		select {
		case results <- code:
		default:
		}
	})
	defer cancel()

	d.DecompileAt(addr)
	select {
	case code := <-results:
		return code, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
