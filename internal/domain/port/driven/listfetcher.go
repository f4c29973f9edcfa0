package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/artistban/internal/domain/model"
)

// ErrTransport marks a failure to retrieve the remote list. A pass that sees it
// aborts before touching the ledger.
var ErrTransport = errors.New("list transport error")

// ListFetcher defines the driven port for reading the published blocklist.
type ListFetcher interface {
	// FetchList performs one read of the remote list and returns its valid
	// records in file order. Errors wrap ErrTransport.
	FetchList(ctx context.Context) ([]model.ListRecord, error)
}
