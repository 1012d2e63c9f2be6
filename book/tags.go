package book

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/bookkeeper/broker"
	"github.com/rustyeddy/bookkeeper/location"
)

var ErrInvalidLocationCategory = errors.New("invalid location category")

// TagsFromLocation resolves the identity of the book kept at loc. Trading
// desks keep Account ledgers, strategies keep Strategy ledgers; nothing else
// keeps a book.
func TagsFromLocation(loc location.Location) (broker.Tags, error) {
	switch loc.Category {
	case location.TD:
		return broker.Tags{
			HolderUID:      loc.UID,
			LedgerCategory: broker.LedgerAccount,
			SourceID:       loc.Group,
			AccountID:      loc.Name,
		}, nil
	case location.Strategy:
		return broker.Tags{
			HolderUID:      loc.UID,
			LedgerCategory: broker.LedgerStrategy,
			ClientID:       loc.Name,
		}, nil
	}
	return broker.Tags{}, fmt.Errorf("%w %s", ErrInvalidLocationCategory, loc.Category)
}
