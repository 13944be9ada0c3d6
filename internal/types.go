package internal

import (
	"errors"

	"sjsage522/tapeworker/services/cache"
	"sjsage522/tapeworker/services/extractor"
	"sjsage522/tapeworker/services/ledger"
	"sjsage522/tapeworker/services/publisher"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Service   extractor.Service
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Ledger    *ledger.Ledger
}

// Close releases the publisher and the ledger
func (d *Dependencies) Close() error {
	var errs []error
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.Ledger != nil {
		errs = append(errs, d.Ledger.Close())
	}
	return errors.Join(errs...)
}
