package mocks

import (
	"context"

	"github.com/edupath/application-management-api/internal/database"
)

// StubTxRunner satisfies service.TxRunner without a database: the function
// runs immediately with a nil transaction. The stores under test ignore the
// transaction argument.
type StubTxRunner struct {
	Err error
}

func (s *StubTxRunner) WithTransaction(ctx context.Context, fn func(*database.Transaction) error) error {
	if s.Err != nil {
		return s.Err
	}
	return fn(nil)
}
