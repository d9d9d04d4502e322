package ports

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Transactor : выдаёт исполнителя запросов либо транзакцию, которой управляет сервис
type Transactor interface {
	Executor() sqlx.ExtContext
	BeginTX(ctx context.Context) (exec sqlx.ExtContext, rollback func() error, commit func() error, err error)
}
