package config

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"storage-manager/internal/logger"
)

type Database struct {
	*sqlx.DB
}

func NewDatabaseConnection(dbDriver string, dbConnectionStr string) (*Database, error) {
	database, err := sqlx.Connect(dbDriver, dbConnectionStr)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("ошибка пинга БД: %w", err)
	}

	logger.Log.Info().Msg("Подключение к БД успешно выполнено")
	return &Database{
		database,
	}, nil
}

func (db *Database) Executor() sqlx.ExtContext {
	return db.DB
}

// BeginTX : открывает транзакцию, rollback после commit безопасен
func (db *Database) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ошибка открытия транзакции: %w", err)
	}

	committed := false
	rollback := func() error {
		if committed {
			return nil
		}
		return tx.Rollback()
	}
	commit := func() error {
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	}

	return tx, rollback, commit, nil
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("ошибка закрытия соединения с БД: %w", err)
	}

	return nil
}
