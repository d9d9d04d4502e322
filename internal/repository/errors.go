package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"storage-manager/internal/model"
)

const (
	uniqueViolation      = "23505"
	siblingNameIndexName = "folders_sibling_name_uq"
)

// translateError : приводит ошибки драйвера к доменным
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		if pqErr.Constraint == siblingNameIndexName {
			return fmt.Errorf("%w: %s", model.ErrDuplicateSiblingName, pqErr.Message)
		}
		return fmt.Errorf("%w: %s", model.ErrIntegrityViolation, pqErr.Message)
	}
	return err
}

// requireAffected : UPDATE/DELETE по владельцу без затронутых строк означает чужую или отсутствующую запись
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// likePattern : подстрока для ILIKE с экранированием спецсимволов
func likePattern(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(query) + "%"
}
