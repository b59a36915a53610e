package store

import (
	"errors"

	"hotel-addons/apperrors"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// translate maps driver/gorm errors onto the application taxonomy.
func translate(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity, id)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return apperrors.Validation(entity, "duplicate entry: %s", myErr.Message)
	}
	return err
}
