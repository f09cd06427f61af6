package repository

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/variant-reports-service/internal/domain"
)

// Postgres SQLSTATE codes the repositories translate
const (
	pgForeignKeyViolation   = "23503"
	pgCheckViolation        = "23514"
	pgNotNullViolation      = "23502"
	pgStringTooLong         = "22001"
	pgNumericOutOfRange     = "22003"
	pgInvalidDatetimeFormat = "22007"
)

// columnFields maps storage columns to the JSON field names clients use
var columnFields = map[string]string{
	"symbol":           "symbol",
	"full_name":        "fullName",
	"function_summary": "functionSummary",
	"gene_id":          "geneId",
	"chromosome":       "chromosome",
	"position":         "position",
	"reference_base":   "referenceBase",
	"alternate_base":   "alternateBase",
	"impact":           "impact",
	"patient_id":       "patientId",
	"variant_id":       "variantId",
	"detection_date":   "detectionDate",
	"allele_frequency": "alleleFrequency",
}

// fieldFromText finds the first known column mentioned in a constraint
// name or driver message
func fieldFromText(text string) string {
	best, bestAt, bestLen := "", -1, 0
	for column, field := range columnFields {
		at := strings.Index(text, column)
		if at < 0 {
			continue
		}
		if bestAt < 0 || at < bestAt || (at == bestAt && len(column) > bestLen) {
			best, bestAt, bestLen = field, at, len(column)
		}
	}
	return best
}

// translatePgError converts store rejections into domain errors. A foreign key
// violation means the referenced entity vanished, so it becomes a not-found
// error for ref.
func translatePgError(err error, ref string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgForeignKeyViolation:
		if ref == "" {
			return err
		}
		return domain.NewNotFoundError(ref)
	case pgCheckViolation, pgNotNullViolation, pgStringTooLong, pgNumericOutOfRange, pgInvalidDatetimeFormat:
		field := columnFields[pgErr.ColumnName]
		if field == "" {
			field = fieldFromText(pgErr.ConstraintName)
		}
		constraint := pgErr.ConstraintName
		if constraint == "" {
			constraint = pgErr.Code
		}
		return &domain.ConstraintError{Field: field, Constraint: constraint, Err: err}
	default:
		return err
	}
}

// translateSQLiteError is the SQLite counterpart of translatePgError
func translateSQLiteError(err error, ref string) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	code := sqliteErr.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}

	msg := sqliteErr.Error()
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY || strings.Contains(msg, "FOREIGN KEY"):
		if ref == "" {
			return err
		}
		return domain.NewNotFoundError(ref)
	case code == sqlite3.SQLITE_CONSTRAINT_CHECK || strings.Contains(msg, "CHECK"):
		return &domain.ConstraintError{Field: fieldFromText(msg), Constraint: "check", Err: err}
	case code == sqlite3.SQLITE_CONSTRAINT_NOTNULL || strings.Contains(msg, "NOT NULL"):
		return &domain.ConstraintError{Field: fieldFromText(msg), Constraint: "not_null", Err: err}
	default:
		return err
	}
}

// frequencyToNumeric encodes thousandths as NUMERIC with scale 3
func frequencyToNumeric(f domain.AlleleFrequency) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(int64(f)), Exp: -domain.AlleleFrequencyScale, Valid: true}
}

// numericToFrequency decodes a NUMERIC into thousandths. Extra precision is
// rejected rather than rounded.
func numericToFrequency(n pgtype.Numeric) (domain.AlleleFrequency, error) {
	if !n.Valid || n.Int == nil {
		return 0, fmt.Errorf("allele frequency is null")
	}

	value := new(big.Int).Set(n.Int)
	exp := int64(n.Exp) + domain.AlleleFrequencyScale
	ten := big.NewInt(10)
	if exp > 0 {
		value.Mul(value, new(big.Int).Exp(ten, big.NewInt(exp), nil))
	} else if exp < 0 {
		divisor := new(big.Int).Exp(ten, big.NewInt(-exp), nil)
		remainder := new(big.Int)
		value.QuoRem(value, divisor, remainder)
		if remainder.Sign() != 0 {
			return 0, fmt.Errorf("allele frequency has more than %d decimals", domain.AlleleFrequencyScale)
		}
	}

	if !value.IsInt64() {
		return 0, fmt.Errorf("allele frequency out of range")
	}
	return domain.AlleleFrequency(value.Int64()), nil
}
