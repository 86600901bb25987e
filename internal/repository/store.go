package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"akreditasi-jurnal/internal/apperrors"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// Store bundles every repository over one connection or transaction
type Store struct {
	db        *sql.DB
	txRetries int

	*TemplateRepository
	*CategoryRepository
	*SubCategoryRepository
	*IndicatorRepository
	*EssayRepository
	*AssessmentResponseRepository
	*OrderRepository
	*AuditRepository
}

// NewStore creates a store backed by the connection pool. Serialization
// failures inside InTx are retried up to txRetries times.
func NewStore(db *sql.DB, txRetries int) *Store {
	s := newStore(db)
	s.db = db
	s.txRetries = txRetries
	return s
}

func newStore(q DBTX) *Store {
	return &Store{
		TemplateRepository:           NewTemplateRepository(q),
		CategoryRepository:           NewCategoryRepository(q),
		SubCategoryRepository:        NewSubCategoryRepository(q),
		IndicatorRepository:          NewIndicatorRepository(q),
		EssayRepository:              NewEssayRepository(q),
		AssessmentResponseRepository: NewAssessmentResponseRepository(q),
		OrderRepository:              NewOrderRepository(q),
		AuditRepository:              NewAuditRepository(q),
	}
}

// Concurrent reports whether the store is backed by the pool rather than a single transaction
func (s *Store) Concurrent() bool {
	return s.db != nil
}

// InTx runs fn in a serializable transaction. Calls made on a store that is
// already inside a transaction join it.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	var err error
	for attempt := 0; attempt <= s.txRetries; attempt++ {
		err = s.runTx(ctx, fn)
		if !isRetryable(err) {
			return err
		}
		slog.Warn("Retrying transaction after serialization failure", "attempt", attempt+1, "error", err)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback only if not committed
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(newStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isRetryable reports serialization failures and deadlocks
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

// uniqueConstraints maps unique index names to the typed error they stand for
var uniqueConstraints = map[string]func(value string) error{
	"uq_evaluation_templates_name": func(v string) error {
		return &apperrors.DuplicateNameError{Entity: "template", Name: v}
	},
	"uq_categories_template_code": func(v string) error {
		return &apperrors.DuplicateCodeError{Entity: "category", Code: v, Scope: "template"}
	},
	"uq_sub_categories_category_code": func(v string) error {
		return &apperrors.DuplicateCodeError{Entity: "sub-category", Code: v, Scope: "category"}
	},
	"uq_indicators_code": func(v string) error {
		return &apperrors.DuplicateCodeError{Entity: "indicator", Code: v, Scope: "all indicators"}
	},
	"uq_essay_questions_category_code": func(v string) error {
		return &apperrors.DuplicateCodeError{Entity: "essay question", Code: v, Scope: "category"}
	},
}

// mapWriteError converts constraint violations into typed errors. value is
// the name or code being written and is only used for the message.
func mapWriteError(err error, entity, value string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		if build, ok := uniqueConstraints[pqErr.Constraint]; ok {
			return build(value)
		}
	case "23503":
		return &apperrors.NotFoundError{Entity: entity + " parent"}
	case "23514":
		return &apperrors.ValidationError{
			Message: fmt.Sprintf("%s violates constraint %s", entity, pqErr.Constraint),
		}
	}
	return err
}

// expectAffected turns a zero-row update into a NotFoundError
func expectAffected(res sql.Result, entity string, id uint) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound(entity, id)
	}
	return nil
}

func toInt64s(ids []uint) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
