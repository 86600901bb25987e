package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

// orderTable describes where a reorderable kind keeps its order and parent
type orderTable struct {
	table        string
	orderColumn  string
	parentColumn string
	entity       string
}

var orderTables = map[models.EntityKind]orderTable{
	models.KindCategory:    {table: "categories", orderColumn: "display_order", parentColumn: "template_id", entity: "category"},
	models.KindSubCategory: {table: "sub_categories", orderColumn: "display_order", parentColumn: "category_id", entity: "sub-category"},
	models.KindIndicator:   {table: "indicators", orderColumn: "sort_order", parentColumn: "sub_category_id", entity: "indicator"},
	models.KindEssay:       {table: "essay_questions", orderColumn: "display_order", parentColumn: "category_id", entity: "essay question"},
}

func lookupOrderTable(kind models.EntityKind) (orderTable, error) {
	t, ok := orderTables[kind]
	if !ok {
		return orderTable{}, apperrors.NewValidationError("kind", fmt.Sprintf("%q cannot be reordered", kind))
	}
	return t, nil
}

// OrderRepository reads and writes sibling order columns
type OrderRepository struct {
	q DBTX
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(q DBTX) *OrderRepository {
	return &OrderRepository{q: q}
}

// ParentIDs maps each live id to its parent id. Missing ids are absent.
func (r *OrderRepository) ParentIDs(ctx context.Context, kind models.EntityKind, ids []uint) (map[uint]uint, error) {
	t, err := lookupOrderTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, COALESCE(%s, 0) FROM %s WHERE id = ANY($1) AND deleted_at IS NULL`,
		t.parentColumn, t.table)
	rows, err := r.q.QueryContext(ctx, query, pq.Array(toInt64s(ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s parents: %w", t.entity, err)
	}
	defer rows.Close()

	parents := make(map[uint]uint, len(ids))
	for rows.Next() {
		var id, parentID uint
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, err
		}
		parents[id] = parentID
	}
	return parents, rows.Err()
}

// ApplyOrder writes every assignment in one statement
func (r *OrderRepository) ApplyOrder(ctx context.Context, kind models.EntityKind, assignments []models.OrderAssignment) error {
	t, err := lookupOrderTable(kind)
	if err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}

	ids := make([]int64, len(assignments))
	orders := make([]int64, len(assignments))
	for i, a := range assignments {
		ids[i] = int64(a.ID)
		orders[i] = int64(a.Order)
	}

	query := fmt.Sprintf(`
		UPDATE %[1]s AS t SET %[2]s = v.pos, updated_at = NOW()
		FROM unnest($1::bigint[], $2::int[]) AS v(id, pos)
		WHERE t.id = v.id AND t.deleted_at IS NULL`, t.table, t.orderColumn)

	res, err := r.q.ExecContext(ctx, query, pq.Array(ids), pq.Array(orders))
	if err != nil {
		return fmt.Errorf("failed to reorder %s: %w", t.entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(assignments) {
		return &apperrors.NotFoundError{Entity: t.entity}
	}
	return nil
}

// NextOrder returns the order value after the last sibling under parentID
func (r *OrderRepository) NextOrder(ctx context.Context, kind models.EntityKind, parentID uint) (int, error) {
	t, err := lookupOrderTable(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1 AND deleted_at IS NULL`,
		t.orderColumn, t.table, t.parentColumn)

	var next int
	if err := r.q.QueryRowContext(ctx, query, parentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next %s order: %w", t.entity, err)
	}
	return next, nil
}
