package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/metrics"
	"akreditasi-jurnal/internal/models"
)

// ReorderCoordinator writes sibling order values in one atomic batch.
// Positions are 1-based. Siblings left out of a batch keep their order, and
// concurrent batches on the same parent are last-writer-wins.
type ReorderCoordinator struct {
	store        Store
	strictParent bool
}

// NewReorderCoordinator creates a reorder coordinator
func NewReorderCoordinator(store Store, cfg config.EvaluationConfig) *ReorderCoordinator {
	return &ReorderCoordinator{store: store, strictParent: cfg.ReorderStrictParent}
}

// resolveOrder turns the request items into assignments. An item without a
// position takes its 1-based index in the batch.
func resolveOrder(items []models.ReorderItem) ([]models.OrderAssignment, error) {
	seenIDs := make(map[uint]int, len(items))
	seenPositions := make(map[int]int, len(items))
	fields := map[string]string{}

	assignments := make([]models.OrderAssignment, 0, len(items))
	for i, item := range items {
		pos := item.Position
		if pos == 0 {
			pos = i + 1
		}
		if first, ok := seenIDs[item.ID]; ok {
			fields[fmt.Sprintf("items[%d].id", i)] = fmt.Sprintf("duplicates items[%d].id", first)
		}
		if first, ok := seenPositions[pos]; ok {
			fields[fmt.Sprintf("items[%d].position", i)] = fmt.Sprintf("resolves to position %d, same as items[%d]", pos, first)
		}
		seenIDs[item.ID] = i
		seenPositions[pos] = i
		assignments = append(assignments, models.OrderAssignment{ID: item.ID, Order: pos})
	}

	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Message: "invalid reorder batch", Fields: fields}
	}
	return assignments, nil
}

// Reorder applies the positions of req to siblings of req.Kind
func (c *ReorderCoordinator) Reorder(ctx context.Context, req models.ReorderRequest, actor models.Actor) error {
	err := c.reorder(ctx, req, actor)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ReordersTotal.WithLabelValues(string(req.Kind), result).Inc()
	return err
}

func (c *ReorderCoordinator) reorder(ctx context.Context, req models.ReorderRequest, actor models.Actor) error {
	if err := validate(req); err != nil {
		return err
	}
	assignments, err := resolveOrder(req.Items)
	if err != nil {
		return err
	}
	metrics.ReorderBatchSize.Observe(float64(len(assignments)))

	ids := make([]uint, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}

	err = c.store.InTx(ctx, func(tx Store) error {
		parents, err := tx.ParentIDs(ctx, req.Kind, ids)
		if err != nil {
			return err
		}

		var missing []uint
		for _, id := range ids {
			if _, ok := parents[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return &apperrors.NotFoundError{Entity: entityName(req.Kind), IDs: missing}
		}

		if c.strictParent {
			distinct := make([]uint, 0, 1)
			for _, id := range ids {
				if p := parents[id]; !slices.Contains(distinct, p) {
					distinct = append(distinct, p)
				}
			}
			if len(distinct) > 1 {
				slices.Sort(distinct)
				return &apperrors.MixedParentError{Kind: string(req.Kind), ParentIDs: distinct}
			}
		}

		if err := tx.ApplyOrder(ctx, req.Kind, assignments); err != nil {
			return err
		}
		return audit(ctx, tx, actor, "reorder", req.Kind, fmt.Sprintf("Reordered %d %s item(s)", len(assignments), entityName(req.Kind)))
	})
	if err != nil {
		return err
	}

	slog.Info("Siblings reordered", "kind", req.Kind, "count", len(assignments), "user_id", actor.UserID)
	return nil
}
