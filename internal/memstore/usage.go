package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

func (st *state) submitted(indicatorID uint) bool {
	for _, r := range st.responses {
		if r.indicatorID != indicatorID {
			continue
		}
		if st.assessments[r.assessmentID].status == models.AssessmentStatusSubmitted {
			return true
		}
	}
	return false
}

func (s *Store) HasSubmittedResponses(_ context.Context, indicatorID uint) (bool, error) {
	var found bool
	err := s.read(func(st *state) error {
		found = st.submitted(indicatorID)
		return nil
	})
	return found, err
}

func (st *state) inScope(scope models.EntityKind, id uint, ind models.Indicator) (bool, error) {
	sub := ind.Placement.ParentID()
	switch scope {
	case models.KindIndicator:
		return ind.ID == id, nil
	case models.KindSubCategory:
		return sub != 0 && sub == id, nil
	case models.KindCategory:
		return sub != 0 && st.subs[sub].val.CategoryID == id, nil
	case models.KindTemplate:
		return sub != 0 && st.templateOfSub(sub) == id, nil
	}
	return false, fmt.Errorf("unsupported usage scope %q", scope)
}

func (s *Store) SubmittedIndicatorCodes(_ context.Context, scope models.EntityKind, id uint) ([]string, error) {
	codes := []string{}
	err := s.read(func(st *state) error {
		for _, r := range st.indicators {
			if r.deleted {
				continue
			}
			ok, err := st.inScope(scope, id, r.val)
			if err != nil {
				return err
			}
			if ok && st.submitted(r.val.ID) {
				codes = append(codes, r.val.Code)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(codes)
	return slices.Compact(codes), nil
}

// sibling describes one reorderable row as seen by the order methods
type sibling struct {
	parentID uint
	order    int
}

func (st *state) siblings(kind models.EntityKind) (map[uint]sibling, string, error) {
	out := map[uint]sibling{}
	switch kind {
	case models.KindCategory:
		for id, r := range st.categories {
			if !r.deleted {
				out[id] = sibling{parentID: r.val.TemplateID, order: r.val.DisplayOrder}
			}
		}
		return out, "category", nil
	case models.KindSubCategory:
		for id, r := range st.subs {
			if !r.deleted {
				out[id] = sibling{parentID: r.val.CategoryID, order: r.val.DisplayOrder}
			}
		}
		return out, "sub-category", nil
	case models.KindIndicator:
		for id, r := range st.indicators {
			if !r.deleted {
				out[id] = sibling{parentID: r.val.Placement.ParentID(), order: r.val.SortOrder}
			}
		}
		return out, "indicator", nil
	case models.KindEssay:
		for id, r := range st.essays {
			if !r.deleted {
				out[id] = sibling{parentID: r.val.CategoryID, order: r.val.DisplayOrder}
			}
		}
		return out, "essay question", nil
	}
	return nil, "", apperrors.NewValidationError("kind", fmt.Sprintf("%q cannot be reordered", kind))
}

func (s *Store) ParentIDs(_ context.Context, kind models.EntityKind, ids []uint) (map[uint]uint, error) {
	parents := make(map[uint]uint, len(ids))
	err := s.read(func(st *state) error {
		rows, _, err := st.siblings(kind)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if row, ok := rows[id]; ok {
				parents[id] = row.parentID
			}
		}
		return nil
	})
	return parents, err
}

func (s *Store) ApplyOrder(_ context.Context, kind models.EntityKind, assignments []models.OrderAssignment) error {
	return s.write(func(st *state) error {
		rows, entity, err := st.siblings(kind)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if _, ok := rows[a.ID]; !ok {
				return &apperrors.NotFoundError{Entity: entity}
			}
		}

		now := s.now()
		for _, a := range assignments {
			switch kind {
			case models.KindCategory:
				r := st.categories[a.ID]
				r.val.DisplayOrder, r.val.UpdatedAt = a.Order, now
				st.categories[a.ID] = r
			case models.KindSubCategory:
				r := st.subs[a.ID]
				r.val.DisplayOrder, r.val.UpdatedAt = a.Order, now
				st.subs[a.ID] = r
			case models.KindIndicator:
				r := st.indicators[a.ID]
				r.val.SortOrder, r.val.UpdatedAt = a.Order, now
				st.indicators[a.ID] = r
			case models.KindEssay:
				r := st.essays[a.ID]
				r.val.DisplayOrder, r.val.UpdatedAt = a.Order, now
				st.essays[a.ID] = r
			}
		}
		return nil
	})
}

func (s *Store) NextOrder(_ context.Context, kind models.EntityKind, parentID uint) (int, error) {
	next := 1
	err := s.read(func(st *state) error {
		rows, _, err := st.siblings(kind)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.parentID == parentID && row.order >= next {
				next = row.order + 1
			}
		}
		return nil
	})
	return next, err
}

func (s *Store) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	return s.write(func(st *state) error {
		log.ID = st.newID()
		log.CreatedAt = s.now()
		st.auditLogs = append(st.auditLogs, *log)
		return nil
	})
}

func (s *Store) ListAuditLogs(_ context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	logs := []models.AuditLog{}
	err := s.read(func(st *state) error {
		for _, l := range st.auditLogs {
			if filter.Resource == "" || l.Resource == filter.Resource {
				logs = append(logs, l)
			}
		}
		return nil
	})
	slices.SortFunc(logs, func(a, b models.AuditLog) int { return cmp.Compare(b.ID, a.ID) })

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(filter.Offset, 0)
	if offset >= len(logs) {
		return []models.AuditLog{}, err
	}
	logs = logs[offset:]
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, err
}
