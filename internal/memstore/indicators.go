package memstore

import (
	"cmp"
	"context"
	"slices"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

func (st *state) indicatorCodeTaken(code string, exceptID uint) bool {
	for id, r := range st.indicators {
		if !r.deleted && id != exceptID && r.val.Code == code {
			return true
		}
	}
	return false
}

func (st *state) checkIndicator(ind *models.Indicator) error {
	if err := ind.Placement.Validate(); err != nil {
		return &apperrors.ValidationError{Message: err.Error()}
	}
	if err := checkWeight(ind.Weight); err != nil {
		return err
	}
	if sub := ind.Placement.ParentID(); sub != 0 && !st.liveSubCategory(sub) {
		return apperrors.NotFound("sub-category", sub)
	}
	if st.indicatorCodeTaken(ind.Code, ind.ID) {
		return &apperrors.DuplicateCodeError{Entity: "indicator", Code: ind.Code, Scope: "all indicators"}
	}
	return nil
}

func (s *Store) CreateIndicator(_ context.Context, ind *models.Indicator) error {
	return s.write(func(st *state) error {
		ind.ID = 0
		if err := st.checkIndicator(ind); err != nil {
			return err
		}
		now := s.now()
		ind.ID = st.newID()
		ind.CreatedAt, ind.UpdatedAt = now, now
		st.indicators[ind.ID] = record[models.Indicator]{val: *ind}
		return nil
	})
}

func (s *Store) getIndicator(match func(models.Indicator) bool) (*models.Indicator, error) {
	var out *models.Indicator
	err := s.read(func(st *state) error {
		for _, r := range st.indicators {
			if !r.deleted && match(r.val) {
				ind := r.val
				out = &ind
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) GetIndicator(_ context.Context, id uint) (*models.Indicator, error) {
	return s.getIndicator(func(ind models.Indicator) bool { return ind.ID == id })
}

func (s *Store) GetIndicatorByCode(_ context.Context, code string) (*models.Indicator, error) {
	return s.getIndicator(func(ind models.Indicator) bool { return ind.Code == code })
}

func (s *Store) listIndicators(match func(st *state, ind models.Indicator) bool, sortFn func(a, b models.Indicator) int) ([]models.Indicator, error) {
	indicators := []models.Indicator{}
	err := s.read(func(st *state) error {
		for _, r := range st.indicators {
			if !r.deleted && match(st, r.val) {
				indicators = append(indicators, r.val)
			}
		}
		return nil
	})
	slices.SortFunc(indicators, sortFn)
	return indicators, err
}

func bySortOrder(a, b models.Indicator) int {
	return byOrder(a.SortOrder, b.SortOrder, a.ID, b.ID)
}

func (s *Store) ListIndicators(_ context.Context, subCategoryID uint) ([]models.Indicator, error) {
	return s.listIndicators(func(_ *state, ind models.Indicator) bool {
		return ind.Placement.ParentID() == subCategoryID
	}, bySortOrder)
}

func (s *Store) ListIndicatorsByTemplate(_ context.Context, templateID uint) ([]models.Indicator, error) {
	return s.listIndicators(func(st *state, ind models.Indicator) bool {
		sub := ind.Placement.ParentID()
		if sub == 0 || !st.liveSubCategory(sub) {
			return false
		}
		sc := st.subs[sub]
		return st.liveCategory(sc.val.CategoryID) && st.templateOfSub(sub) == templateID
	}, func(a, b models.Indicator) int {
		if c := cmp.Compare(a.Placement.SubCategoryID, b.Placement.SubCategoryID); c != 0 {
			return c
		}
		return bySortOrder(a, b)
	})
}

func (s *Store) ListLegacyIndicators(_ context.Context) ([]models.Indicator, error) {
	return s.listIndicators(func(_ *state, ind models.Indicator) bool {
		return ind.Placement.IsLegacy()
	}, func(a, b models.Indicator) int {
		if c := cmp.Compare(a.Placement.LegacyCategory, b.Placement.LegacyCategory); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Placement.LegacySubCategory, b.Placement.LegacySubCategory); c != 0 {
			return c
		}
		return bySortOrder(a, b)
	})
}

func (s *Store) UpdateIndicator(_ context.Context, ind *models.Indicator) error {
	return s.write(func(st *state) error {
		r, ok := st.indicators[ind.ID]
		if !ok || r.deleted {
			return apperrors.NotFound("indicator", ind.ID)
		}
		if err := st.checkIndicator(ind); err != nil {
			return err
		}
		ind.CreatedAt = r.val.CreatedAt
		ind.UpdatedAt = s.now()
		st.indicators[ind.ID] = record[models.Indicator]{val: *ind}
		return nil
	})
}

func (s *Store) SoftDeleteIndicator(_ context.Context, id uint) error {
	return s.write(func(st *state) error {
		r, ok := st.indicators[id]
		if !ok || r.deleted {
			return apperrors.NotFound("indicator", id)
		}
		r.deleted = true
		st.indicators[id] = r
		return nil
	})
}
