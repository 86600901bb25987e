package memstore

import (
	"cmp"
	"context"
	"slices"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

func (st *state) liveSubCategory(id uint) bool {
	r, ok := st.subs[id]
	return ok && !r.deleted
}

func (st *state) subCategoryCodeTaken(categoryID uint, code string, exceptID uint) bool {
	for id, r := range st.subs {
		if !r.deleted && id != exceptID && r.val.CategoryID == categoryID && r.val.Code == code {
			return true
		}
	}
	return false
}

func (st *state) deleteSubCategory(id uint) {
	r := st.subs[id]
	r.deleted = true
	st.subs[id] = r
	for iid, ind := range st.indicators {
		if !ind.deleted && ind.val.Placement.ParentID() == id {
			ind.deleted = true
			st.indicators[iid] = ind
		}
	}
}

// templateOfSub returns the template owning a sub-category, or 0
func (st *state) templateOfSub(subID uint) uint {
	sc, ok := st.subs[subID]
	if !ok {
		return 0
	}
	c, ok := st.categories[sc.val.CategoryID]
	if !ok {
		return 0
	}
	return c.val.TemplateID
}

func (s *Store) CreateSubCategory(_ context.Context, sc *models.SubCategory) error {
	return s.write(func(st *state) error {
		if !st.liveCategory(sc.CategoryID) {
			return apperrors.NotFound("category", sc.CategoryID)
		}
		if st.subCategoryCodeTaken(sc.CategoryID, sc.Code, 0) {
			return &apperrors.DuplicateCodeError{Entity: "sub-category", Code: sc.Code, Scope: "category"}
		}
		now := s.now()
		sc.ID = st.newID()
		sc.CreatedAt, sc.UpdatedAt = now, now
		st.subs[sc.ID] = record[models.SubCategory]{val: *sc}
		return nil
	})
}

func (s *Store) GetSubCategory(_ context.Context, id uint) (*models.SubCategory, error) {
	var out *models.SubCategory
	err := s.read(func(st *state) error {
		if r, ok := st.subs[id]; ok && !r.deleted {
			sc := r.val
			out = &sc
		}
		return nil
	})
	return out, err
}

func (s *Store) ListSubCategories(_ context.Context, categoryID uint) ([]models.SubCategory, error) {
	subs := []models.SubCategory{}
	err := s.read(func(st *state) error {
		for _, r := range st.subs {
			if !r.deleted && r.val.CategoryID == categoryID {
				subs = append(subs, r.val)
			}
		}
		return nil
	})
	slices.SortFunc(subs, func(a, b models.SubCategory) int {
		return byOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
	})
	return subs, err
}

func (s *Store) ListSubCategoriesByTemplate(_ context.Context, templateID uint) ([]models.SubCategory, error) {
	subs := []models.SubCategory{}
	err := s.read(func(st *state) error {
		for _, r := range st.subs {
			if r.deleted {
				continue
			}
			c, ok := st.categories[r.val.CategoryID]
			if ok && !c.deleted && c.val.TemplateID == templateID {
				subs = append(subs, r.val)
			}
		}
		return nil
	})
	slices.SortFunc(subs, func(a, b models.SubCategory) int {
		if c := cmp.Compare(a.CategoryID, b.CategoryID); c != 0 {
			return c
		}
		return byOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
	})
	return subs, err
}

func (s *Store) UpdateSubCategory(_ context.Context, sc *models.SubCategory) error {
	return s.write(func(st *state) error {
		r, ok := st.subs[sc.ID]
		if !ok || r.deleted {
			return apperrors.NotFound("sub-category", sc.ID)
		}
		sc.CategoryID = r.val.CategoryID
		if st.subCategoryCodeTaken(sc.CategoryID, sc.Code, sc.ID) {
			return &apperrors.DuplicateCodeError{Entity: "sub-category", Code: sc.Code, Scope: "category"}
		}
		sc.CreatedAt = r.val.CreatedAt
		sc.UpdatedAt = s.now()
		st.subs[sc.ID] = record[models.SubCategory]{val: *sc}
		return nil
	})
}

func (s *Store) SoftDeleteSubCategory(_ context.Context, id uint) error {
	return s.write(func(st *state) error {
		if !st.liveSubCategory(id) {
			return apperrors.NotFound("sub-category", id)
		}
		st.deleteSubCategory(id)
		return nil
	})
}
