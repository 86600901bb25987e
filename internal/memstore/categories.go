package memstore

import (
	"cmp"
	"context"
	"slices"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

func byOrder(orderA, orderB int, idA, idB uint) int {
	if c := cmp.Compare(orderA, orderB); c != 0 {
		return c
	}
	return cmp.Compare(idA, idB)
}

func (st *state) liveTemplate(id uint) bool {
	r, ok := st.templates[id]
	return ok && !r.deleted
}

func (st *state) liveCategory(id uint) bool {
	r, ok := st.categories[id]
	return ok && !r.deleted
}

func (st *state) categoryCodeTaken(templateID uint, code string, exceptID uint) bool {
	for id, r := range st.categories {
		if !r.deleted && id != exceptID && r.val.TemplateID == templateID && r.val.Code == code {
			return true
		}
	}
	return false
}

func (st *state) deleteCategory(id uint) {
	r := st.categories[id]
	r.deleted = true
	st.categories[id] = r
	for sid, sc := range st.subs {
		if !sc.deleted && sc.val.CategoryID == id {
			st.deleteSubCategory(sid)
		}
	}
	for eid, e := range st.essays {
		if !e.deleted && e.val.CategoryID == id {
			e.deleted = true
			st.essays[eid] = e
		}
	}
}

func checkWeight(weight float64) error {
	if weight < 0 || weight > 100 {
		return apperrors.NewValidationError("weight", "must be between 0 and 100")
	}
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	return s.write(func(st *state) error {
		if !st.liveTemplate(c.TemplateID) {
			return apperrors.NotFound("template", c.TemplateID)
		}
		if err := checkWeight(c.Weight); err != nil {
			return err
		}
		if st.categoryCodeTaken(c.TemplateID, c.Code, 0) {
			return &apperrors.DuplicateCodeError{Entity: "category", Code: c.Code, Scope: "template"}
		}
		now := s.now()
		c.ID = st.newID()
		c.CreatedAt, c.UpdatedAt = now, now
		st.categories[c.ID] = record[models.Category]{val: *c}
		return nil
	})
}

func (s *Store) GetCategory(_ context.Context, id uint) (*models.Category, error) {
	var out *models.Category
	err := s.read(func(st *state) error {
		if r, ok := st.categories[id]; ok && !r.deleted {
			c := r.val
			out = &c
		}
		return nil
	})
	return out, err
}

func (s *Store) ListCategories(_ context.Context, templateID uint) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.read(func(st *state) error {
		for _, r := range st.categories {
			if !r.deleted && r.val.TemplateID == templateID {
				categories = append(categories, r.val)
			}
		}
		return nil
	})
	slices.SortFunc(categories, func(a, b models.Category) int {
		return byOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
	})
	return categories, err
}

func (s *Store) UpdateCategory(_ context.Context, c *models.Category) error {
	return s.write(func(st *state) error {
		r, ok := st.categories[c.ID]
		if !ok || r.deleted {
			return apperrors.NotFound("category", c.ID)
		}
		if err := checkWeight(c.Weight); err != nil {
			return err
		}
		c.TemplateID = r.val.TemplateID
		if st.categoryCodeTaken(c.TemplateID, c.Code, c.ID) {
			return &apperrors.DuplicateCodeError{Entity: "category", Code: c.Code, Scope: "template"}
		}
		c.CreatedAt = r.val.CreatedAt
		c.UpdatedAt = s.now()
		st.categories[c.ID] = record[models.Category]{val: *c}
		return nil
	})
}

func (s *Store) SoftDeleteCategory(_ context.Context, id uint) error {
	return s.write(func(st *state) error {
		if !st.liveCategory(id) {
			return apperrors.NotFound("category", id)
		}
		st.deleteCategory(id)
		return nil
	})
}
