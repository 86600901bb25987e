package memstore

import (
	"cmp"
	"context"
	"slices"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

func (st *state) essayCodeTaken(categoryID uint, code string, exceptID uint) bool {
	for id, r := range st.essays {
		if !r.deleted && id != exceptID && r.val.CategoryID == categoryID && r.val.Code == code {
			return true
		}
	}
	return false
}

func (s *Store) CreateEssay(_ context.Context, e *models.EssayQuestion) error {
	return s.write(func(st *state) error {
		if !st.liveCategory(e.CategoryID) {
			return apperrors.NotFound("category", e.CategoryID)
		}
		if e.MaxWords < 0 {
			return apperrors.NewValidationError("max_words", "must be 0 or greater")
		}
		if st.essayCodeTaken(e.CategoryID, e.Code, 0) {
			return &apperrors.DuplicateCodeError{Entity: "essay question", Code: e.Code, Scope: "category"}
		}
		now := s.now()
		e.ID = st.newID()
		e.CreatedAt, e.UpdatedAt = now, now
		st.essays[e.ID] = record[models.EssayQuestion]{val: *e}
		return nil
	})
}

func (s *Store) GetEssay(_ context.Context, id uint) (*models.EssayQuestion, error) {
	var out *models.EssayQuestion
	err := s.read(func(st *state) error {
		if r, ok := st.essays[id]; ok && !r.deleted {
			e := r.val
			out = &e
		}
		return nil
	})
	return out, err
}

func (s *Store) ListEssays(_ context.Context, categoryID uint) ([]models.EssayQuestion, error) {
	essays := []models.EssayQuestion{}
	err := s.read(func(st *state) error {
		for _, r := range st.essays {
			if !r.deleted && r.val.CategoryID == categoryID {
				essays = append(essays, r.val)
			}
		}
		return nil
	})
	slices.SortFunc(essays, func(a, b models.EssayQuestion) int {
		return byOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
	})
	return essays, err
}

func (s *Store) ListEssaysByTemplate(_ context.Context, templateID uint) ([]models.EssayQuestion, error) {
	essays := []models.EssayQuestion{}
	err := s.read(func(st *state) error {
		for _, r := range st.essays {
			if r.deleted {
				continue
			}
			c, ok := st.categories[r.val.CategoryID]
			if ok && !c.deleted && c.val.TemplateID == templateID {
				essays = append(essays, r.val)
			}
		}
		return nil
	})
	slices.SortFunc(essays, func(a, b models.EssayQuestion) int {
		if c := cmp.Compare(a.CategoryID, b.CategoryID); c != 0 {
			return c
		}
		return byOrder(a.DisplayOrder, b.DisplayOrder, a.ID, b.ID)
	})
	return essays, err
}

func (s *Store) UpdateEssay(_ context.Context, e *models.EssayQuestion) error {
	return s.write(func(st *state) error {
		r, ok := st.essays[e.ID]
		if !ok || r.deleted {
			return apperrors.NotFound("essay question", e.ID)
		}
		e.CategoryID = r.val.CategoryID
		if st.essayCodeTaken(e.CategoryID, e.Code, e.ID) {
			return &apperrors.DuplicateCodeError{Entity: "essay question", Code: e.Code, Scope: "category"}
		}
		e.CreatedAt = r.val.CreatedAt
		e.UpdatedAt = s.now()
		st.essays[e.ID] = record[models.EssayQuestion]{val: *e}
		return nil
	})
}

func (s *Store) SoftDeleteEssay(_ context.Context, id uint) error {
	return s.write(func(st *state) error {
		r, ok := st.essays[id]
		if !ok || r.deleted {
			return apperrors.NotFound("essay question", id)
		}
		r.deleted = true
		st.essays[id] = r
		return nil
	})
}
