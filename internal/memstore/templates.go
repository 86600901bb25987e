package memstore

import (
	"cmp"
	"context"
	"slices"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
)

func (st *state) templateNameTaken(name string, exceptID uint) bool {
	for id, r := range st.templates {
		if !r.deleted && id != exceptID && r.val.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) CreateTemplate(_ context.Context, t *models.Template) error {
	return s.write(func(st *state) error {
		if st.templateNameTaken(t.Name, 0) {
			return &apperrors.DuplicateNameError{Entity: "template", Name: t.Name}
		}
		now := s.now()
		t.ID = st.newID()
		t.CreatedAt, t.UpdatedAt = now, now
		st.templates[t.ID] = record[models.Template]{val: *t}
		return nil
	})
}

func (s *Store) GetTemplate(_ context.Context, id uint) (*models.Template, error) {
	var out *models.Template
	err := s.read(func(st *state) error {
		if r, ok := st.templates[id]; ok && !r.deleted {
			t := r.val
			out = &t
		}
		return nil
	})
	return out, err
}

func (s *Store) GetTemplateByName(_ context.Context, name string) (*models.Template, error) {
	var out *models.Template
	err := s.read(func(st *state) error {
		for _, r := range st.templates {
			if !r.deleted && r.val.Name == name {
				t := r.val
				out = &t
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ListTemplates mirrors the SQL ordering: effective date descending with
// undated templates last, then id descending.
func (s *Store) ListTemplates(_ context.Context, filter models.TemplateFilter) ([]models.Template, error) {
	templates := []models.Template{}
	err := s.read(func(st *state) error {
		for _, r := range st.templates {
			if r.deleted {
				continue
			}
			if filter.Type != nil && r.val.Type != *filter.Type {
				continue
			}
			if filter.IsActive != nil && r.val.IsActive != *filter.IsActive {
				continue
			}
			templates = append(templates, r.val)
		}
		return nil
	})
	slices.SortFunc(templates, func(a, b models.Template) int {
		switch {
		case a.EffectiveDate == nil && b.EffectiveDate != nil:
			return 1
		case a.EffectiveDate != nil && b.EffectiveDate == nil:
			return -1
		case a.EffectiveDate != nil && !a.EffectiveDate.Equal(*b.EffectiveDate):
			return b.EffectiveDate.Compare(*a.EffectiveDate)
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return templates, err
}

func (s *Store) UpdateTemplate(_ context.Context, t *models.Template) error {
	return s.write(func(st *state) error {
		r, ok := st.templates[t.ID]
		if !ok || r.deleted {
			return apperrors.NotFound("template", t.ID)
		}
		if st.templateNameTaken(t.Name, t.ID) {
			return &apperrors.DuplicateNameError{Entity: "template", Name: t.Name}
		}
		t.CreatedAt = r.val.CreatedAt
		t.UpdatedAt = s.now()
		st.templates[t.ID] = record[models.Template]{val: *t}
		return nil
	})
}

func (s *Store) SoftDeleteTemplate(_ context.Context, id uint) error {
	return s.write(func(st *state) error {
		r, ok := st.templates[id]
		if !ok || r.deleted {
			return apperrors.NotFound("template", id)
		}
		r.deleted = true
		st.templates[id] = r
		for cid, c := range st.categories {
			if !c.deleted && c.val.TemplateID == id {
				st.deleteCategory(cid)
			}
		}
		return nil
	})
}

func (s *Store) CountActiveTemplates(_ context.Context, templateType models.TemplateType) (int, error) {
	count := 0
	err := s.read(func(st *state) error {
		for _, r := range st.templates {
			if !r.deleted && r.val.IsActive && r.val.Type == templateType {
				count++
			}
		}
		return nil
	})
	return count, err
}
