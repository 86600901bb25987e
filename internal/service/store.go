package service

import (
	"context"

	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/repository"
)

// Store is the persistence contract of the template engine. Get* methods
// return nil, nil when the row does not exist or was soft-deleted; Update*
// and SoftDelete* return an *apperrors.NotFoundError in that case.
type Store interface {
	TemplateStore
	CategoryStore
	SubCategoryStore
	IndicatorStore
	EssayStore
	UsageStore
	OrderStore
	AuditStore

	// InTx runs fn inside one transaction. fn must use the Store it is given.
	InTx(ctx context.Context, fn func(tx Store) error) error
	// Concurrent reports whether the store may serve parallel reads
	Concurrent() bool
}

type TemplateStore interface {
	CreateTemplate(ctx context.Context, t *models.Template) error
	GetTemplate(ctx context.Context, id uint) (*models.Template, error)
	GetTemplateByName(ctx context.Context, name string) (*models.Template, error)
	ListTemplates(ctx context.Context, filter models.TemplateFilter) ([]models.Template, error)
	UpdateTemplate(ctx context.Context, t *models.Template) error
	// SoftDeleteTemplate marks the template and every descendant as deleted
	SoftDeleteTemplate(ctx context.Context, id uint) error
	CountActiveTemplates(ctx context.Context, templateType models.TemplateType) (int, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context, templateID uint) ([]models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	SoftDeleteCategory(ctx context.Context, id uint) error
}

type SubCategoryStore interface {
	CreateSubCategory(ctx context.Context, sc *models.SubCategory) error
	GetSubCategory(ctx context.Context, id uint) (*models.SubCategory, error)
	ListSubCategories(ctx context.Context, categoryID uint) ([]models.SubCategory, error)
	ListSubCategoriesByTemplate(ctx context.Context, templateID uint) ([]models.SubCategory, error)
	UpdateSubCategory(ctx context.Context, sc *models.SubCategory) error
	SoftDeleteSubCategory(ctx context.Context, id uint) error
}

type IndicatorStore interface {
	CreateIndicator(ctx context.Context, ind *models.Indicator) error
	GetIndicator(ctx context.Context, id uint) (*models.Indicator, error)
	GetIndicatorByCode(ctx context.Context, code string) (*models.Indicator, error)
	ListIndicators(ctx context.Context, subCategoryID uint) ([]models.Indicator, error)
	ListIndicatorsByTemplate(ctx context.Context, templateID uint) ([]models.Indicator, error)
	ListLegacyIndicators(ctx context.Context) ([]models.Indicator, error)
	UpdateIndicator(ctx context.Context, ind *models.Indicator) error
	SoftDeleteIndicator(ctx context.Context, id uint) error
}

type EssayStore interface {
	CreateEssay(ctx context.Context, e *models.EssayQuestion) error
	GetEssay(ctx context.Context, id uint) (*models.EssayQuestion, error)
	ListEssays(ctx context.Context, categoryID uint) ([]models.EssayQuestion, error)
	ListEssaysByTemplate(ctx context.Context, templateID uint) ([]models.EssayQuestion, error)
	UpdateEssay(ctx context.Context, e *models.EssayQuestion) error
	SoftDeleteEssay(ctx context.Context, id uint) error
}

// UsageStore answers questions about assessment responses, which this
// module reads but never writes.
type UsageStore interface {
	HasSubmittedResponses(ctx context.Context, indicatorID uint) (bool, error)
	// SubmittedIndicatorCodes lists the codes of live indicators below the node
	// (template, category, subcategory or indicator) that have a response in a
	// submitted assessment.
	SubmittedIndicatorCodes(ctx context.Context, scope models.EntityKind, id uint) ([]string, error)
}

type OrderStore interface {
	// ParentIDs maps each live id of the given kind to its parent id.
	// Missing ids are absent from the map; legacy indicators map to 0.
	ParentIDs(ctx context.Context, kind models.EntityKind, ids []uint) (map[uint]uint, error)
	ApplyOrder(ctx context.Context, kind models.EntityKind, assignments []models.OrderAssignment) error
	NextOrder(ctx context.Context, kind models.EntityKind, parentID uint) (int, error)
}

type AuditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListAuditLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// postgresStore adapts repository.Store to Store
type postgresStore struct {
	*repository.Store
}

// NewPostgresStore wraps the SQL repositories as a Store
func NewPostgresStore(s *repository.Store) Store {
	return postgresStore{Store: s}
}

func (p postgresStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return p.Store.InTx(ctx, func(tx *repository.Store) error {
		return fn(postgresStore{Store: tx})
	})
}
