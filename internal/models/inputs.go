package models

// TemplateInput is the writable part of a template
type TemplateInput struct {
	Name          string       `json:"name" validate:"required,max=200"`
	Description   *string      `json:"description,omitempty"`
	Version       string       `json:"version" validate:"max=50"`
	Type          TemplateType `json:"type" validate:"required,oneof=akreditasi indeksasi"`
	IsActive      bool         `json:"is_active"`
	EffectiveDate string       `json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CategoryInput is the writable part of a category
type CategoryInput struct {
	Code         string  `json:"code" validate:"required,max=50"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  *string `json:"description,omitempty"`
	Weight       float64 `json:"weight" validate:"gte=0,lte=100"`
	DisplayOrder int     `json:"display_order" validate:"gte=0"`
}

// SubCategoryInput is the writable part of a sub-category
type SubCategoryInput struct {
	Code         string  `json:"code" validate:"required,max=50"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder int     `json:"display_order" validate:"gte=0"`
}

// IndicatorInput is the writable part of an indicator. Either SubCategoryID
// or LegacyCategory must be given, never both.
type IndicatorInput struct {
	SubCategoryID      *uint      `json:"sub_category_id,omitempty" validate:"required_without=LegacyCategory,excluded_with=LegacyCategory"`
	LegacyCategory     string     `json:"legacy_category,omitempty" validate:"max=255"`
	LegacySubCategory  string     `json:"legacy_sub_category,omitempty" validate:"max=255"`
	Code               string     `json:"code" validate:"required,max=50"`
	Question           string     `json:"question" validate:"required"`
	Description        *string    `json:"description,omitempty"`
	Weight             float64    `json:"weight" validate:"gte=0,lte=100"`
	AnswerType         AnswerType `json:"answer_type" validate:"required,oneof=boolean scale text"`
	RequiresAttachment bool       `json:"requires_attachment"`
	SortOrder          int        `json:"sort_order" validate:"gte=0"`
	IsActive           *bool      `json:"is_active,omitempty"`
}

// Placement derives the tagged placement from the input
func (in IndicatorInput) Placement() IndicatorPlacement {
	if in.SubCategoryID != nil {
		return HierarchicalPlacement(*in.SubCategoryID)
	}
	return LegacyPlacement(in.LegacyCategory, in.LegacySubCategory)
}

// EssayInput is the writable part of an essay question
type EssayInput struct {
	Code         string  `json:"code" validate:"required,max=50"`
	Question     string  `json:"question" validate:"required"`
	Guidance     *string `json:"guidance,omitempty"`
	MaxWords     int     `json:"max_words" validate:"gte=0"`
	IsRequired   bool    `json:"is_required"`
	IsActive     *bool   `json:"is_active,omitempty"`
	DisplayOrder int     `json:"display_order" validate:"gte=0"`
}

// CloneRequest asks for a deep copy of a template
type CloneRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Activate *bool  `json:"activate,omitempty"`
}

// ReorderItem places one sibling. Position is 1-based; 0 means "use the array index".
type ReorderItem struct {
	ID       uint `json:"id" validate:"required"`
	Position int  `json:"position" validate:"gte=0"`
}

// ReorderRequest reorders siblings of a single kind
type ReorderRequest struct {
	Kind  EntityKind    `json:"kind" validate:"required,oneof=category subcategory indicator essay"`
	Items []ReorderItem `json:"items" validate:"required,min=1,dive"`
}

// MigrateIndicatorRequest moves a legacy indicator into a sub-category
type MigrateIndicatorRequest struct {
	SubCategoryID uint `json:"sub_category_id" validate:"required"`
}
