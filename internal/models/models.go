package models

import (
	"time"
)

// TemplateType distinguishes accreditation templates from indexation templates
type TemplateType string

const (
	TemplateTypeAkreditasi TemplateType = "akreditasi"
	TemplateTypeIndeksasi  TemplateType = "indeksasi"
)

// Valid reports whether t is a known template type
func (t TemplateType) Valid() bool {
	return t == TemplateTypeAkreditasi || t == TemplateTypeIndeksasi
}

// AnswerType is the kind of answer an indicator expects
type AnswerType string

const (
	AnswerTypeBoolean AnswerType = "boolean"
	AnswerTypeScale   AnswerType = "scale"
	AnswerTypeText    AnswerType = "text"
)

// AssessmentStatusSubmitted is the only assessment status that locks indicators against deletion
const AssessmentStatusSubmitted = "submitted"

// Template represents an evaluation template (instrumen penilaian)
type Template struct {
	ID            uint         `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	Description   *string      `json:"description,omitempty" db:"description"`
	Version       string       `json:"version" db:"version"`
	Type          TemplateType `json:"type" db:"type"`
	IsActive      bool         `json:"is_active" db:"is_active"`
	EffectiveDate *time.Time   `json:"effective_date,omitempty" db:"effective_date"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// Category represents an Unsur, the first level below a template
type Category struct {
	ID           uint      `json:"id" db:"id"`
	TemplateID   uint      `json:"template_id" db:"template_id"`
	Code         string    `json:"code" db:"code"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Weight       float64   `json:"weight" db:"weight"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SubCategory represents a Sub-Unsur below a category
type SubCategory struct {
	ID           uint      `json:"id" db:"id"`
	CategoryID   uint      `json:"category_id" db:"category_id"`
	Code         string    `json:"code" db:"code"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Indicator represents a single scored question. Its placement is either
// inside a sub-category or a legacy free-text classification.
type Indicator struct {
	ID                 uint               `json:"id" db:"id"`
	Placement          IndicatorPlacement `json:"placement"`
	Code               string             `json:"code" db:"code"`
	Question           string             `json:"question" db:"question"`
	Description        *string            `json:"description,omitempty" db:"description"`
	Weight             float64            `json:"weight" db:"weight"`
	AnswerType         AnswerType         `json:"answer_type" db:"answer_type"`
	RequiresAttachment bool               `json:"requires_attachment" db:"requires_attachment"`
	SortOrder          int                `json:"sort_order" db:"sort_order"`
	IsActive           bool               `json:"is_active" db:"is_active"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// EssayQuestion is an open question attached directly to a category
type EssayQuestion struct {
	ID           uint      `json:"id" db:"id"`
	CategoryID   uint      `json:"category_id" db:"category_id"`
	Code         string    `json:"code" db:"code"`
	Question     string    `json:"question" db:"question"`
	Guidance     *string   `json:"guidance,omitempty" db:"guidance"`
	MaxWords     int       `json:"max_words" db:"max_words"`
	IsRequired   bool      `json:"is_required" db:"is_required"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TemplateFilter narrows template listings
type TemplateFilter struct {
	Type     *TemplateType
	IsActive *bool
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	UserID    *uint     `json:"user_id,omitempty" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditFilter narrows audit log listings
type AuditFilter struct {
	Resource string
	Limit    int
	Offset   int
}

// Actor identifies who performs a mutation, for the audit trail
type Actor struct {
	UserID    uint
	IPAddress string
	UserAgent string
}
