package models

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityKind identifies one level of the template hierarchy
type EntityKind string

const (
	KindTemplate    EntityKind = "template"
	KindCategory    EntityKind = "category"
	KindSubCategory EntityKind = "subcategory"
	KindIndicator   EntityKind = "indicator"
	KindEssay       EntityKind = "essay"
)

// Valid reports whether k names a known level
func (k EntityKind) Valid() bool {
	switch k {
	case KindTemplate, KindCategory, KindSubCategory, KindIndicator, KindEssay:
		return true
	}
	return false
}

// Reorderable reports whether siblings of this kind carry an order column
func (k EntityKind) Reorderable() bool {
	return k.Valid() && k != KindTemplate
}

// NodeID builds the composite tree identifier "{kind}-{id}"
func NodeID(kind EntityKind, id uint) string {
	return fmt.Sprintf("%s-%d", kind, id)
}

// ParseNodeID splits a composite tree identifier back into kind and id.
// The kind must match exactly; "sub-3" or "category-" are rejected.
func ParseNodeID(nodeID string) (EntityKind, uint, error) {
	idx := strings.LastIndexByte(nodeID, '-')
	if idx <= 0 || idx == len(nodeID)-1 {
		return "", 0, fmt.Errorf("malformed node id %q", nodeID)
	}
	kind := EntityKind(nodeID[:idx])
	if !kind.Reorderable() {
		return "", 0, fmt.Errorf("unknown node kind %q", kind)
	}
	id, err := strconv.ParseUint(nodeID[idx+1:], 10, 32)
	if err != nil || id == 0 {
		return "", 0, fmt.Errorf("malformed node id %q", nodeID)
	}
	return kind, uint(id), nil
}

// TreeNode is one node of the assembled template tree
type TreeNode struct {
	ID          string     `json:"id"`
	Type        EntityKind `json:"type"`
	EntityID    uint       `json:"entity_id"`
	ParentID    string     `json:"parent_id,omitempty"`
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Weight      *float64   `json:"weight,omitempty"`
	Order       int        `json:"order"`
	IsActive    *bool      `json:"is_active,omitempty"`
	Children    []TreeNode `json:"children"`
}

// OrderAssignment is a resolved (id, order) pair written by a reorder
type OrderAssignment struct {
	ID    uint
	Order int
}

// CategoryWeight is one row of a weight summary
type CategoryWeight struct {
	CategoryID           uint    `json:"category_id"`
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	Weight               float64 `json:"weight"`
	IndicatorCount       int     `json:"indicator_count"`
	IndicatorWeightTotal float64 `json:"indicator_weight_total"`
}

// WeightSummary reports the category weight total of a template
type WeightSummary struct {
	TemplateID      uint             `json:"template_id"`
	TotalWeight     float64          `json:"total_weight"`
	MaxTotalWeight  float64          `json:"max_total_weight"`
	RemainingWeight float64          `json:"remaining_weight"`
	ExceedsLimit    bool             `json:"exceeds_limit"`
	Categories      []CategoryWeight `json:"categories"`
}

// CategoryStatistics aggregates the contents of one category
type CategoryStatistics struct {
	CategoryID           uint    `json:"category_id"`
	SubCategoryCount     int     `json:"sub_category_count"`
	IndicatorCount       int     `json:"indicator_count"`
	ActiveIndicatorCount int     `json:"active_indicator_count"`
	EssayCount           int     `json:"essay_count"`
	RequiredEssayCount   int     `json:"required_essay_count"`
	IndicatorWeightTotal float64 `json:"indicator_weight_total"`
}

// DeletionVerdict is the answer of the deletion guard for one node
type DeletionVerdict struct {
	Kind      EntityKind `json:"kind"`
	ID        uint       `json:"id"`
	Allowed   bool       `json:"allowed"`
	Reason    string     `json:"reason,omitempty"`
	BlockedBy []string   `json:"blocked_by,omitempty"`
}
