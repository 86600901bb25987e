package models

import (
	"errors"
	"strings"
)

// IndicatorMode tags which variant an IndicatorPlacement holds
type IndicatorMode string

const (
	IndicatorModeHierarchical IndicatorMode = "hierarchical"
	IndicatorModeLegacy       IndicatorMode = "legacy"
)

// IndicatorPlacement says where an indicator lives. Hierarchical placements
// point at a sub-category; legacy placements only carry the old free-text labels.
type IndicatorPlacement struct {
	Mode              IndicatorMode `json:"mode"`
	SubCategoryID     uint          `json:"sub_category_id,omitempty"`
	LegacyCategory    string        `json:"legacy_category,omitempty"`
	LegacySubCategory string        `json:"legacy_sub_category,omitempty"`
}

// HierarchicalPlacement places an indicator under a sub-category
func HierarchicalPlacement(subCategoryID uint) IndicatorPlacement {
	return IndicatorPlacement{Mode: IndicatorModeHierarchical, SubCategoryID: subCategoryID}
}

// LegacyPlacement keeps an indicator outside the hierarchy
func LegacyPlacement(category, subCategory string) IndicatorPlacement {
	return IndicatorPlacement{
		Mode:              IndicatorModeLegacy,
		LegacyCategory:    strings.TrimSpace(category),
		LegacySubCategory: strings.TrimSpace(subCategory),
	}
}

// IsLegacy reports whether the placement is outside the hierarchy
func (p IndicatorPlacement) IsLegacy() bool {
	return p.Mode == IndicatorModeLegacy
}

// ParentID returns the owning sub-category id, or 0 for legacy placements
func (p IndicatorPlacement) ParentID() uint {
	if p.Mode != IndicatorModeHierarchical {
		return 0
	}
	return p.SubCategoryID
}

// Validate rejects placements that mix both shapes
func (p IndicatorPlacement) Validate() error {
	switch p.Mode {
	case IndicatorModeHierarchical:
		if p.SubCategoryID == 0 {
			return errors.New("hierarchical placement requires sub_category_id")
		}
		if p.LegacyCategory != "" || p.LegacySubCategory != "" {
			return errors.New("hierarchical placement must not carry legacy labels")
		}
	case IndicatorModeLegacy:
		if p.SubCategoryID != 0 {
			return errors.New("legacy placement must not reference a sub-category")
		}
		if p.LegacyCategory == "" {
			return errors.New("legacy placement requires legacy_category")
		}
	default:
		return errors.New("unknown placement mode")
	}
	return nil
}
