package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIDRoundTrip(t *testing.T) {
	for _, kind := range []EntityKind{KindCategory, KindSubCategory, KindIndicator, KindEssay} {
		id := NodeID(kind, 42)
		gotKind, gotID, err := ParseNodeID(id)
		require.NoError(t, err, id)
		assert.Equal(t, kind, gotKind)
		assert.Equal(t, uint(42), gotID)
	}
	assert.Equal(t, "subcategory-7", NodeID(KindSubCategory, 7))
}

func TestParseNodeIDRejects(t *testing.T) {
	tests := []string{
		"",
		"category",
		"category-",
		"-3",
		"sub-3",
		"template-1",
		"Category-1",
		"category-0",
		"category-x",
		"category--1",
		"category-99999999999",
	}
	for _, nodeID := range tests {
		t.Run(nodeID, func(t *testing.T) {
			_, _, err := ParseNodeID(nodeID)
			assert.Error(t, err)
		})
	}
}

func TestEntityKind(t *testing.T) {
	assert.True(t, KindTemplate.Valid())
	assert.False(t, KindTemplate.Reorderable())
	assert.True(t, KindEssay.Reorderable())
	assert.False(t, EntityKind("journal").Valid())
}
