package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akreditasi-jurnal/internal/apperrors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"validation", apperrors.NewValidationError("weight", "must be at most 100"), http.StatusBadRequest, CodeValidation},
		{"mixed parent", &apperrors.MixedParentError{Kind: "category", ParentIDs: []uint{1, 2}}, http.StatusBadRequest, CodeMixedParent},
		{"not found", apperrors.NotFound("template", 9), http.StatusNotFound, CodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", apperrors.NotFound("template", 9)), http.StatusNotFound, CodeNotFound},
		{"duplicate name", &apperrors.DuplicateNameError{Entity: "template", Name: "A"}, http.StatusConflict, CodeDuplicateName},
		{"duplicate code", &apperrors.DuplicateCodeError{Entity: "indicator", Code: "A-1", Scope: "all templates"}, http.StatusConflict, CodeDuplicateCode},
		{"blocked", &apperrors.DeletionBlockedError{Entity: "category", ID: 1, Reason: apperrors.ReasonSubmittedUsage}, http.StatusConflict, CodeDeletionBlocked},
		{"clone duplicate", &apperrors.CloneFailedError{Err: &apperrors.DuplicateCodeError{Entity: "indicator"}}, http.StatusConflict, CodeCloneFailed},
		{"clone failure", &apperrors.CloneFailedError{Err: errors.New("connection reset")}, http.StatusInternalServerError, CodeCloneFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := statusFor(tt.err)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestWriteErrorHidesInternalCauses(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			"clone failure",
			&apperrors.CloneFailedError{SourceID: 3, Name: "BAN-PT 2025", Err: errors.New(`pq: relation "indicators" does not exist`)},
			http.StatusInternalServerError,
			`Failed to clone template 3 as "BAN-PT 2025"`,
		},
		{"unknown", errors.New("dial tcp 10.0.0.5:5432: connection refused"), http.StatusInternalServerError, ErrMsgInternal},
		{"not found", apperrors.NotFound("template", 9), http.StatusNotFound, apperrors.NotFound("template", 9).Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/templates/3/clone", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Error)
			assert.NotContains(t, body.Error, "pq:")
		})
	}
}

func TestNormalizeSlices(t *testing.T) {
	type node struct {
		Name     string
		Children []node
		Tags     []string
		Parent   *node
	}

	out := normalizeSlices(node{Name: "root", Children: []node{{Name: "leaf"}}}).(node)
	assert.NotNil(t, out.Tags)
	assert.NotNil(t, out.Children[0].Children)
	assert.NotNil(t, out.Children[0].Tags)
	assert.Nil(t, out.Parent)

	var nilSlice []string
	assert.Equal(t, []string{}, normalizeSlices(nilSlice))
	assert.Nil(t, normalizeSlices(nil))
}
