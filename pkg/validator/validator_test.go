package validator

import (
	"errors"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type TestStruct struct {
		Code   string  `json:"code" validate:"required,max=10"`
		Kind   string  `json:"kind" validate:"required,oneof=category essay"`
		Weight float64 `json:"weight" validate:"gte=0,lte=100"`
	}

	tests := []struct {
		name      string
		input     TestStruct
		expected  bool
		badFields []string
	}{
		{
			name:     "valid struct",
			input:    TestStruct{Code: "ADM", Kind: "category", Weight: 30},
			expected: true,
		},
		{
			name:      "missing required field",
			input:     TestStruct{Code: "", Kind: "category", Weight: 30},
			expected:  false,
			badFields: []string{"code"},
		},
		{
			name:      "invalid enum",
			input:     TestStruct{Code: "ADM", Kind: "template", Weight: 30},
			expected:  false,
			badFields: []string{"kind"},
		},
		{
			name:      "weight out of range",
			input:     TestStruct{Code: "ADM", Kind: "essay", Weight: 120},
			expected:  false,
			badFields: []string{"weight"},
		},
		{
			name:      "several failures",
			input:     TestStruct{Code: "TOO-LONG-CODE", Kind: "", Weight: -1},
			expected:  false,
			badFields: []string{"code", "kind", "weight"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			isValid := err == nil

			if isValid != tt.expected {
				t.Fatalf("ValidateStruct() = %v, expected %v, error: %v", isValid, tt.expected, err)
			}
			if isValid {
				return
			}

			var fields FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected FieldErrors, got %T", err)
			}
			if len(fields) != len(tt.badFields) {
				t.Errorf("expected %d field errors, got %d: %v", len(tt.badFields), len(fields), fields)
			}
			for _, f := range tt.badFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("expected error for field %q, got %v", f, fields)
				}
			}
		})
	}
}

func TestValidateStructNestedSlice(t *testing.T) {
	type item struct {
		ID uint `json:"id" validate:"required"`
	}
	type request struct {
		Items []item `json:"items" validate:"required,min=1,dive"`
	}

	err := ValidateStruct(&request{Items: []item{{ID: 1}, {ID: 0}}})
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fields["items[1].id"]; !ok {
		t.Errorf("expected error on items[1].id, got %v", fields)
	}

	err = ValidateStruct(&request{})
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors for empty items, got %v", err)
	}
	if _, ok := fields["items"]; !ok {
		t.Errorf("expected error on items, got %v", fields)
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		field    string
		value    string
		expected bool
	}{
		{"name", "BAN-PT 2024", true},
		{"name", "", false},
		{"name", "   ", false},
	}

	for _, tt := range tests {
		err := ValidateRequired(tt.field, tt.value)
		isValid := err == nil

		if isValid != tt.expected {
			t.Errorf("ValidateRequired(%q, %q) = %v, expected %v", tt.field, tt.value, isValid, tt.expected)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  test  ", "test"},
		{"test\x00string", "teststring"},
		{"normal", "normal"},
	}

	for _, tt := range tests {
		result := SanitizeString(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeString(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}
