package api

import (
	"testing"

	"github.com/gcbaptista/go-facet-query/model"
)

func TestValidationResult_AddError(t *testing.T) {
	result := &ValidationResult{Valid: true}

	result.AddError("field1", "error message")

	if result.Valid {
		t.Error("Expected Valid to be false after adding error")
	}

	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 error, got %d", len(result.Errors))
	}

	if result.Errors[0].Field != "field1" {
		t.Errorf("Expected field 'field1', got '%s'", result.Errors[0].Field)
	}

	if result.Errors[0].Message != "error message" {
		t.Errorf("Expected message 'error message', got '%s'", result.Errors[0].Message)
	}
}

func TestValidationResult_HasErrors(t *testing.T) {
	result := &ValidationResult{Valid: true}

	if result.HasErrors() {
		t.Error("Expected HasErrors to be false for empty result")
	}

	result.AddError("field", "message")

	if !result.HasErrors() {
		t.Error("Expected HasErrors to be true after adding error")
	}
}

func TestValidateSearchOptions(t *testing.T) {
	tests := []struct {
		name       string
		opts       *model.SearchOptions
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "empty options",
			opts:      &model.SearchOptions{},
			wantValid: true,
		},
		{
			name: "every facet type",
			opts: &model.SearchOptions{
				Facets: []model.FacetDefinition{
					{Field: "type", Type: model.FacetTypeTerms, Logic: "or"},
					{Field: "price", Type: model.FacetTypeRange},
					{Field: "location", Type: model.FacetTypeGeoDistance, Lon: 1.0, Lat: 2.0},
					{Field: "rating", Type: model.FacetTypeStatistical},
					{Field: "author", Type: model.FacetTypeTermsStats, ValueField: "sales"},
					{Field: "published", Type: model.FacetTypeDateHistogram, Interval: "month"},
				},
				DefaultFreetextFuzzify: "~",
			},
			wantValid: true,
		},
		{
			name:       "nil options",
			opts:       nil,
			wantValid:  false,
			wantFields: []string{"options"},
		},
		{
			name:       "negative numbers",
			opts:       &model.SearchOptions{PageSize: -1, From: model.IntPtr(-5), SolrFacetInflation: -2},
			wantValid:  false,
			wantFields: []string{"page_size", "from", "solr_facet_inflation"},
		},
		{
			name:       "bad fuzzify mode",
			opts:       &model.SearchOptions{DefaultFreetextFuzzify: "?"},
			wantValid:  false,
			wantFields: []string{"default_freetext_fuzzify"},
		},
		{
			name: "bad facet definitions",
			opts: &model.SearchOptions{Facets: []model.FacetDefinition{
				{Field: " ", Type: model.FacetTypeTerms},
				{Field: "shape", Type: "polygon"},
				{Field: "type", Type: model.FacetTypeTerms, Size: -1, Logic: "XOR"},
				{Field: "location", Type: model.FacetTypeGeoDistance},
				{Field: "published", Type: model.FacetTypeDateHistogram},
				{Field: "author", Type: model.FacetTypeTermsStats},
			}},
			wantValid: false,
			wantFields: []string{
				"facets[0].field",
				"facets[1].type",
				"facets[2].size",
				"facets[2].logic",
				"facets[3]",
				"facets[4].interval",
				"facets[5].value_field",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSearchOptions(tt.opts)

			if result.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v (errors: %+v)", tt.wantValid, result.Valid, result.Errors)
			}

			if len(result.Errors) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %+v", len(tt.wantFields), len(result.Errors), result.Errors)
			}
			for i, field := range tt.wantFields {
				if result.Errors[i].Field != field {
					t.Errorf("Error %d: expected field '%s', got '%s'", i, field, result.Errors[i].Field)
				}
			}
		})
	}
}

func TestValidateSource(t *testing.T) {
	if result := ValidateSource(`{"query":{"match_all":{}}}`); result.HasErrors() {
		t.Errorf("Expected a valid source, got %+v", result.Errors)
	}

	for _, source := range []string{"", "   "} {
		result := ValidateSource(source)
		if !result.HasErrors() {
			t.Errorf("Expected source %q to be rejected", source)
			continue
		}
		if result.Errors[0].Field != "source" {
			t.Errorf("Expected field 'source', got '%s'", result.Errors[0].Field)
		}
	}
}
