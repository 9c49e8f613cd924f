// Package api provides the gin HTTP surface of the translator and the
// validation utilities for its requests.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-facet-query/model"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateSearchOptions checks the numeric options, the fuzzify mode and
// every facet definition
func ValidateSearchOptions(opts *model.SearchOptions) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if opts == nil {
		result.AddError("options", "Search options are required")
		return result
	}

	if opts.PageSize < 0 {
		result.AddError("page_size", "Page size cannot be negative")
	}
	if opts.From != nil && *opts.From < 0 {
		result.AddError("from", "From cannot be negative")
	}
	if opts.SolrFacetInflation < 0 {
		result.AddError("solr_facet_inflation", "Facet inflation cannot be negative")
	}

	switch opts.DefaultFreetextFuzzify {
	case model.FuzzifyNone, model.FuzzifyWildcard, model.FuzzifyFuzzy:
	default:
		result.AddError("default_freetext_fuzzify", "Invalid fuzzify mode '"+opts.DefaultFreetextFuzzify+"' (must be '*', '~' or empty)")
	}

	for i, def := range opts.Facets {
		validateFacetDefinition(result, fmt.Sprintf("facets[%d]", i), def)
	}

	return result
}

func validateFacetDefinition(result *ValidationResult, path string, def model.FacetDefinition) {
	if strings.TrimSpace(def.Field) == "" {
		result.AddError(path+".field", "Facet field cannot be empty or whitespace-only")
	}

	if _, err := model.ParseFacetType(string(def.Type)); err != nil {
		result.AddError(path+".type", err.Error())
		return
	}

	if def.Size < 0 {
		result.AddError(path+".size", "Facet size cannot be negative")
	}

	switch def.Type {
	case model.FacetTypeTerms:
		if logic := def.EffectiveLogic(); logic != model.LogicAnd && logic != model.LogicOr {
			result.AddError(path+".logic", "Invalid logic '"+def.Logic+"' (must be 'AND' or 'OR')")
		}
	case model.FacetTypeGeoDistance:
		if def.Lon == nil || def.Lat == nil {
			result.AddError(path, "geo_distance facet requires lon and lat")
		}
	case model.FacetTypeDateHistogram:
		if def.Interval == "" {
			result.AddError(path+".interval", "date_histogram facet requires an interval")
		}
	case model.FacetTypeTermsStats:
		if def.ValueField == "" {
			result.AddError(path+".value_field", "terms_stats facet requires a value_field")
		}
	}
}

// ValidateSource validates the source parameter of a restore request
func ValidateSource(source string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(source) == "" {
		result.AddError("source", "Source query is required")
	}

	return result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}
