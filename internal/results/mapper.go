// Package results normalizes raw engine responses into model.Result.
package results

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
	"github.com/gcbaptista/go-facet-query/internal/metrics"
	"github.com/gcbaptista/go-facet-query/model"
)

// Mapper turns engine responses into results.
type Mapper struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewMapper creates a mapper. Nil logger and collector are allowed.
func NewMapper(logger *zap.Logger, collector *metrics.Collector) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{logger: logger, metrics: collector}
}

// MapJSON decodes a response body and maps it. Numbers are kept exact.
func (m *Mapper) MapJSON(data []byte) (*model.Result, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		m.metrics.RecordResponseMapped(true)
		return nil, internalErrors.NewMalformedResponseError("body is not a JSON object", err)
	}
	return m.Map(raw)
}

// Map reads response.numFound, response.start and response.docs, pairs the
// flat value/count arrays of facet_counts.facet_fields and flattens
// documents that carry a "fields" projection.
func (m *Mapper) Map(raw map[string]any) (*model.Result, error) {
	result, err := mapResponse(raw)
	if err != nil {
		m.metrics.RecordResponseMapped(true)
		m.logger.Warn("Rejected malformed engine response", zap.Error(err))
		return nil, err
	}
	m.metrics.RecordResponseMapped(false)
	m.logger.Debug("Mapped engine response",
		zap.Int64("found", result.Found),
		zap.Int("records", len(result.Records)),
		zap.Int("facets", len(result.Facets)))
	return result, nil
}

func mapResponse(raw map[string]any) (*model.Result, error) {
	resp, ok := raw["response"].(map[string]any)
	if !ok {
		return nil, internalErrors.NewMalformedResponseError("missing 'response' object")
	}

	result := &model.Result{
		Records: []model.Document{},
		Facets:  map[string]*model.FacetCounts{},
	}

	var err error
	if result.Found, err = optionalInt(resp, "numFound"); err != nil {
		return nil, err
	}
	if result.Start, err = optionalInt(resp, "start"); err != nil {
		return nil, err
	}

	if docs, present := resp["docs"]; present && docs != nil {
		list, ok := docs.([]any)
		if !ok {
			return nil, internalErrors.NewMalformedResponseError("'response.docs' is not an array")
		}
		for i, item := range list {
			doc, ok := item.(map[string]any)
			if !ok {
				return nil, internalErrors.NewMalformedResponseError(fmt.Sprintf("'response.docs[%d]' is not an object", i))
			}
			result.Records = append(result.Records, flatten(model.Document(doc)))
		}
	}

	if err := mapFacetCounts(raw["facet_counts"], result); err != nil {
		return nil, err
	}
	return result, nil
}

func optionalInt(obj map[string]any, key string) (int64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, internalErrors.NewMalformedResponseError(fmt.Sprintf("'response.%s' is not a number", key), err)
	}
	return n, nil
}

func flatten(doc model.Document) model.Document {
	if projected, ok := doc.Projection(); ok {
		return projected
	}
	return doc
}

func mapFacetCounts(raw any, result *model.Result) error {
	if raw == nil {
		return nil
	}
	counts, ok := raw.(map[string]any)
	if !ok {
		return internalErrors.NewMalformedResponseError("'facet_counts' is not an object")
	}
	fields, present := counts["facet_fields"]
	if !present || fields == nil {
		return nil
	}
	byField, ok := fields.(map[string]any)
	if !ok {
		return internalErrors.NewMalformedResponseError("'facet_counts.facet_fields' is not an object")
	}

	for field, value := range byField {
		pairs, err := PairCounts(value)
		if err != nil {
			return internalErrors.NewMalformedResponseError(fmt.Sprintf("facet field '%s'", field), err)
		}
		result.Facets[field] = pairs
	}
	return nil
}

// PairCounts turns a flat [value, count, value, count, ...] array into an
// ordered value→count mapping.
func PairCounts(flat any) (*model.FacetCounts, error) {
	list, ok := flat.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array of value/count pairs, got %T", flat)
	}
	if len(list)%2 != 0 {
		return nil, fmt.Errorf("odd number of entries (%d) in value/count array", len(list))
	}

	counts := model.NewFacetCounts()
	for i := 0; i < len(list); i += 2 {
		value, err := cast.ToStringE(list[i])
		if err != nil {
			return nil, fmt.Errorf("value at %d: %w", i, err)
		}
		count, err := cast.ToInt64E(list[i+1])
		if err != nil {
			return nil, fmt.Errorf("count at %d: %w", i+1, err)
		}
		counts.Set(value, count)
	}
	return counts, nil
}
