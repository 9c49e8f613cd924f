package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-facet-query/internal/builder"
	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

// BuildRequest is the body of POST /query/build.
type BuildRequest struct {
	Options       model.SearchOptions `json:"options"`
	IncludeFacets *bool               `json:"include_facets,omitempty"`
	IncludeFields *bool               `json:"include_fields,omitempty"`
}

func (r BuildRequest) buildOptions() []builder.BuildOption {
	var opts []builder.BuildOption
	if r.IncludeFacets != nil && !*r.IncludeFacets {
		opts = append(opts, builder.WithoutFacets())
	}
	if r.IncludeFields != nil && !*r.IncludeFields {
		opts = append(opts, builder.WithoutFields())
	}
	return opts
}

// BuildQueryHandler compiles search options into a structured query and its
// serialized query string.
func (api *API) BuildQueryHandler(c *gin.Context) {
	var req BuildRequest
	if result := ValidateJSONBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if result := ValidateSearchOptions(&req.Options); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	translation, err := api.translator.Translate(req.Options, req.buildOptions()...)
	if err != nil {
		SendTranslationError(c, "query build", err)
		return
	}

	c.JSON(http.StatusOK, translation)
}

// SerializeQueryHandler renders a structured query as a query string.
func (api *API) SerializeQueryHandler(c *gin.Context) {
	var q query.Query
	if result := ValidateJSONBinding(c, &q); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	c.JSON(http.StatusOK, gin.H{"query_string": api.translator.Serialize(&q)})
}

// ParseQueryHandler recovers search options from a structured query body.
func (api *API) ParseQueryHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	opts, err := api.translator.RestoreJSON(body)
	if err != nil {
		SendTranslationError(c, "query parse", err)
		return
	}

	c.JSON(http.StatusOK, opts)
}

// RestoreQueryHandler recovers search options from the source query
// parameter of a bookmarked URL.
func (api *API) RestoreQueryHandler(c *gin.Context) {
	source := c.Query("source")
	if result := ValidateSource(source); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	opts, err := api.translator.RestoreJSON([]byte(source))
	if err != nil {
		SendTranslationError(c, "query restore", err)
		return
	}

	c.JSON(http.StatusOK, opts)
}
