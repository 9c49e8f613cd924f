package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-facet-query/model"
)

// MapResultsHandler normalizes a raw engine response posted as the body.
func (api *API) MapResultsHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	result, err := api.translator.MapResponse(body)
	if err != nil {
		SendTranslationError(c, "result mapping", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchHandler translates the posted options, queries the configured
// search endpoint and returns the normalized result.
func (api *API) SearchHandler(c *gin.Context) {
	var opts model.SearchOptions
	if result := ValidateJSONBinding(c, &opts); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if result := ValidateSearchOptions(&opts); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	result, err := api.translator.Search(c.Request.Context(), opts)
	if err != nil {
		SendTranslationError(c, "search", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
