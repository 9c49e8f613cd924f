package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

func TestApplyDefaults(t *testing.T) {
	s := &Settings{}
	s.ApplyDefaults()

	assert.Equal(t, 100, s.DefaultPageSize)
	assert.Equal(t, "q", s.QueryParameter)
	assert.Equal(t, "30s", s.RequestTimeout)
	assert.Equal(t, 30*time.Second, s.Timeout())
	assert.Equal(t, "8080", s.Server.Port)
	assert.Equal(t, int64(DefaultMaxBodyBytes), s.Server.MaxBodyBytes)
	assert.Equal(t, DefaultLogMaxSizeMB, s.LogMaxSizeMB)
	assert.NotNil(t, s.PagingParams)
	assert.NotNil(t, s.DefaultURLParams)
	assert.Empty(t, s.Validate())
	assert.Zero(t, s.SearchRateBurst)

	limited := &Settings{SearchRateLimit: 2.5}
	limited.ApplyDefaults()
	assert.Equal(t, 1, limited.SearchRateBurst)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(s *Settings)
		expectedErrors int
	}{
		{
			name:           "defaults are valid",
			mutate:         func(s *Settings) {},
			expectedErrors: 0,
		},
		{
			name:           "wildcard fuzzify is valid",
			mutate:         func(s *Settings) { s.DefaultFreetextFuzzify = "*" },
			expectedErrors: 0,
		},
		{
			name:           "unknown fuzzify mode",
			mutate:         func(s *Settings) { s.DefaultFreetextFuzzify = "?" },
			expectedErrors: 1,
		},
		{
			name:           "negative inflation",
			mutate:         func(s *Settings) { s.SolrFacetInflation = -1 },
			expectedErrors: 1,
		},
		{
			name:           "bad timeout",
			mutate:         func(s *Settings) { s.RequestTimeout = "soon" },
			expectedErrors: 1,
		},
		{
			name: "duplicate and empty url params",
			mutate: func(s *Settings) {
				s.DefaultURLParams = []URLParam{{Key: "defType", Value: "edismax"}, {Key: "defType", Value: "lucene"}, {Key: " "}}
			},
			expectedErrors: 2,
		},
		{
			name:           "negative log rotation",
			mutate:         func(s *Settings) { s.LogMaxBackups = -1 },
			expectedErrors: 1,
		},
		{
			name:           "negative search rate",
			mutate:         func(s *Settings) { s.SearchRateLimit = -2 },
			expectedErrors: 1,
		},
		{
			name:           "unknown log format",
			mutate:         func(s *Settings) { s.LogFormat = "xml" },
			expectedErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			problems := s.Validate()
			assert.Len(t, problems, tt.expectedErrors, "problems: %v", problems)
		})
	}
}

func TestApplyTo(t *testing.T) {
	s := Default()
	s.SolrFacetInflation = 100
	s.DefaultFreetextFuzzify = "*"

	t.Run("fills unset values", func(t *testing.T) {
		var opts model.SearchOptions
		s.ApplyTo(&opts)
		assert.Equal(t, 100, opts.PageSize)
		assert.Equal(t, "q", opts.QueryParameter)
		assert.Equal(t, 100, opts.SolrFacetInflation)
		assert.Equal(t, "*", opts.DefaultFreetextFuzzify)
	})

	t.Run("keeps request values", func(t *testing.T) {
		opts := model.SearchOptions{PageSize: 20, QueryParameter: "query", SolrFacetInflation: 5, DefaultFreetextFuzzify: "~"}
		s.ApplyTo(&opts)
		assert.Equal(t, 20, opts.PageSize)
		assert.Equal(t, "query", opts.QueryParameter)
		assert.Equal(t, 5, opts.SolrFacetInflation)
		assert.Equal(t, "~", opts.DefaultFreetextFuzzify)
	})

	t.Run("zero request values take the settings", func(t *testing.T) {
		opts := model.SearchOptions{SolrFacetInflation: 0, DefaultFreetextFuzzify: ""}
		s.ApplyTo(&opts)
		assert.Equal(t, 100, opts.SolrFacetInflation)
		assert.Equal(t, "*", opts.DefaultFreetextFuzzify)
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		s, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), s)
	})

	t.Run("reads toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "facetquery.toml")
		content := `
default_page_size = 25
solr_facet_inflation = 100
default_freetext_fuzzify = "~"
search_url = "http://localhost:8983/solr/core/select?"
request_timeout = "5s"

[paging_params]
cursor = "cursorMark"

[[default_url_params]]
key = "defType"
value = "edismax"

[[default_url_params]]
key = "q.op"
value = "AND"

[server]
port = "9090"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 25, s.DefaultPageSize)
		assert.Equal(t, 100, s.SolrFacetInflation)
		assert.Equal(t, "~", s.DefaultFreetextFuzzify)
		assert.Equal(t, 5*time.Second, s.Timeout())
		assert.Equal(t, "cursorMark", s.PagingParams["cursor"])
		assert.Equal(t, "9090", s.Server.Port)
		assert.Equal(t, "q", s.QueryParameter)
		assert.Equal(t, []query.URLParam{{Key: "defType", Value: "edismax"}, {Key: "q.op", Value: "AND"}}, s.URLParams())
	})

	t.Run("invalid settings fail", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte(`default_freetext_fuzzify = "?"`), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_freetext_fuzzify")
	})

	t.Run("save then load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "saved.toml")
		s := Default()
		s.SolrFacetInflation = 7
		require.NoError(t, Save(path, s))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.SolrFacetInflation)
	})
}
