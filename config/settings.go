// Package config provides the translator settings: request defaults applied
// to search options, serializer tables, the search endpoint and the server.
package config

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

const (
	DefaultPort           = "8080"
	DefaultMaxBodyBytes   = 1 << 20
	DefaultRequestTimeout = "30s"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultLogMaxSizeMB   = 100
	DefaultLogMaxBackups  = 3
)

// URLParam is one default parameter added to every serialized query.
type URLParam struct {
	Key   string `toml:"key" json:"key"`
	Value string `toml:"value" json:"value"`
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Port         string `toml:"port" json:"port"`
	MaxBodyBytes int64  `toml:"max_body_bytes" json:"max_body_bytes"`
}

// Settings holds everything the binary reads from its config file.
//
// The option defaults (page size, query parameter, inflation, fuzzify mode)
// only fill values a request leaves unset; see ApplyTo.
type Settings struct {
	DefaultPageSize        int               `toml:"default_page_size" json:"default_page_size"`
	QueryParameter         string            `toml:"query_parameter" json:"query_parameter"`
	SolrFacetInflation     int               `toml:"solr_facet_inflation" json:"solr_facet_inflation"`       // added to every facet size to make up for shard undercounting
	DefaultFreetextFuzzify string            `toml:"default_freetext_fuzzify" json:"default_freetext_fuzzify"` // "", "*" or "~"
	PagingParams           map[string]string `toml:"paging_params" json:"paging_params"`                     // paging key -> engine parameter name
	DefaultURLParams       []URLParam        `toml:"default_url_params" json:"default_url_params"`
	SearchURL              string            `toml:"search_url" json:"search_url"` // e.g. http://localhost:8983/solr/core/select?
	RequestTimeout         string            `toml:"request_timeout" json:"request_timeout"`
	SearchRateLimit        float64           `toml:"search_rate_limit" json:"search_rate_limit"` // requests per second to search_url, 0 = unlimited
	SearchRateBurst        int               `toml:"search_rate_burst" json:"search_rate_burst"`
	Server                 ServerSettings    `toml:"server" json:"server"`
	LogLevel               string            `toml:"log_level" json:"log_level"`
	LogFormat              string            `toml:"log_format" json:"log_format"` // "json" or "console"
	LogFile                string            `toml:"log_file" json:"log_file"`     // rotated file instead of stderr
	LogMaxSizeMB           int               `toml:"log_max_size_mb" json:"log_max_size_mb"`
	LogMaxBackups          int               `toml:"log_max_backups" json:"log_max_backups"`
}

// Default returns settings with every default applied.
func Default() *Settings {
	s := &Settings{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults applies default values to unset settings
func (s *Settings) ApplyDefaults() {
	if s.DefaultPageSize == 0 {
		s.DefaultPageSize = model.DefaultPageSize
	}
	if s.QueryParameter == "" {
		s.QueryParameter = model.DefaultQueryParameter
	}
	if s.RequestTimeout == "" {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.Server.Port == "" {
		s.Server.Port = DefaultPort
	}
	if s.Server.MaxBodyBytes == 0 {
		s.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.LogFormat == "" {
		s.LogFormat = DefaultLogFormat
	}
	if s.LogMaxSizeMB == 0 {
		s.LogMaxSizeMB = DefaultLogMaxSizeMB
	}
	if s.LogMaxBackups == 0 {
		s.LogMaxBackups = DefaultLogMaxBackups
	}
	if s.SearchRateLimit > 0 && s.SearchRateBurst == 0 {
		s.SearchRateBurst = 1
	}

	// Initialize empty collections if nil to prevent nil map writes
	if s.PagingParams == nil {
		s.PagingParams = map[string]string{}
	}
	if s.DefaultURLParams == nil {
		s.DefaultURLParams = []URLParam{}
	}
}

// Validate returns one message per problem found
func (s *Settings) Validate() []string {
	var problems []string

	if s.DefaultPageSize < 0 {
		problems = append(problems, "default_page_size cannot be negative")
	}
	if s.SolrFacetInflation < 0 {
		problems = append(problems, "solr_facet_inflation cannot be negative")
	}
	if strings.TrimSpace(s.QueryParameter) == "" {
		problems = append(problems, "query_parameter cannot be empty or whitespace-only")
	}
	switch s.DefaultFreetextFuzzify {
	case model.FuzzifyNone, model.FuzzifyWildcard, model.FuzzifyFuzzy:
	default:
		problems = append(problems, "Invalid default_freetext_fuzzify '"+s.DefaultFreetextFuzzify+"' (must be '*', '~' or empty)")
	}
	if d, err := cast.ToDurationE(s.RequestTimeout); err != nil || d <= 0 {
		problems = append(problems, "Invalid request_timeout '"+s.RequestTimeout+"'")
	}
	if s.SearchRateLimit < 0 || s.SearchRateBurst < 0 {
		problems = append(problems, "search_rate_limit and search_rate_burst cannot be negative")
	}
	if s.Server.MaxBodyBytes < 0 {
		problems = append(problems, "server.max_body_bytes cannot be negative")
	}

	seen := make(map[string]bool)
	for _, p := range s.DefaultURLParams {
		if strings.TrimSpace(p.Key) == "" {
			problems = append(problems, "default_url_params key cannot be empty")
			continue
		}
		if seen[p.Key] {
			problems = append(problems, "Duplicate key '"+p.Key+"' found in default_url_params")
		}
		seen[p.Key] = true
	}

	if s.LogMaxSizeMB < 0 || s.LogMaxBackups < 0 {
		problems = append(problems, "log_max_size_mb and log_max_backups cannot be negative")
	}

	switch s.LogFormat {
	case "json", "console":
	default:
		problems = append(problems, "Invalid log_format '"+s.LogFormat+"' (must be 'json' or 'console')")
	}

	return problems
}

// Timeout parses RequestTimeout; unparsable values yield 0.
func (s *Settings) Timeout() time.Duration {
	d, err := cast.ToDurationE(s.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}

// URLParams returns the default URL parameters in configured order.
func (s *Settings) URLParams() []query.URLParam {
	params := make([]query.URLParam, 0, len(s.DefaultURLParams))
	for _, p := range s.DefaultURLParams {
		params = append(params, query.URLParam{Key: p.Key, Value: p.Value})
	}
	return params
}

// ApplyTo fills option values the request left unset. The zero value counts
// as unset, so a request cannot opt back down to page_size 0, inflation 0 or
// no fuzzing when the settings configure a non-zero value; such requests get
// the configured value.
func (s *Settings) ApplyTo(opts *model.SearchOptions) {
	if opts.PageSize == 0 {
		opts.PageSize = s.DefaultPageSize
	}
	if opts.QueryParameter == "" {
		opts.QueryParameter = s.QueryParameter
	}
	if opts.SolrFacetInflation == 0 {
		opts.SolrFacetInflation = s.SolrFacetInflation
	}
	if opts.DefaultFreetextFuzzify == "" {
		opts.DefaultFreetextFuzzify = s.DefaultFreetextFuzzify
	}
}
