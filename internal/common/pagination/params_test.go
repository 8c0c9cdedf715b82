package pagination_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsharvest/internal/common/pagination"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := pagination.DefaultConfig()
	if config.DefaultPage != 1 {
		t.Errorf("DefaultPage = %d, want 1", config.DefaultPage)
	}
	if config.DefaultLimit != 20 {
		t.Errorf("DefaultLimit = %d, want 20", config.DefaultLimit)
	}
	if config.MaxLimit != 100 {
		t.Errorf("MaxLimit = %d, want 100", config.MaxLimit)
	}
}

func TestParseQueryParams(t *testing.T) {
	t.Parallel()

	config := pagination.Config{
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	}

	tests := []struct {
		name      string
		query     string
		want      pagination.Params
		wantError bool
	}{
		{
			name:  "both parameters",
			query: "page=2&limit=30",
			want:  pagination.Params{Page: 2, Limit: 30},
		},
		{
			name:  "no parameters uses defaults",
			query: "",
			want:  pagination.Params{Page: 1, Limit: 20},
		},
		{
			name:  "only page",
			query: "page=3",
			want:  pagination.Params{Page: 3, Limit: 20},
		},
		{
			name:  "only limit",
			query: "limit=50",
			want:  pagination.Params{Page: 1, Limit: 50},
		},
		{
			name:  "minimum valid values",
			query: "page=1&limit=1",
			want:  pagination.Params{Page: 1, Limit: 1},
		},
		{
			name:  "limit at the cap",
			query: "page=1&limit=100",
			want:  pagination.Params{Page: 1, Limit: 100},
		},
		{
			name:  "large page number",
			query: "page=999",
			want:  pagination.Params{Page: 999, Limit: 20},
		},
		{
			name:      "negative page",
			query:     "page=-1",
			wantError: true,
		},
		{
			name:      "zero page",
			query:     "page=0",
			wantError: true,
		},
		{
			name:      "non-integer page",
			query:     "page=abc",
			wantError: true,
		},
		{
			name:      "negative limit",
			query:     "limit=-10",
			wantError: true,
		},
		{
			name:      "zero limit",
			query:     "limit=0",
			wantError: true,
		},
		{
			name:      "limit above the cap",
			query:     "limit=101",
			wantError: true,
		},
		{
			name:      "non-integer limit",
			query:     "limit=xyz",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			got, err := pagination.ParseQueryParams(req, config)

			if tt.wantError {
				if err == nil {
					t.Errorf("ParseQueryParams() error = nil, wantError = true")
				}
				return
			}
			if err != nil {
				t.Errorf("ParseQueryParams() error = %v, wantError = false", err)
				return
			}

			if got.Page != tt.want.Page {
				t.Errorf("ParseQueryParams() Page = %d, want %d", got.Page, tt.want.Page)
			}
			if got.Limit != tt.want.Limit {
				t.Errorf("ParseQueryParams() Limit = %d, want %d", got.Limit, tt.want.Limit)
			}
		})
	}
}

func TestParseQueryParamsErrorMessages(t *testing.T) {
	t.Parallel()

	config := pagination.DefaultConfig()

	tests := []struct {
		name     string
		query    string
		contains string
	}{
		{
			name:     "page error names the rule",
			query:    "page=invalid",
			contains: "page must be a positive integer",
		},
		{
			name:     "limit error names the cap",
			query:    "limit=200",
			contains: "limit must be between 1 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			_, err := pagination.ParseQueryParams(req, config)

			if err == nil {
				t.Fatalf("ParseQueryParams() error = nil, want error containing %q", tt.contains)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.contains)
			}
		})
	}
}
