package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSite() Site {
	return Site{
		Name:             "TecMundo",
		Slug:             "tecmundo",
		BaseURL:          "https://www.tecmundo.com.br",
		FallbackCategory: "Tecnologia",
		Endpoints: []Endpoint{
			{Name: "posts", Path: "/api/posts", Kind: EndpointKindJSON},
		},
		IsActive: true,
	}
}

func TestSite_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Site)
		wantErr bool
	}{
		{
			name:    "valid site",
			mutate:  func(s *Site) {},
			wantErr: false,
		},
		{
			name:    "missing name",
			mutate:  func(s *Site) { s.Name = "" },
			wantErr: true,
		},
		{
			name:    "missing slug",
			mutate:  func(s *Site) { s.Slug = "" },
			wantErr: true,
		},
		{
			name:    "invalid base url scheme",
			mutate:  func(s *Site) { s.BaseURL = "ftp://tecmundo.com.br" },
			wantErr: true,
		},
		{
			name:    "no endpoints",
			mutate:  func(s *Site) { s.Endpoints = nil },
			wantErr: true,
		},
		{
			name: "endpoint without path",
			mutate: func(s *Site) {
				s.Endpoints = []Endpoint{{Name: "posts", Kind: EndpointKindJSON}}
			},
			wantErr: true,
		},
		{
			name: "unknown endpoint kind",
			mutate: func(s *Site) {
				s.Endpoints = []Endpoint{{Name: "posts", Path: "/api/posts", Kind: "graphql"}}
			},
			wantErr: true,
		},
		{
			name: "rss endpoint kind",
			mutate: func(s *Site) {
				s.Endpoints = []Endpoint{{Name: "feed", Path: "/feed", Kind: EndpointKindRSS}}
			},
			wantErr: false,
		},
		{
			name: "empty kind defaults to json",
			mutate: func(s *Site) {
				s.Endpoints = []Endpoint{{Name: "posts", Path: "/api/posts"}}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := validSite()
			tt.mutate(&site)

			err := site.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSite_IsHealthy(t *testing.T) {
	site := validSite()

	for i := 0; i < 4; i++ {
		site.RecordFailure()
	}
	assert.True(t, site.IsHealthy(), "four consecutive failures should stay healthy")

	site.RecordFailure()
	assert.False(t, site.IsHealthy(), "five consecutive failures should be unhealthy")
}

func TestSnapshot_IsSuccessful(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{status: 200, want: true},
		{status: 201, want: true},
		{status: 299, want: true},
		{status: 0, want: false},
		{status: 301, want: false},
		{status: 404, want: false},
		{status: 500, want: false},
	}

	for _, tt := range tests {
		snap := Snapshot{ResponseStatus: tt.status}
		assert.Equal(t, tt.want, snap.IsSuccessful(), "status %d", tt.status)
	}
}
