package httpserver

import (
	"net/url"
	"testing"
)

func TestBuildCatalogFilters(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		wantErr  bool
		page     int
		pageSize int
		genre    string
		search   string
	}{
		{name: "defaults", query: "", page: 1, pageSize: 10},
		{name: "explicit paging", query: "page=3&pageSize=25", page: 3, pageSize: 25},
		{name: "filters trimmed", query: "genre=+Horror+&search=+man+", page: 1, pageSize: 10, genre: "Horror", search: "man"},
		{name: "blank filters ignored", query: "genre=++&search=", page: 1, pageSize: 10},
		{name: "zero page", query: "page=0", wantErr: true},
		{name: "negative page", query: "page=-2", wantErr: true},
		{name: "non-numeric page", query: "page=abc", wantErr: true},
		{name: "zero pageSize", query: "pageSize=0", wantErr: true},
		{name: "non-numeric pageSize", query: "pageSize=ten", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}

			filters, err := buildCatalogFilters(values)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildCatalogFilters: %v", err)
			}
			if filters.Page != tc.page || filters.PageSize != tc.pageSize {
				t.Errorf("paging = (%d, %d), want (%d, %d)", filters.Page, filters.PageSize, tc.page, tc.pageSize)
			}
			if tc.genre == "" && filters.Genre != nil {
				t.Errorf("genre = %q, want nil", *filters.Genre)
			}
			if tc.genre != "" && (filters.Genre == nil || *filters.Genre != tc.genre) {
				t.Errorf("genre = %v, want %q", filters.Genre, tc.genre)
			}
			if tc.search != "" && (filters.Search == nil || *filters.Search != tc.search) {
				t.Errorf("search = %v, want %q", filters.Search, tc.search)
			}
		})
	}
}

func FuzzBuildCatalogFilters(f *testing.F) {
	f.Add("page=1&pageSize=10")
	f.Add("page=&pageSize=")
	f.Add("page=99999999999999999999")
	f.Add("genre=Horror&search=man")
	f.Add("page=1;pageSize=2")

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}

		filters, err := buildCatalogFilters(values)
		if err != nil {
			return
		}
		if filters.Page < 1 || filters.PageSize < 1 {
			t.Fatalf("accepted non-positive paging from %q: %+v", raw, filters)
		}
		if filters.Genre != nil && *filters.Genre == "" {
			t.Fatalf("accepted empty genre from %q", raw)
		}
		if filters.Search != nil && *filters.Search == "" {
			t.Fatalf("accepted empty search from %q", raw)
		}
	})
}
