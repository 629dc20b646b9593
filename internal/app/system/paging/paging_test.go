package paging_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/paging"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/turfs", 1, paging.DefaultLimit},
		{"explicit", "/turfs?page=3&limit=10", 3, 10},
		{"over max", "/turfs?limit=5000", 1, paging.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := paging.Parse(httptest.NewRequest("GET", tt.url, nil))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if p.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", p.Page, tt.wantPage)
			}
			if p.Limit != tt.wantLimit {
				t.Errorf("Limit: got %d, want %d", p.Limit, tt.wantLimit)
			}
		})
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		field string
	}{
		{"zero page", "/turfs?page=0", "page"},
		{"negative page", "/turfs?page=-2", "page"},
		{"non-numeric page", "/turfs?page=abc", "page"},
		{"zero limit", "/turfs?limit=0", "limit"},
		{"negative limit", "/turfs?limit=-5", "limit"},
		{"non-numeric limit", "/turfs?limit=xyz", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := paging.Parse(httptest.NewRequest("GET", tt.url, nil))
			if err == nil {
				t.Fatal("expected an error")
			}
			if apperr.StatusOf(err) != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", apperr.StatusOf(err))
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name the field %q", err, tt.field)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	p := paging.Params{Page: 3, Limit: 10}
	if got := p.Skip(); got != 20 {
		t.Errorf("Skip: got %d, want 20", got)
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		limit     int
		wantPages int64
	}{
		{"empty", 0, 10, 0},
		{"exact", 40, 10, 4},
		{"remainder", 41, 10, 5},
		{"single", 1, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := paging.NewMeta(tt.total, paging.Params{Page: 1, Limit: tt.limit})
			if m.Pages != tt.wantPages {
				t.Errorf("Pages: got %d, want %d", m.Pages, tt.wantPages)
			}
			if m.Total != tt.total {
				t.Errorf("Total: got %d, want %d", m.Total, tt.total)
			}
		})
	}
}
