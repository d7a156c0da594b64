package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{"zero values get defaults", Params{}, 1, DefaultLimit},
		{"negative page resets to first", Params{Page: -3, Limit: 20}, 1, 20},
		{"limit above max is capped", Params{Page: 2, Limit: 500}, 2, MaxLimit},
		{"valid params pass through", Params{Page: 4, Limit: 30}, 4, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", got.Page, got.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if off := (Params{Page: 3, Limit: 10}).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}
	if off := (Params{}).Offset(); off != 0 {
		t.Fatalf("expected offset 0 for defaults, got %d", off)
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 10}, 35)
	if meta.Pages != 4 {
		t.Fatalf("expected 4 pages, got %d", meta.Pages)
	}
	if meta.Total != 35 {
		t.Fatalf("expected total 35, got %d", meta.Total)
	}

	empty := NewMeta(Params{Page: 1, Limit: 10}, 0)
	if empty.Pages != 1 {
		t.Fatalf("expected empty list to report 1 page, got %d", empty.Pages)
	}

	exact := NewMeta(Params{Page: 1, Limit: 10}, 30)
	if exact.Pages != 3 {
		t.Fatalf("expected 3 pages for exact multiple, got %d", exact.Pages)
	}
}
