package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"rent"}`))
		var p payload
		if err := DecodeJSON(r, &p); err != nil {
			t.Fatalf("DecodeJSON() error = %v", err)
		}
		if p.Name != "rent" {
			t.Errorf("Name = %q, want %q", p.Name, "rent")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		err := DecodeJSON(r, &p)
		if err == nil {
			t.Fatal("DecodeJSON() expected error for empty body")
		}
		if !strings.Contains(err.Error(), "empty request body") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var p payload
		if err := DecodeJSON(r, &p); err == nil {
			t.Fatal("DecodeJSON() expected error for malformed body")
		}
	})

	t.Run("trailing document", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		var p payload
		err := DecodeJSON(r, &p)
		if err == nil {
			t.Fatal("DecodeJSON() expected error for trailing document")
		}
		if !strings.Contains(err.Error(), "single JSON object") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("unknown fields tolerated", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"rent","extra":true}`))
		var p payload
		if err := DecodeJSON(r, &p); err != nil {
			t.Fatalf("DecodeJSON() error = %v", err)
		}
	})
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/incomes/abc-123", nil)
	r.SetPathValue("id", " abc-123 ")

	if got := PathID(r); got != "abc-123" {
		t.Errorf("PathID() = %q, want %q", got, "abc-123")
	}
}

func TestMonthPath(t *testing.T) {
	tests := []struct {
		name      string
		year      string
		month     string
		wantYear  int
		wantMonth int
		wantErr   bool
	}{
		{name: "valid", year: "2025", month: "7", wantYear: 2025, wantMonth: 7},
		{name: "zero padded month", year: "2025", month: "07", wantYear: 2025, wantMonth: 7},
		{name: "month too large", year: "2025", month: "13", wantErr: true},
		{name: "month zero", year: "2025", month: "0", wantErr: true},
		{name: "year not a number", year: "twenty", month: "1", wantErr: true},
		{name: "year out of range", year: "10000", month: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/months/x/y", nil)
			r.SetPathValue("year", tt.year)
			r.SetPathValue("month", tt.month)

			year, month, err := MonthPath(r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("MonthPath() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("MonthPath() error = %v", err)
			}
			if year != tt.wantYear || month != tt.wantMonth {
				t.Errorf("MonthPath() = (%d, %d), want (%d, %d)", year, month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestRequireMethod(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		t.Error("RequireMethod() rejected an allowed method")
	}

	resp := RequireMethod(r, http.MethodPost)
	if resp == nil {
		t.Fatal("RequireMethod() accepted a disallowed method")
	}

	w := httptest.NewRecorder()
	resp.Write(w)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if w.Header().Get("Allow") != "POST" {
		t.Errorf("Allow header = %q, want %q", w.Header().Get("Allow"), "POST")
	}
}
