package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/orclabs/elt-orchestrator/internal/domain"
)

// ---- dispatch ----

func TestNew_DispatchesOnType(t *testing.T) {
	ext, err := New(domain.DriverConfig{"type": "csv", "path": "data.csv"})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if _, ok := ext.(*CSV); !ok {
		t.Errorf("csv config built %T", ext)
	}

	ext, err = New(domain.DriverConfig{"type": "api", "url": "https://example.com"})
	if err != nil {
		t.Fatalf("api: %v", err)
	}
	if _, ok := ext.(*API); !ok {
		t.Errorf("api config built %T", ext)
	}

	ext, err = New(domain.DriverConfig{"type": "parquet", "path": "data.parquet"})
	if err != nil {
		t.Fatalf("parquet: %v", err)
	}
	if _, ok := ext.(*Parquet); !ok {
		t.Errorf("parquet config built %T", ext)
	}
}

func TestNew_UnknownTypeRejected(t *testing.T) {
	_, err := New(domain.DriverConfig{"type": "ftp", "path": "x"})
	if !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("error = %v, want ErrConfigInvalid", err)
	}
}

func TestNew_MissingFieldRejected(t *testing.T) {
	for _, cfg := range []domain.DriverConfig{
		{"type": "csv"},
		{"type": "api"},
		{"type": "parquet"},
		{"type": "csv", "path": 42},
	} {
		if _, err := New(cfg); !errors.Is(err, domain.ErrConfigInvalid) {
			t.Errorf("config %v: error = %v, want ErrConfigInvalid", cfg, err)
		}
	}
}

// ---- csv ----

func TestCSV_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	contents := "id,name\n1,alice\n2,bob\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := (&CSV{Path: path}).Extract(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table.Columns) != 2 || table.Columns[0] != "id" || table.Columns[1] != "name" {
		t.Errorf("columns = %v", table.Columns)
	}
	if table.NumRows() != 2 {
		t.Errorf("rows = %d, want 2", table.NumRows())
	}
	if table.Rows[1][1] != "bob" {
		t.Errorf("cell = %q, want bob", table.Rows[1][1])
	}
}

func TestCSV_MissingFileFails(t *testing.T) {
	_, err := (&CSV{Path: "/nonexistent/input.csv"}).Extract(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// ---- api ----

func TestAPI_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "alice", "active": true},
			{"id": 2, "name": "bob", "active": false}
		]`))
	}))
	defer srv.Close()

	table, err := NewAPI(srv.URL).Extract(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Columns are the sorted union of keys.
	want := []string{"active", "id", "name"}
	for i, col := range want {
		if table.Columns[i] != col {
			t.Fatalf("columns = %v, want %v", table.Columns, want)
		}
	}
	if table.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", table.NumRows())
	}
	if table.Rows[0][1] != "1" || table.Rows[0][2] != "alice" || table.Rows[0][0] != "true" {
		t.Errorf("row = %v", table.Rows[0])
	}
}

func TestAPI_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewAPI(srv.URL).Extract(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestAPI_RaggedRecordsGetEmptyCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"a": "x"}, {"b": "y"}]`))
	}))
	defer srv.Close()

	table, err := NewAPI(srv.URL).Extract(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0][0] != "x" || table.Rows[0][1] != "" {
		t.Errorf("row 0 = %v", table.Rows[0])
	}
	if table.Rows[1][0] != "" || table.Rows[1][1] != "y" {
		t.Errorf("row 1 = %v", table.Rows[1])
	}
}
