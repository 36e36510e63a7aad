package pipeline_test

import (
	"strings"
	"testing"

	"github.com/orclabs/elt-orchestrator/internal/pipeline"
)

func TestTable_AppendRejectsWidthMismatch(t *testing.T) {
	table := pipeline.NewTable([]string{"id", "name"})

	if err := table.Append([]string{"1", "alice"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := table.Append([]string{"2"}); err == nil {
		t.Fatal("short row accepted")
	}
	if table.NumRows() != 1 {
		t.Errorf("NumRows = %d, want 1", table.NumRows())
	}
}

func TestTable_WriteCSV(t *testing.T) {
	table := pipeline.NewTable([]string{"id", "name"})
	_ = table.Append([]string{"1", "alice"})
	_ = table.Append([]string{"2", "bob,jr"})

	var sb strings.Builder
	if err := table.WriteCSV(&sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "id,name\n1,alice\n2,\"bob,jr\"\n"
	if sb.String() != want {
		t.Errorf("csv = %q, want %q", sb.String(), want)
	}
}
