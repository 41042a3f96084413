package compare

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/arunkumar2k5/clapclient/internal/parts"
	"github.com/arunkumar2k5/clapclient/pkg/database"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func sampleResult(label string) *Result {
	rec := parts.NewRecord()
	rec.Set(parts.AttrPartNumber, "MLX90393")
	rec.Set(parts.AttrManufacturer, "Melexis")

	return &Result{
		ID:      "res-" + label,
		Label:   label,
		Items:   []parts.Item{{Manufacturer: "Melexis", PartNumber: "MLX90393"}},
		Records: []*parts.Record{rec},
		Table:   parts.BuildTable([]*parts.Record{rec}),
		Text:    "write-up for " + label,
		Usage:   map[string]any{"total_tokens": float64(12)},
	}
}

func TestStore_SaveAndGetBatch(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	batchID, err := st.SaveBatch(ctx, "user-1", "csv:specs.csv", []*Result{
		sampleResult("CSV row 1"),
		{ID: "res-err", Label: "CSV row 2", Items: []parts.Item{{PartNumber: "X"}}, Err: "server error: overloaded"},
	})
	if err != nil {
		t.Fatalf("SaveBatch returned error: %v", err)
	}
	if batchID == "" {
		t.Fatal("batch id is empty")
	}

	batch, results, err := st.GetBatch(ctx, batchID)
	if err != nil {
		t.Fatalf("GetBatch returned error: %v", err)
	}
	if batch == nil {
		t.Fatal("batch not found after save")
	}
	if batch.Source != "csv:specs.csv" || batch.UserID != "user-1" || batch.Rows != 2 {
		t.Fatalf("batch = %#v", batch)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	ok := results[0]
	if ok.Label != "CSV row 1" || ok.Text != "write-up for CSV row 1" {
		t.Fatalf("result 0 = %#v", ok)
	}
	if len(ok.Items) != 1 || ok.Items[0].PartNumber != "MLX90393" {
		t.Fatalf("result 0 items = %#v", ok.Items)
	}
	if len(ok.Table.Columns) != 1 || ok.Table.Columns[0].Name != "MLX90393" {
		t.Fatalf("result 0 table = %#v", ok.Table)
	}
	if ok.Usage["total_tokens"] != float64(12) {
		t.Fatalf("result 0 usage = %#v", ok.Usage)
	}

	failed := results[1]
	if failed.Err != "server error: overloaded" || failed.Text != "" {
		t.Fatalf("result 1 = %#v", failed)
	}
}

func TestStore_GetBatchKeepsRowOrder(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	// All rows of a batch share one CURRENT_TIMESTAMP, so ordering must
	// not lean on created_at or the random result ids.
	var saved []*Result
	for i := 1; i <= 10; i++ {
		saved = append(saved, sampleResult(fmt.Sprintf("CSV row %d", i)))
	}

	batchID, err := st.SaveBatch(ctx, "", "csv:order.csv", saved)
	if err != nil {
		t.Fatalf("SaveBatch returned error: %v", err)
	}

	_, results, err := st.GetBatch(ctx, batchID)
	if err != nil {
		t.Fatalf("GetBatch returned error: %v", err)
	}
	if len(results) != len(saved) {
		t.Fatalf("results = %d, want %d", len(results), len(saved))
	}
	for i, res := range results {
		if want := saved[i].Label; res.Label != want {
			t.Fatalf("result %d label = %q, want %q", i, res.Label, want)
		}
	}
}

func TestStore_ListBatchesNewestFirst(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if _, err := st.SaveBatch(ctx, "", "manual", []*Result{sampleResult("a")}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	// created_at has second precision; force a distinct timestamp.
	if _, err := st.DB.Exec(`UPDATE batches SET created_at = datetime(created_at, '-1 hour')`); err != nil {
		t.Fatalf("age first batch: %v", err)
	}
	second, err := st.SaveBatch(ctx, "", "csv:x.csv", []*Result{sampleResult("b"), sampleResult("c")})
	if err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	batches, err := st.ListBatches(ctx, 10)
	if err != nil {
		t.Fatalf("ListBatches returned error: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}
	if batches[0].ID != second || batches[0].Rows != 2 {
		t.Fatalf("first listed batch = %#v, want newest (id %s)", batches[0], second)
	}
	// Anonymous batches have no user id.
	if batches[0].UserID != "" {
		t.Fatalf("user id = %q, want empty", batches[0].UserID)
	}
}

func TestStore_GetBatchUnknownID(t *testing.T) {
	st := testStore(t)

	batch, results, err := st.GetBatch(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetBatch returned error: %v", err)
	}
	if batch != nil || results != nil {
		t.Fatalf("unknown id should return nils, got %#v / %#v", batch, results)
	}
}
