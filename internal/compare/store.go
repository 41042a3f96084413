package compare

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists processed batches so past comparisons can be
// re-rendered without refetching anything.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

type BatchSummary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveBatch writes the batch header and one row per result. Returns the
// new batch id.
func (st *Store) SaveBatch(ctx context.Context, userID, source string, results []*Result) (string, error) {
	batchID := uuid.NewString()

	tx, err := st.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var uid any
	if userID != "" {
		uid = userID
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO batches (id, user_id, source)
		VALUES (?, ?, ?)
	`, batchID, uid, source); err != nil {
		return "", fmt.Errorf("insert batch: %w", err)
	}

	for pos, res := range results {
		itemsJSON, err := json.Marshal(res.Items)
		if err != nil {
			return "", fmt.Errorf("marshal items: %w", err)
		}
		tableJSON, err := json.Marshal(res.Table)
		if err != nil {
			return "", fmt.Errorf("marshal table: %w", err)
		}
		usageJSON, err := json.Marshal(res.Usage)
		if err != nil {
			return "", fmt.Errorf("marshal usage: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO batch_results (id, batch_id, position, label, items_json, table_json, gen_text, usage_json, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, res.ID, batchID, pos, res.Label, string(itemsJSON), string(tableJSON), res.Text, string(usageJSON), res.Err); err != nil {
			return "", fmt.Errorf("insert batch result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save batch: %w", err)
	}
	return batchID, nil
}

func (st *Store) ListBatches(ctx context.Context, limit int) ([]BatchSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := st.DB.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.source, b.created_at, COUNT(r.id)
		FROM batches b
		LEFT JOIN batch_results r ON r.batch_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	out := make([]BatchSummary, 0, limit)
	for rows.Next() {
		var (
			b      BatchSummary
			userID sql.NullString
		)
		if err := rows.Scan(&b.ID, &userID, &b.Source, &b.CreatedAt, &b.Rows); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.UserID = userID.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetBatch loads one batch with all its results, or (nil, nil, nil)
// when the id is unknown.
func (st *Store) GetBatch(ctx context.Context, id string) (*BatchSummary, []*Result, error) {
	row := st.DB.QueryRowContext(ctx, `
		SELECT id, user_id, source, created_at
		FROM batches
		WHERE id = ?
	`, id)

	var (
		b      BatchSummary
		userID sql.NullString
	)
	if err := row.Scan(&b.ID, &userID, &b.Source, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("scan batch: %w", err)
	}
	b.UserID = userID.String

	rows, err := st.DB.QueryContext(ctx, `
		SELECT id, label, items_json, table_json, gen_text, usage_json, error
		FROM batch_results
		WHERE batch_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list batch results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var (
			res       Result
			itemsJSON string
			tableJSON sql.NullString
			genText   sql.NullString
			usageJSON sql.NullString
			errText   sql.NullString
		)
		if err := rows.Scan(&res.ID, &res.Label, &itemsJSON, &tableJSON, &genText, &usageJSON, &errText); err != nil {
			return nil, nil, fmt.Errorf("scan batch result: %w", err)
		}

		_ = json.Unmarshal([]byte(itemsJSON), &res.Items)
		if tableJSON.Valid {
			_ = json.Unmarshal([]byte(tableJSON.String), &res.Table)
		}
		if usageJSON.Valid {
			_ = json.Unmarshal([]byte(usageJSON.String), &res.Usage)
		}
		res.Text = genText.String
		res.Err = errText.String

		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows err: %w", err)
	}

	b.Rows = len(results)
	return &b, results, nil
}
