package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/OzanA78/doviz-hesaplama/internal/engine"
	"github.com/OzanA78/doviz-hesaplama/internal/provider"
)

// ErrPlanNotFound means no plan is saved under the requested name.
var ErrPlanNotFound = errors.New("plan not found")

// SQLiteRepository persists price snapshots (written by the refresh
// worker, served as a price source when the spreadsheet is not
// reachable) and named plans.
type SQLiteRepository struct {
	db *sql.DB
}

var _ provider.PriceSource = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceSnapshot atomically replaces the stored price snapshot with
// a fresh fetch from the upstream spreadsheet.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, points []engine.PricePoint, current engine.CurrentPrice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_snapshots`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	now := time.Now().UTC()
	for _, p := range points {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO price_snapshots (date, price, fetched_at) VALUES (?, ?, ?)`,
			p.Date.String(), p.Price.String(), now)
		if err != nil {
			return fmt.Errorf("insert snapshot row %s: %w", p.Date, err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO current_price (id, price, fetched_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET price = excluded.price, fetched_at = excluded.fetched_at`,
		current.Price.String(), current.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("upsert current price: %w", err)
	}
	return tx.Commit()
}

// HistoricalPrices implements provider.PriceSource from the snapshot.
func (r *SQLiteRepository) HistoricalPrices(ctx context.Context) ([]engine.PricePoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, price FROM price_snapshots ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var points []engine.PricePoint
	for rows.Next() {
		var rawDate, rawPrice string
		if err := rows.Scan(&rawDate, &rawPrice); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		key, err := engine.ParseMonthKey(rawDate)
		if err != nil {
			return nil, fmt.Errorf("snapshot row: %w", err)
		}
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return nil, fmt.Errorf("snapshot row %s: %w", rawDate, err)
		}
		points = append(points, engine.PricePoint{Date: key, Price: price})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	if len(points) == 0 {
		return nil, provider.ErrNoRows
	}
	return points, nil
}

// CurrentPrice implements provider.PriceSource from the snapshot.
func (r *SQLiteRepository) CurrentPrice(ctx context.Context) (engine.CurrentPrice, error) {
	var rawPrice string
	var fetchedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT price, fetched_at FROM current_price WHERE id = 1`).Scan(&rawPrice, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.CurrentPrice{}, provider.ErrNoRows
	}
	if err != nil {
		return engine.CurrentPrice{}, fmt.Errorf("query current price: %w", err)
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return engine.CurrentPrice{}, fmt.Errorf("current price: %w", err)
	}
	return engine.CurrentPrice{Price: price, Timestamp: fetchedAt}, nil
}

// SavePlan stores or overwrites a named plan.
func (r *SQLiteRepository) SavePlan(ctx context.Context, name string, plan engine.Plan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO plans (name, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save plan %q: %w", name, err)
	}
	return nil
}

// LoadPlan retrieves a named plan.
func (r *SQLiteRepository) LoadPlan(ctx context.Context, name string) (engine.Plan, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM plans WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %q: %w", name, ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", name, err)
	}
	var plan engine.Plan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan %q: %w", name, err)
	}
	return plan, nil
}

// ListPlans returns saved plan names, most recently updated first.
func (r *SQLiteRepository) ListPlans(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM plans ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan plan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeletePlan removes a named plan.
func (r *SQLiteRepository) DeletePlan(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete plan %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("plan %q: %w", name, ErrPlanNotFound)
	}
	return nil
}
