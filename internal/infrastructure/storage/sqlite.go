package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/crypto_trade_ema/internal/domain"
)

// SQLiteStore is the audit journal of decisions, orders and reports.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// database/sql would hand ":memory:" a fresh database per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id TEXT NOT NULL,
			market_symbol TEXT NOT NULL,
			decision TEXT NOT NULL,
			positive_ticks INTEGER NOT NULL,
			negative_ticks INTEGER NOT NULL,
			available REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_market ON decisions(market_symbol);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exchange_order_id TEXT NOT NULL DEFAULT '',
			client_order_id TEXT NOT NULL DEFAULT '',
			market_symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			reason TEXT NOT NULL,
			quantity REAL NOT NULL,
			limit_price REAL NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			dry_run BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id TEXT NOT NULL,
			main_market TEXT NOT NULL,
			total_value REAL NOT NULL,
			reference_rate REAL NOT NULL,
			created_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// Decisions

func (s *SQLiteStore) SaveDecision(ctx context.Context, rec *domain.DecisionRecord) error {
	query := `INSERT INTO decisions (cycle_id, market_symbol, decision, positive_ticks, negative_ticks, available, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		rec.CycleID, rec.MarketSymbol, rec.Decision, rec.PositiveTicks, rec.NegativeTicks, rec.Available, rec.CreatedAt)
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) ListDecisions(ctx context.Context, limit int) ([]*domain.DecisionRecord, error) {
	query := `SELECT id, cycle_id, market_symbol, decision, positive_ticks, negative_ticks, available, created_at
			  FROM decisions ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.DecisionRecord
	for rows.Next() {
		var r domain.DecisionRecord
		if err := rows.Scan(&r.ID, &r.CycleID, &r.MarketSymbol, &r.Decision, &r.PositiveTicks, &r.NegativeTicks, &r.Available, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Orders

func (s *SQLiteStore) SaveOrder(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (exchange_order_id, client_order_id, market_symbol, direction, reason, quantity, limit_price, status, dry_run, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		order.ID, order.ClientOrderID, order.MarketSymbol, order.Direction, order.Reason,
		order.Quantity, order.Limit, order.Status, order.DryRun, order.CreatedAt)
	return err
}

func (s *SQLiteStore) ListOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := `SELECT exchange_order_id, client_order_id, market_symbol, direction, reason, quantity, limit_price, status, dry_run, created_at
			  FROM orders ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.ClientOrderID, &o.MarketSymbol, &o.Direction, &o.Reason,
			&o.Quantity, &o.Limit, &o.Status, &o.DryRun, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Type = domain.OrderTypeLimit
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

// Reports

func (s *SQLiteStore) SaveReport(ctx context.Context, report *domain.PortfolioReport) error {
	query := `INSERT INTO reports (cycle_id, main_market, total_value, reference_rate, created_at)
			  VALUES (?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		report.CycleID, report.MainMarket, report.TotalValue, report.ReferenceRate, report.CreatedAt)
	if err != nil {
		return err
	}
	report.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]*domain.PortfolioReport, error) {
	query := `SELECT id, cycle_id, main_market, total_value, reference_rate, created_at
			  FROM reports ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.PortfolioReport
	for rows.Next() {
		var r domain.PortfolioReport
		if err := rows.Scan(&r.ID, &r.CycleID, &r.MainMarket, &r.TotalValue, &r.ReferenceRate, &r.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}
