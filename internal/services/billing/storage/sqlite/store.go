// Package sqlite provides SQLite-backed persistence for billing state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/inkledger/inkledger/internal/platform/storage/sqlitemigrate"
	"github.com/inkledger/inkledger/internal/services/billing/filter"
	"github.com/inkledger/inkledger/internal/services/billing/storage"
	"github.com/inkledger/inkledger/internal/services/billing/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for billing state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a billing SQLite store at the provided path. Write
// transactions take the write lock immediately so two mutations on the same
// order serialize instead of interleaving.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite db is required")
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

// PutOrder upserts one order row.
func (s *Store) PutOrder(ctx context.Context, record storage.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeOrderRecord(record)
	if err != nil {
		return err
	}
	return putOrderExec(ctx, s.sqlDB, normalized)
}

// GetOrder loads one order by ID.
func (s *Store) GetOrder(ctx context.Context, orderID string) (storage.OrderRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.OrderRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.OrderRecord{}, fmt.Errorf("storage is not configured")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return storage.OrderRecord{}, fmt.Errorf("order id is required")
	}
	return getOrderQuery(ctx, s.sqlDB, orderID)
}

// GetInstallment loads one installment by ID.
func (s *Store) GetInstallment(ctx context.Context, installmentID string) (storage.InstallmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.InstallmentRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.InstallmentRecord{}, fmt.Errorf("storage is not configured")
	}
	installmentID = strings.TrimSpace(installmentID)
	if installmentID == "" {
		return storage.InstallmentRecord{}, fmt.Errorf("installment id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+installmentColumns+`
FROM installments
WHERE id = ?
`, installmentID)
	record, err := scanInstallment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.InstallmentRecord{}, storage.ErrNotFound
		}
		return storage.InstallmentRecord{}, fmt.Errorf("get installment: %w", err)
	}
	return record, nil
}

// ListInstallments lists one order's installments by installment number.
func (s *Store) ListInstallments(ctx context.Context, orderID string) ([]storage.InstallmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	return listInstallmentsQuery(ctx, s.sqlDB, orderID)
}

// InOrderTx runs fn inside one write transaction scoped to orderID. Every
// write fn makes commits together or not at all.
func (s *Store) InOrderTx(ctx context.Context, orderID string, fn func(tx storage.OrderTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("order id is required")
	}
	if fn == nil {
		return fmt.Errorf("transaction callback is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback order transaction: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := fn(&orderTx{tx: tx, orderID: orderID}); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order transaction: %w", err)
	}
	return nil
}

// MarkOverdue transitions UNPAID installments past their due date to OVERDUE
// in one batch update.
func (s *Store) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if now.IsZero() {
		return 0, fmt.Errorf("now is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE installments
SET status = 'OVERDUE', updated_at = ?
WHERE status = 'UNPAID'
  AND due_date < ?
`, toMillis(now), toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	changed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark overdue rows affected: %w", err)
	}
	return changed, nil
}

// ListOverdue lists overdue installments with order and member context, most
// overdue first. The filter narrows by order, member, branch, due date, or
// amount.
func (s *Store) ListOverdue(ctx context.Context, filterStr string) ([]storage.OverdueRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	condition, err := filter.ParseOverdueFilter(filterStr)
	if err != nil {
		return nil, fmt.Errorf("parse overdue filter: %w", err)
	}

	query := `
SELECT i.id, i.order_id, i.installment_no, i.due_date, i.amount, i.status,
       i.paid_at, i.payment_method, i.notes, i.is_custom, i.auto_adjusted,
       i.created_at, i.updated_at,
       o.total_amount, o.status, o.member_id, o.branch_id,
       COALESCE(m.display_name, '')
FROM installments i
JOIN orders o ON o.id = i.order_id
LEFT JOIN members m ON m.id = o.member_id
WHERE i.status = 'OVERDUE'
`
	args := []any{}
	if condition.Clause != "" {
		query += "  AND " + condition.Clause + "\n"
		args = append(args, condition.Params...)
	}
	query += "ORDER BY i.due_date ASC, i.order_id ASC, i.installment_no ASC"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overdue: %w", err)
	}
	defer rows.Close()

	var results []storage.OverdueRecord
	for rows.Next() {
		var record storage.OverdueRecord
		var dueDate, createdAt, updatedAt int64
		var paidAt sql.NullInt64
		if err := rows.Scan(
			&record.Installment.ID,
			&record.Installment.OrderID,
			&record.Installment.InstallmentNo,
			&dueDate,
			&record.Installment.Amount,
			&record.Installment.Status,
			&paidAt,
			&record.Installment.PaymentMethod,
			&record.Installment.Notes,
			&record.Installment.IsCustom,
			&record.Installment.AutoAdjusted,
			&createdAt,
			&updatedAt,
			&record.OrderTotal,
			&record.OrderStatus,
			&record.MemberID,
			&record.BranchID,
			&record.MemberName,
		); err != nil {
			return nil, fmt.Errorf("scan overdue row: %w", err)
		}
		record.Installment.DueDate = fromMillis(dueDate)
		record.Installment.CreatedAt = fromMillis(createdAt)
		record.Installment.UpdatedAt = fromMillis(updatedAt)
		if paidAt.Valid {
			value := fromMillis(paidAt.Int64)
			record.Installment.PaidAt = &value
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue rows: %w", err)
	}
	return results, nil
}

// PutMember upserts one member row, preserving the lifetime spend aggregate.
func (s *Store) PutMember(ctx context.Context, record storage.MemberRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return fmt.Errorf("member id is required")
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		return fmt.Errorf("member timestamps are required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO members (
		id, display_name, branch_id, lifetime_spend, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		display_name = excluded.display_name,
		branch_id = excluded.branch_id,
		updated_at = excluded.updated_at
	`,
		record.ID,
		strings.TrimSpace(record.DisplayName),
		strings.TrimSpace(record.BranchID),
		record.LifetimeSpend,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

// GetMember loads one member by ID.
func (s *Store) GetMember(ctx context.Context, memberID string) (storage.MemberRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.MemberRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MemberRecord{}, fmt.Errorf("storage is not configured")
	}
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return storage.MemberRecord{}, fmt.Errorf("member id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, display_name, branch_id, lifetime_spend, created_at, updated_at
FROM members
WHERE id = ?
`, memberID)
	var record storage.MemberRecord
	var createdAt, updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.DisplayName,
		&record.BranchID,
		&record.LifetimeSpend,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MemberRecord{}, storage.ErrNotFound
		}
		return storage.MemberRecord{}, fmt.Errorf("get member: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// AppendEvent persists one structured operation event.
func (s *Store) AppendEvent(ctx context.Context, record storage.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.EventType = strings.TrimSpace(record.EventType)
	if record.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if record.EventType == "" {
		return fmt.Errorf("event type is required")
	}
	if record.OccurredAt.IsZero() {
		return fmt.Errorf("event occurred_at is required")
	}
	fieldsJSON := strings.TrimSpace(record.FieldsJSON)
	if fieldsJSON == "" {
		fieldsJSON = "{}"
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO billing_events (id, event_type, occurred_at, fields_json)
	VALUES (?, ?, ?, ?)
	`,
		record.ID,
		record.EventType,
		toMillis(record.OccurredAt),
		fieldsJSON,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEvents lists events of one type, newest first.
func (s *Store) ListEvents(ctx context.Context, eventType string, limit int) ([]storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return nil, fmt.Errorf("event type is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, event_type, occurred_at, fields_json
FROM billing_events
WHERE event_type = ?
ORDER BY occurred_at DESC, id DESC
LIMIT ?
`, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	results := make([]storage.EventRecord, 0, limit)
	for rows.Next() {
		var record storage.EventRecord
		var occurredAt int64
		if err := rows.Scan(&record.ID, &record.EventType, &occurredAt, &record.FieldsJSON); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		record.OccurredAt = fromMillis(occurredAt)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return results, nil
}

// orderTx implements storage.OrderTx over one *sql.Tx.
type orderTx struct {
	tx      *sql.Tx
	orderID string
}

func (t *orderTx) GetOrder(ctx context.Context) (storage.OrderRecord, error) {
	return getOrderQuery(ctx, t.tx, t.orderID)
}

func (t *orderTx) UpdateOrder(ctx context.Context, record storage.OrderRecord) error {
	record.ID = t.orderID
	normalized, err := normalizeOrderRecord(record)
	if err != nil {
		return err
	}
	return putOrderExec(ctx, t.tx, normalized)
}

func (t *orderTx) ListInstallments(ctx context.Context) ([]storage.InstallmentRecord, error) {
	return listInstallmentsQuery(ctx, t.tx, t.orderID)
}

func (t *orderTx) PutInstallment(ctx context.Context, record storage.InstallmentRecord) error {
	record.OrderID = t.orderID
	normalized, err := normalizeInstallmentRecord(record)
	if err != nil {
		return err
	}
	return putInstallmentExec(ctx, t.tx, normalized)
}

func (t *orderTx) DeleteInstallment(ctx context.Context, installmentID string) error {
	installmentID = strings.TrimSpace(installmentID)
	if installmentID == "" {
		return fmt.Errorf("installment id is required")
	}
	result, err := t.tx.ExecContext(ctx, `
DELETE FROM installments
WHERE id = ? AND order_id = ?
`, installmentID, t.orderID)
	if err != nil {
		return fmt.Errorf("delete installment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete installment rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (t *orderTx) DeleteInstallments(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `
DELETE FROM installments
WHERE order_id = ?
`, t.orderID); err != nil {
		return fmt.Errorf("delete installments: %w", err)
	}
	return nil
}

func (t *orderTx) IncrementMemberSpend(ctx context.Context, memberID string, amount int64) error {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return fmt.Errorf("member id is required")
	}
	now := toMillis(time.Now())
	// The member row may not exist yet when orders are imported ahead of
	// member records.
	if _, err := t.tx.ExecContext(ctx, `
	INSERT INTO members (id, lifetime_spend, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		lifetime_spend = lifetime_spend + excluded.lifetime_spend,
		updated_at = excluded.updated_at
	`, memberID, amount, now, now); err != nil {
		return fmt.Errorf("increment member spend: %w", err)
	}
	return nil
}

type scanner func(dest ...any) error

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const installmentColumns = `id, order_id, installment_no, due_date, amount, status, paid_at, payment_method, notes, is_custom, auto_adjusted, created_at, updated_at`

func normalizeOrderRecord(record storage.OrderRecord) (storage.OrderRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.MemberID = strings.TrimSpace(record.MemberID)
	record.BranchID = strings.TrimSpace(record.BranchID)
	record.Status = strings.TrimSpace(record.Status)
	record.PaymentType = strings.TrimSpace(record.PaymentType)
	if record.ID == "" {
		return storage.OrderRecord{}, fmt.Errorf("order id is required")
	}
	if record.TotalAmount <= 0 {
		return storage.OrderRecord{}, fmt.Errorf("order total must be positive")
	}
	if record.Status == "" {
		return storage.OrderRecord{}, fmt.Errorf("order status is required")
	}
	if record.PaymentType == "" {
		return storage.OrderRecord{}, fmt.Errorf("order payment type is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.OrderRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.OrderRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.PaidAt != nil {
		paidAt := record.PaidAt.UTC()
		record.PaidAt = &paidAt
	}
	return record, nil
}

func normalizeInstallmentRecord(record storage.InstallmentRecord) (storage.InstallmentRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.OrderID = strings.TrimSpace(record.OrderID)
	record.Status = strings.TrimSpace(record.Status)
	record.PaymentMethod = strings.TrimSpace(record.PaymentMethod)
	if record.ID == "" {
		return storage.InstallmentRecord{}, fmt.Errorf("installment id is required")
	}
	if record.OrderID == "" {
		return storage.InstallmentRecord{}, fmt.Errorf("order id is required")
	}
	if record.InstallmentNo < 1 {
		return storage.InstallmentRecord{}, fmt.Errorf("installment number must be at least 1")
	}
	if record.Amount <= 0 {
		return storage.InstallmentRecord{}, fmt.Errorf("installment amount must be positive")
	}
	if record.Status == "" {
		return storage.InstallmentRecord{}, fmt.Errorf("installment status is required")
	}
	if record.DueDate.IsZero() {
		return storage.InstallmentRecord{}, fmt.Errorf("installment due date is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.InstallmentRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.InstallmentRecord{}, fmt.Errorf("updated_at is required")
	}
	record.DueDate = record.DueDate.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.PaidAt != nil {
		paidAt := record.PaidAt.UTC()
		record.PaidAt = &paidAt
	}
	return record, nil
}

func getOrderQuery(ctx context.Context, q sqlQuerier, orderID string) (storage.OrderRecord, error) {
	row := q.QueryRowContext(ctx, `
SELECT id, member_id, branch_id, total_amount, status, payment_type, is_installment, paid_at, created_at, updated_at
FROM orders
WHERE id = ?
`, orderID)
	var record storage.OrderRecord
	var createdAt, updatedAt int64
	var paidAt sql.NullInt64
	if err := row.Scan(
		&record.ID,
		&record.MemberID,
		&record.BranchID,
		&record.TotalAmount,
		&record.Status,
		&record.PaymentType,
		&record.IsInstallment,
		&paidAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.OrderRecord{}, storage.ErrNotFound
		}
		return storage.OrderRecord{}, fmt.Errorf("get order: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	if paidAt.Valid {
		value := fromMillis(paidAt.Int64)
		record.PaidAt = &value
	}
	return record, nil
}

func listInstallmentsQuery(ctx context.Context, q sqlQuerier, orderID string) ([]storage.InstallmentRecord, error) {
	rows, err := q.QueryContext(ctx, `
SELECT `+installmentColumns+`
FROM installments
WHERE order_id = ?
ORDER BY installment_no ASC
`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	var results []storage.InstallmentRecord
	for rows.Next() {
		record, scanErr := scanInstallment(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan installment row: %w", scanErr)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate installment rows: %w", err)
	}
	return results, nil
}

func putOrderExec(ctx context.Context, execer sqlExecer, record storage.OrderRecord) error {
	var paidAt sql.NullInt64
	if record.PaidAt != nil {
		paidAt = sql.NullInt64{Int64: toMillis(*record.PaidAt), Valid: true}
	}

	_, err := execer.ExecContext(ctx, `
	INSERT INTO orders (
		id, member_id, branch_id, total_amount, status, payment_type, is_installment, paid_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		member_id = excluded.member_id,
		branch_id = excluded.branch_id,
		total_amount = excluded.total_amount,
		status = excluded.status,
		payment_type = excluded.payment_type,
		is_installment = excluded.is_installment,
		paid_at = excluded.paid_at,
		updated_at = excluded.updated_at
	`,
		record.ID,
		record.MemberID,
		record.BranchID,
		record.TotalAmount,
		record.Status,
		record.PaymentType,
		record.IsInstallment,
		paidAt,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

func putInstallmentExec(ctx context.Context, execer sqlExecer, record storage.InstallmentRecord) error {
	var paidAt sql.NullInt64
	if record.PaidAt != nil {
		paidAt = sql.NullInt64{Int64: toMillis(*record.PaidAt), Valid: true}
	}

	_, err := execer.ExecContext(ctx, `
	INSERT INTO installments (
		id, order_id, installment_no, due_date, amount, status, paid_at, payment_method, notes, is_custom, auto_adjusted, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		installment_no = excluded.installment_no,
		due_date = excluded.due_date,
		amount = excluded.amount,
		status = excluded.status,
		paid_at = excluded.paid_at,
		payment_method = excluded.payment_method,
		notes = excluded.notes,
		is_custom = excluded.is_custom,
		auto_adjusted = excluded.auto_adjusted,
		updated_at = excluded.updated_at
	`,
		record.ID,
		record.OrderID,
		record.InstallmentNo,
		toMillis(record.DueDate),
		record.Amount,
		record.Status,
		paidAt,
		record.PaymentMethod,
		record.Notes,
		record.IsCustom,
		record.AutoAdjusted,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put installment: %w", err)
	}
	return nil
}

func scanInstallment(scan scanner) (storage.InstallmentRecord, error) {
	var record storage.InstallmentRecord
	var dueDate, createdAt, updatedAt int64
	var paidAt sql.NullInt64
	if err := scan(
		&record.ID,
		&record.OrderID,
		&record.InstallmentNo,
		&dueDate,
		&record.Amount,
		&record.Status,
		&paidAt,
		&record.PaymentMethod,
		&record.Notes,
		&record.IsCustom,
		&record.AutoAdjusted,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.InstallmentRecord{}, err
	}
	record.DueDate = fromMillis(dueDate)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	if paidAt.Valid {
		value := fromMillis(paidAt.Int64)
		record.PaidAt = &value
	}
	return record, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}

func isForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "foreign key constraint failed")
}
