package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotedesk/quotedesk/internal/platform/db"
)

var (
	ErrNotFound           = errors.New("quotation not found")
	ErrDuplicateNumber    = errors.New("quotation number already exists")
	ErrDuplicateReference = errors.New("quotation reference already exists")
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	GetByNumber(ctx context.Context, number string) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithDetails, int, error)
	Create(ctx context.Context, quotation Quotation) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	InsertLine(ctx context.Context, line LineItem) (int64, error)
	DeleteLines(ctx context.Context, quotationID int64) error
	SoftDelete(ctx context.Context, id int64) error
	LatestNumberInMonth(ctx context.Context, at time.Time) (string, error)
	ListExpired(ctx context.Context, asOf time.Time) ([]Quotation, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quotationColumns = `id, quotation_number, reference, account_id, contact_id,
	quote_date, valid_until, status, tax_rate, subtotal, discount_amount,
	tax_amount, total_amount, notes, created_by, created_at, updated_at, deleted_at`

const lineColumns = `id, quotation_id, product_id, description, quantity,
	proposed_unit_price, discount_pct, tax_pct, subtotal, discount_amount,
	taxable_amount, tax_amount, total, line_order, created_at, updated_at, deleted_at`

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations WHERE id = $1 AND deleted_at IS NULL`
	q, err := scanQuotation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if q.Lines, err = r.lines(ctx, q.ID); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations WHERE quotation_number = $1 AND deleted_at IS NULL`
	q, err := scanQuotation(r.db.QueryRow(ctx, query, number))
	if err != nil {
		return nil, err
	}
	if q.Lines, err = r.lines(ctx, q.ID); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) lines(ctx context.Context, quotationID int64) ([]LineItem, error) {
	query := `SELECT ` + lineColumns + ` FROM quotation_line_items
		WHERE quotation_id = $1 AND deleted_at IS NULL
		ORDER BY line_order, id`
	rows, err := r.db.Query(ctx, query, quotationID)
	if err != nil {
		return nil, fmt.Errorf("query quotation lines: %w", err)
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var ln LineItem
		if err := rows.Scan(
			&ln.ID, &ln.QuotationID, &ln.ProductID, &ln.Description, &ln.Quantity,
			&ln.ProposedUnitPrice, &ln.DiscountPct, &ln.TaxPct, &ln.Subtotal,
			&ln.DiscountAmount, &ln.TaxableAmount, &ln.TaxAmount, &ln.Total,
			&ln.LineOrder, &ln.CreatedAt, &ln.UpdatedAt, &ln.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quotation line: %w", err)
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithDetails, int, error) {
	conditions := []string{"q.deleted_at IS NULL"}
	var args []any
	argPos := 1

	if req.AccountID != nil {
		conditions = append(conditions, fmt.Sprintf("q.account_id = $%d", argPos))
		args = append(args, *req.AccountID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("q.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("q.quote_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("q.quote_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(q.quotation_number ILIKE $%d OR q.reference ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM quotations q " + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotations: %w", err)
	}

	limit := req.Limit
	if limit < 1 {
		limit = 20
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT q.id, q.quotation_number, q.reference, q.account_id, q.contact_id,
			q.quote_date, q.valid_until, q.status, q.tax_rate, q.subtotal, q.discount_amount,
			q.tax_amount, q.total_amount, q.notes, q.created_by, q.created_at, q.updated_at, q.deleted_at,
			a.name AS account_name, u.full_name AS created_by_name
		FROM quotations q
		JOIN accounts a ON a.id = q.account_id
		JOIN users u ON u.id = q.created_by
		%s
		ORDER BY q.id DESC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query quotations: %w", err)
	}
	defer rows.Close()

	var items []QuotationWithDetails
	for rows.Next() {
		var d QuotationWithDetails
		var reference *string
		if err := rows.Scan(
			&d.ID, &d.QuotationNumber, &reference, &d.AccountID, &d.ContactID,
			&d.QuoteDate, &d.ValidUntil, &d.Status, &d.TaxRate, &d.Subtotal,
			&d.DiscountAmount, &d.TaxAmount, &d.TotalAmount, &d.Notes, &d.CreatedBy,
			&d.CreatedAt, &d.UpdatedAt, &d.DeletedAt, &d.AccountName, &d.CreatedByName,
		); err != nil {
			return nil, 0, fmt.Errorf("scan quotation row: %w", err)
		}
		if reference != nil {
			d.Reference = *reference
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, quotation Quotation) (int64, error) {
	query := `INSERT INTO quotations (
			quotation_number, reference, account_id, contact_id, quote_date, valid_until,
			status, tax_rate, subtotal, discount_amount, tax_amount, total_amount,
			notes, created_by, created_at, updated_at
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		quotation.QuotationNumber, quotation.Reference, quotation.AccountID,
		quotation.ContactID, quotation.QuoteDate, quotation.ValidUntil,
		quotation.Status, quotation.TaxRate, quotation.Subtotal,
		quotation.DiscountAmount, quotation.TaxAmount, quotation.TotalAmount,
		quotation.Notes, quotation.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, translateUniqueViolation(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	setClauses := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	argPos := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE quotations SET %s WHERE id = $%d AND deleted_at IS NULL",
		strings.Join(setClauses, ", "), argPos)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return translateUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE quotations SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`,
		status, id)
	if err != nil {
		return fmt.Errorf("update quotation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line LineItem) (int64, error) {
	query := `INSERT INTO quotation_line_items (
			quotation_id, product_id, description, quantity, proposed_unit_price,
			discount_pct, tax_pct, subtotal, discount_amount, taxable_amount,
			tax_amount, total, line_order, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		line.QuotationID, line.ProductID, line.Description, line.Quantity,
		line.ProposedUnitPrice, line.DiscountPct, line.TaxPct, line.Subtotal,
		line.DiscountAmount, line.TaxableAmount, line.TaxAmount, line.Total,
		line.LineOrder,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert quotation line: %w", err)
	}
	return id, nil
}

func (r *repository) DeleteLines(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE quotation_line_items SET deleted_at = NOW(), updated_at = NOW()
		 WHERE quotation_id = $1 AND deleted_at IS NULL`, quotationID)
	if err != nil {
		return fmt.Errorf("delete quotation lines: %w", err)
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE quotations SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LatestNumberInMonth returns the quotation number of the most recently
// created quotation in the calendar month of at, or "" when the month is
// empty. Soft-deleted rows are included so numbering continuity survives
// deletions.
func (r *repository) LatestNumberInMonth(ctx context.Context, at time.Time) (string, error) {
	monthStart := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	var number string
	err := r.db.QueryRow(ctx,
		`SELECT quotation_number FROM quotations
		 WHERE created_at >= $1 AND created_at < $2
		 ORDER BY id DESC
		 LIMIT 1`, monthStart, nextMonth).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest quotation number: %w", err)
	}
	return number, nil
}

func (r *repository) ListExpired(ctx context.Context, asOf time.Time) ([]Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations
		WHERE deleted_at IS NULL
		  AND status IN ($1, $2)
		  AND valid_until < $3
		ORDER BY valid_until`
	rows, err := r.db.Query(ctx, query, StatusPending, StatusApproved, asOf)
	if err != nil {
		return nil, fmt.Errorf("query expired quotations: %w", err)
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := scanQuotationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	q, err := scanQuotationRows(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return q, err
}

func scanQuotationRows(row rowScanner) (*Quotation, error) {
	var q Quotation
	var reference *string
	err := row.Scan(
		&q.ID, &q.QuotationNumber, &reference, &q.AccountID, &q.ContactID,
		&q.QuoteDate, &q.ValidUntil, &q.Status, &q.TaxRate, &q.Subtotal,
		&q.DiscountAmount, &q.TaxAmount, &q.TotalAmount, &q.Notes, &q.CreatedBy,
		&q.CreatedAt, &q.UpdatedAt, &q.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if reference != nil {
		q.Reference = *reference
	}
	return &q, nil
}

func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "reference") {
			return ErrDuplicateReference
		}
		return ErrDuplicateNumber
	}
	return fmt.Errorf("persist quotation: %w", err)
}
