package contacts

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotedesk/quotedesk/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Contact, int, error)
	Get(ctx context.Context, id int64) (Contact, error)
	Create(ctx context.Context, contact Contact) (Contact, error)
	Update(ctx context.Context, id int64, contact Contact) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Contact, int, error) {
	query := `SELECT id, account_id, name, email, phone, position, is_active, created_at, updated_at FROM contacts WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM contacts WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.AccountID != nil {
		argCount++
		clause := ` AND account_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.AccountID)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR email ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		clause := ` AND is_active = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.Position, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, c)
	}
	return contacts, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Contact, error) {
	const query = `SELECT id, account_id, name, email, phone, position, is_active, created_at, updated_at FROM contacts WHERE id = $1`
	var c Contact
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.Position, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, shared.ErrNotFound
		}
		return Contact{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, contact Contact) (Contact, error) {
	const query = `
		INSERT INTO contacts (account_id, name, email, phone, position, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, contact.AccountID, contact.Name, contact.Email, contact.Phone, contact.Position, contact.IsActive, now).Scan(&contact.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Contact{}, shared.ErrNotFound
		}
		return Contact{}, err
	}
	contact.CreatedAt = now
	contact.UpdatedAt = now
	return contact, nil
}

func (r *repository) Update(ctx context.Context, id int64, contact Contact) error {
	const query = `
		UPDATE contacts SET account_id = $1, name = $2, email = $3, phone = $4, position = $5, is_active = $6, updated_at = $7
		WHERE id = $8`
	tag, err := r.db.Exec(ctx, query, contact.AccountID, contact.Name, contact.Email, contact.Phone, contact.Position, contact.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
