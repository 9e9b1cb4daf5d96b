package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wastewise/wastewise/internal/database"
	"github.com/wastewise/wastewise/internal/listing"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectListingColumns.
func scanListing(s scanner) (*listing.Listing, error) {
	var l listing.Listing

	var unit, status string

	if err := s.Scan(
		&l.ID, &l.SellerID, &l.Title, &l.MaterialType, &l.Quantity, &unit,
		&l.PricePerUnit, &l.LocationName, &status, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	l.Unit = listing.Unit(unit)
	l.Status = listing.Status(status)

	return &l, nil
}

const selectListingColumns = `
	id, seller_id, title, material_type, quantity, unit,
	price_per_unit, location_name, status, created_at, updated_at
`

func (s *Store) CreateListing(ctx context.Context, l *listing.Listing) error {
	query := `
		INSERT INTO listings (seller_id, title, material_type, quantity, unit, price_per_unit, location_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		l.SellerID,
		l.Title,
		l.MaterialType,
		l.Quantity,
		l.Unit,
		l.PricePerUnit,
		l.LocationName,
		l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating listing: %w", err)
	}

	return nil
}

// CreateListings inserts all listings in one database transaction.
func (s *Store) CreateListings(ctx context.Context, ls []*listing.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning listings import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings (seller_id, title, material_type, quantity, unit, price_per_unit, location_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing listings import: %w", err)
	}
	defer stmt.Close()

	for _, l := range ls {
		if err := stmt.QueryRowContext(ctx,
			l.SellerID,
			l.Title,
			l.MaterialType,
			l.Quantity,
			l.Unit,
			l.PricePerUnit,
			l.LocationName,
			l.Status,
		).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return fmt.Errorf("importing listing %q: %w", l.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing listings import: %w", err)
	}

	return nil
}

func (s *Store) GetListing(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	query := `SELECT ` + selectListingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(database.Conn(ctx, s.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, listing.ErrNotFound
		}

		return nil, fmt.Errorf("getting listing: %w", err)
	}

	return l, nil
}

func (s *Store) ListListings(ctx context.Context, filter listing.ListFilter) ([]*listing.Listing, error) {
	query := `SELECT ` + selectListingColumns + ` FROM listings WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.SellerID != nil {
		query += fmt.Sprintf(" AND seller_id = $%d", argIdx)

		args = append(args, *filter.SellerID)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	defer rows.Close()

	var listings []*listing.Listing

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}

		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listing rows: %w", err)
	}

	return listings, nil
}

// AdvanceStatus moves the listing to status only from one of the from
// statuses, in a single conditional write.
func (s *Store) AdvanceStatus(ctx context.Context, id uuid.UUID, status listing.Status, from []listing.Status) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}

	args := []any{status, id}
	placeholders := make([]string, len(from))

	for i, st := range from {
		args = append(args, st)
		placeholders[i] = fmt.Sprintf("$%d", i+3)
	}

	query := `
		UPDATE listings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN (` + strings.Join(placeholders, ", ") + `)
	`

	conn := database.Conn(ctx, s.db)

	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("updating listing status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating listing status: %w", err)
	}

	if n > 0 {
		return true, nil
	}

	var exists bool
	if err := conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking listing: %w", err)
	}

	if !exists {
		return false, listing.ErrNotFound
	}

	return false, nil
}
