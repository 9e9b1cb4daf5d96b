package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wastewise/wastewise/internal/database"
	"github.com/wastewise/wastewise/internal/listing"
	"github.com/wastewise/wastewise/internal/transaction"
)

// openOfferIndex guards against two PENDING_PAYMENT offers from the same buyer
// on the same listing.
const openOfferIndex = "idx_transactions_open_offer"

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

// scanTransaction reads a transaction row joined with its listing summary.
// Expected column order matches selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var status, unit string

	var summary transaction.ListingSummary

	if err := s.Scan(
		&tx.ID, &tx.ListingID, &tx.SellerID, &tx.BuyerID,
		&tx.AgreedPrice, &tx.AgreedQuantity, &tx.CommissionRate, &status,
		&tx.CreatedAt, &tx.UpdatedAt,
		&summary.Title, &summary.MaterialType, &unit,
	); err != nil {
		return nil, err
	}

	tx.Status = transaction.Status(status)
	summary.Unit = listing.Unit(unit)
	tx.Listing = &summary

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.listing_id, t.seller_id, t.buyer_id,
	t.agreed_price, t.agreed_quantity, t.commission_rate, t.status,
	t.created_at, t.updated_at,
	l.title, l.material_type, l.unit
`

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (listing_id, seller_id, buyer_id, agreed_price, agreed_quantity, commission_rate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.ListingID,
		tx.SellerID,
		tx.BuyerID,
		tx.AgreedPrice,
		tx.AgreedQuantity,
		tx.CommissionRate,
		tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if name, ok := database.UniqueViolation(err); ok && name == openOfferIndex {
			return transaction.ErrDuplicateOffer
		}

		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		JOIN listings l ON t.listing_id = l.id
		WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) HasOpenOffer(ctx context.Context, listingID, buyerID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE listing_id = $1 AND buyer_id = $2 AND status = $3
		)
	`

	var open bool
	if err := s.db.QueryRowContext(ctx, query, listingID, buyerID, transaction.StatusPendingPayment).Scan(&open); err != nil {
		return false, fmt.Errorf("checking open offer: %w", err)
	}

	return open, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		JOIN listings l ON t.listing_id = l.id
		WHERE 1 = 1`

	var args []any

	argIdx := 1

	if filter.ParticipantID != nil {
		query += fmt.Sprintf(" AND (t.buyer_id = $%d OR t.seller_id = $%d)", argIdx, argIdx)

		args = append(args, *filter.ParticipantID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	query += " ORDER BY t.created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// CompareAndSetStatus applies the transition only if the row is still in the
// from status. Concurrent callers racing on the same transition see exactly
// one success.
func (s *Store) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to transaction.Status) (time.Time, error) {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING updated_at
	`

	var updatedAt time.Time

	conn := database.Conn(ctx, s.db)

	err := conn.QueryRowContext(ctx, query, to, id, from).Scan(&updatedAt)
	if err == nil {
		return updatedAt, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("updating transaction status: %w", err)
	}

	var exists bool
	if err := conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return time.Time{}, fmt.Errorf("checking transaction: %w", err)
	}

	if !exists {
		return time.Time{}, transaction.ErrNotFound
	}

	return time.Time{}, transaction.ErrStatusChanged
}
