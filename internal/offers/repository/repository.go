package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/platform/sanitize"
)

const (
	supersedeOrdersQuery = `
		UPDATE quote_orders
		SET status = $3, superseded_at = now()
		WHERE pass_id = $1 AND id <> $2 AND status = $4
	`

	insertOrderQuery = `
		INSERT INTO quote_orders (id, hash, pass_id, product_family, legal_type, masked_identifier, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	insertOfferQuery = `
		INSERT INTO quote_offers (order_id, position, offer_id, product_id, vendor_name, status, reason, premium, currency, is_ancillary, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	selectOrderQuery = `
		SELECT id, hash, pass_id, product_family, legal_type, masked_identifier, status, created_at
		FROM quote_orders
		WHERE id = $1
	`

	selectOffersQuery = `
		SELECT payload, is_ancillary
		FROM quote_offers
		WHERE order_id = $1
		ORDER BY position
	`

	purgeOrdersQuery = `DELETE FROM quote_orders WHERE created_at < $1`
)

// PostgresRepository stores snapshots in quote_orders and quote_offers.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a Postgres-backed repository.
func New(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) SaveSnapshot(ctx context.Context, snapshot Snapshot) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	order := snapshot.Order
	if _, err := tx.Exec(ctx, supersedeOrdersQuery, snapshot.PassID, order.ID, StatusSuperseded, StatusActive); err != nil {
		return fmt.Errorf("supersede previous orders: %w", err)
	}

	if _, err := tx.Exec(ctx, insertOrderQuery, orderArgs(snapshot)...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	rows := make([]domain.Offer, 0, len(snapshot.Offers)+1)
	rows = append(rows, snapshot.Offers...)
	if snapshot.Ancillary != nil {
		rows = append(rows, *snapshot.Ancillary)
	}

	batch := &pgx.Batch{}
	for position, offer := range rows {
		payload, err := json.Marshal(toStored(offer))
		if err != nil {
			return fmt.Errorf("encode offer %s: %w", offer.ProductID, err)
		}
		isAncillary := snapshot.Ancillary != nil && position == len(rows)-1
		batch.Queue(insertOfferQuery, order.ID, position, offer.ID, offer.ProductID, offer.VendorName, string(offer.Status), string(offer.Reason),
			offer.Premium.Round(2), offer.Currency, isAncillary, payload)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert offers: %w", err)
	}

	return tx.Commit(ctx)
}

// orderArgs binds insertOrderQuery. The identifier is stored masked; the
// full value never leaves the request.
func orderArgs(snapshot Snapshot) []any {
	order := snapshot.Order
	return []any{
		order.ID,
		order.Hash,
		snapshot.PassID,
		string(order.Family),
		string(order.Applicant.LegalType),
		sanitize.MaskIdentifier(order.Applicant.Identifier),
		StatusActive,
	}
}

func (r *PostgresRepository) GetSnapshot(ctx context.Context, orderID int64) (Snapshot, error) {
	var (
		snapshot  Snapshot
		family    string
		legalType string
	)
	err := r.pool.QueryRow(ctx, selectOrderQuery, orderID).Scan(
		&snapshot.Order.ID,
		&snapshot.Order.Hash,
		&snapshot.PassID,
		&family,
		&legalType,
		&snapshot.Order.Applicant.Identifier,
		&snapshot.Status,
		&snapshot.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	snapshot.Order.Family = domain.ProductFamily(family)
	snapshot.Order.Applicant.LegalType = domain.LegalType(legalType)
	snapshot.Order.CreatedAt = snapshot.CreatedAt

	rows, err := r.pool.Query(ctx, selectOffersQuery, orderID)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			payload     []byte
			isAncillary bool
		)
		if err := rows.Scan(&payload, &isAncillary); err != nil {
			return Snapshot{}, err
		}
		var stored storedOffer
		if err := json.Unmarshal(payload, &stored); err != nil {
			return Snapshot{}, fmt.Errorf("decode offer payload: %w", err)
		}
		offer := stored.toDomain()
		if isAncillary {
			snapshot.Ancillary = &offer
			continue
		}
		snapshot.Offers = append(snapshot.Offers, offer)
	}
	return snapshot, rows.Err()
}

// Compile-time check that PostgresRepository implements Repository
var _ Repository = (*PostgresRepository)(nil)

// PurgeBefore deletes snapshots created before cutoff. Offers go with their
// order through the cascading foreign key.
func (r *PostgresRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, purgeOrdersQuery, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
