package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	portsrepo "github.com/finvisor/finvisor_app/internal/core/ports/repositories"
	"github.com/finvisor/finvisor_app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReceiptRepository struct {
	db *pgxpool.Pool
}

func newPgxReceiptRepository(db *pgxpool.Pool) portsrepo.ReceiptRepositoryFacade {
	return &PgxReceiptRepository{db: db}
}

var _ portsrepo.ReceiptRepositoryFacade = (*PgxReceiptRepository)(nil)

const receiptColumns = `receipt_id, firm_id, gross_amount, net_amount, tax_amount, vendor, address, city,
		payment_method, document_ref, status, receipt_number, client_id, processed_by,
		created_at, processed_at, updated_at`

func toDomainReceipt(m models.Receipt) domain.Receipt {
	return domain.Receipt{
		ID:            m.ReceiptID,
		FirmID:        m.FirmID,
		GrossAmount:   m.GrossAmount,
		NetAmount:     m.NetAmount,
		TaxAmount:     m.TaxAmount,
		Vendor:        m.Vendor,
		Address:       m.Address,
		City:          m.City,
		PaymentMethod: m.PaymentMethod,
		DocumentRef:   m.DocumentRef,
		Status:        domain.ReceiptStatus(m.Status),
		Number:        m.ReceiptNumber,
		ClientID:      m.ClientID,
		ProcessedBy:   m.ProcessedBy,
		CreatedAt:     m.CreatedAt,
		ProcessedAt:   m.ProcessedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func scanReceipt(row pgx.Row) (*models.Receipt, error) {
	var m models.Receipt
	err := row.Scan(
		&m.ReceiptID,
		&m.FirmID,
		&m.GrossAmount,
		&m.NetAmount,
		&m.TaxAmount,
		&m.Vendor,
		&m.Address,
		&m.City,
		&m.PaymentMethod,
		&m.DocumentRef,
		&m.Status,
		&m.ReceiptNumber,
		&m.ClientID,
		&m.ProcessedBy,
		&m.CreatedAt,
		&m.ProcessedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListReceipts applies the filter tuple: equality predicates on client and
// processed-by, a range over the processing date (falling back to the
// creation date for receipts the pipeline has not finished), and a
// case-insensitive substring OR over three text fields. At most limit rows,
// ordered by processing date then creation date.
func (r *PgxReceiptRepository) ListReceipts(ctx context.Context, firmID string, filter domain.ReceiptFilter, limit int) ([]domain.Receipt, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	conds := []string{"firm_id = $1"}
	args := []any{firmID}
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.From != nil {
		add("COALESCE(processed_at, created_at) >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("COALESCE(processed_at, created_at) <= $%d", *filter.To)
	}
	if filter.ClientID != "" && filter.ClientID != domain.FilterAll {
		add("client_id = $%d", filter.ClientID)
	}
	if filter.ProcessedBy != "" && filter.ProcessedBy != domain.FilterAll {
		add("processed_by = $%d", filter.ProcessedBy)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(vendor ILIKE $%d OR document_ref ILIKE $%d OR payment_method ILIKE $%d)", n, n, n))
	}

	dir := "DESC"
	if filter.Sort == domain.SortAsc {
		dir = "ASC"
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM receipts
        WHERE %s
        ORDER BY processed_at %s NULLS LAST, created_at %s
        LIMIT %d;
    `, receiptColumns, strings.Join(conds, " AND "), dir, dir, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list receipts: %v", apperrors.ErrQuery, err)
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		m, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		receipts = append(receipts, toDomainReceipt(*m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: list receipts: %v", apperrors.ErrQuery, rows.Err())
	}

	return receipts, nil
}

func (r *PgxReceiptRepository) FindReceiptByID(ctx context.Context, firmID string, receiptID int64) (*domain.Receipt, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM receipts
        WHERE firm_id = $1 AND receipt_id = $2;
    `, receiptColumns)

	m, err := scanReceipt(r.db.QueryRow(ctx, query, firmID, receiptID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find receipt %d: %v", apperrors.ErrQuery, receiptID, err)
	}

	receipt := toDomainReceipt(*m)
	return &receipt, nil
}

func (r *PgxReceiptRepository) CreateReceipt(ctx context.Context, receipt domain.Receipt) (*domain.Receipt, error) {
	query := fmt.Sprintf(`
        INSERT INTO receipts (firm_id, vendor, document_ref, status, client_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, now(), now())
        RETURNING %s;
    `, receiptColumns)

	m, err := scanReceipt(r.db.QueryRow(ctx, query,
		receipt.FirmID,
		receipt.Vendor,
		receipt.DocumentRef,
		string(receipt.Status),
		receipt.ClientID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}

	created := toDomainReceipt(*m)
	return &created, nil
}

func (r *PgxReceiptRepository) UpdateReceiptFields(ctx context.Context, receipt domain.Receipt) error {
	query := `
        UPDATE receipts
        SET gross_amount = $1, net_amount = $2, tax_amount = $3, vendor = $4, address = $5,
            city = $6, payment_method = $7, document_ref = $8, client_id = $9, updated_at = now()
        WHERE firm_id = $10 AND receipt_id = $11;
    `
	cmdTag, err := r.db.Exec(ctx, query,
		receipt.GrossAmount,
		receipt.NetAmount,
		receipt.TaxAmount,
		receipt.Vendor,
		receipt.Address,
		receipt.City,
		receipt.PaymentMethod,
		receipt.DocumentRef,
		receipt.ClientID,
		receipt.FirmID,
		receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt %d: %w", receipt.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CompleteReceipt assigns the firm's next sequential number and moves the
// receipt to processed, atomically. The status predicate enforces the
// monotonic transition: anything but a pending receipt is left untouched.
func (r *PgxReceiptRepository) CompleteReceipt(ctx context.Context, firmID string, receiptID int64, processedBy *string) (*domain.Receipt, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var number int64
	err = tx.QueryRow(ctx, `
        INSERT INTO receipt_counters (firm_id, next_number) VALUES ($1, 2)
        ON CONFLICT (firm_id) DO UPDATE SET next_number = receipt_counters.next_number + 1
        RETURNING next_number - 1;
    `, firmID).Scan(&number)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate receipt number: %w", err)
	}

	query := fmt.Sprintf(`
        UPDATE receipts
        SET receipt_number = $1, status = $2, processed_by = $3, processed_at = now(), updated_at = now()
        WHERE firm_id = $4 AND receipt_id = $5 AND status = $6
        RETURNING %s;
    `, receiptColumns)

	m, err := scanReceipt(tx.QueryRow(ctx, query,
		number,
		string(domain.ReceiptProcessed),
		processedBy,
		firmID,
		receiptID,
		string(domain.ReceiptPending),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissingTransition(ctx, firmID, receiptID)
		}
		return nil, fmt.Errorf("failed to complete receipt %d: %w", receiptID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit receipt completion: %w", err)
	}

	completed := toDomainReceipt(*m)
	return &completed, nil
}

func (r *PgxReceiptRepository) FailReceipt(ctx context.Context, firmID string, receiptID int64) error {
	query := `
        UPDATE receipts
        SET status = $1, processed_at = now(), updated_at = now()
        WHERE firm_id = $2 AND receipt_id = $3 AND status = $4;
    `
	cmdTag, err := r.db.Exec(ctx, query, string(domain.ReceiptError), firmID, receiptID, string(domain.ReceiptPending))
	if err != nil {
		return fmt.Errorf("failed to mark receipt %d as errored: %w", receiptID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.classifyMissingTransition(ctx, firmID, receiptID)
	}
	return nil
}

func (r *PgxReceiptRepository) DeleteReceipt(ctx context.Context, firmID string, receiptID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM receipts WHERE firm_id = $1 AND receipt_id = $2;`, firmID, receiptID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt %d: %w", receiptID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// classifyMissingTransition distinguishes "no such receipt" from "receipt
// exists but already left pending", which is a validation error.
func (r *PgxReceiptRepository) classifyMissingTransition(ctx context.Context, firmID string, receiptID int64) error {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM receipts WHERE firm_id = $1 AND receipt_id = $2;`, firmID, receiptID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: find receipt %d: %v", apperrors.ErrQuery, receiptID, err)
	}
	return fmt.Errorf("receipt %d is already %s: %w", receiptID, status, apperrors.ErrValidation)
}
