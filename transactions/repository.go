// Package transactions queries and updates the external transaction store
// used by the reversal tool.
package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arkantrust/abassist/models"
)

// ErrNotFound is returned when no transaction has the requested ID.
var ErrNotFound = errors.New("transaction not found")

const searchColumns = `txn_id, txn_type, txn_amount, txn_status, txn_date,
	account_number, reference_number, merchant_name, created_date`

const detailColumns = `t.txn_id, t.txn_type, t.txn_amount, t.txn_status, t.txn_date,
	t.account_number, t.reference_number, t.merchant_name, t.merchant_id,
	t.terminal_id, t.auth_code, t.response_code, t.response_message,
	t.card_number_masked, t.expiry_date, t.created_date, t.updated_date,
	t.reversal_status, t.reversal_date, t.reversal_reference`

// Repository runs the transaction queries against a database/sql handle.
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

// NewRepository returns a Repository over db speaking dialect.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

// Search returns the transactions matching every non-empty criterion,
// newest first.
func (r *Repository) Search(ctx context.Context, c models.SearchCriteria) ([]models.Transaction, error) {
	query, args := r.searchQuery(c)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	defer rows.Close()

	items := []models.Transaction{}
	for rows.Next() {
		vals, err := scanStrings(rows, 9)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		items = append(items, models.Transaction{
			TxnID:           vals[0],
			TxnType:         vals[1],
			TxnAmount:       vals[2],
			TxnStatus:       vals[3],
			TxnDate:         vals[4],
			AccountNumber:   vals[5],
			ReferenceNumber: vals[6],
			MerchantName:    vals[7],
			CreatedDate:     vals[8],
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	return items, nil
}

func (r *Repository) searchQuery(c models.SearchCriteria) (string, []any) {
	var b strings.Builder
	var args []any
	b.WriteString("SELECT " + searchColumns + " FROM transactions WHERE 1=1")

	add := func(cond, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		b.WriteString(" AND " + strings.Replace(cond, "?", r.dialect.Bind(len(args)), 1))
	}
	add("txn_id = ?", c.TxnID)
	add("account_number = ?", c.AccountNumber)
	add("reference_number = ?", c.ReferenceNumber)
	add("txn_date >= TO_DATE(?, 'YYYY-MM-DD')", c.DateFrom)
	add("txn_date <= TO_DATE(?, 'YYYY-MM-DD')", c.DateTo)

	b.WriteString(" ORDER BY txn_date DESC")
	return b.String(), args
}

// Get returns the full record of one transaction.
// Returns ErrNotFound if there is no such row.
func (r *Repository) Get(ctx context.Context, id string) (*models.Transaction, error) {
	query := "SELECT " + detailColumns + " FROM transactions t WHERE t.txn_id = " + r.dialect.Bind(1)

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get transaction %s: %w", id, err)
		}
		return nil, ErrNotFound
	}
	v, err := scanStrings(rows, 20)
	if err != nil {
		return nil, fmt.Errorf("scan transaction %s: %w", id, err)
	}
	return &models.Transaction{
		TxnID:             v[0],
		TxnType:           v[1],
		TxnAmount:         v[2],
		TxnStatus:         v[3],
		TxnDate:           v[4],
		AccountNumber:     v[5],
		ReferenceNumber:   v[6],
		MerchantName:      v[7],
		MerchantID:        v[8],
		TerminalID:        v[9],
		AuthCode:          v[10],
		ResponseCode:      v[11],
		ResponseMessage:   v[12],
		CardNumberMasked:  v[13],
		ExpiryDate:        v[14],
		CreatedDate:       v[15],
		UpdatedDate:       v[16],
		ReversalStatus:    v[17],
		ReversalDate:      v[18],
		ReversalReference: v[19],
	}, nil
}

// UpdateReversalStatus records a reversal reference and status on a
// transaction and stamps its reversal and update dates.
func (r *Repository) UpdateReversalStatus(ctx context.Context, id, reversalID, status string) error {
	now := r.dialect.Now()
	query := "UPDATE transactions SET reversal_status = " + r.dialect.Bind(1) +
		", reversal_reference = " + r.dialect.Bind(2) +
		", reversal_date = " + now +
		", updated_date = " + now +
		" WHERE txn_id = " + r.dialect.Bind(3)

	res, err := r.db.ExecContext(ctx, query, status, reversalID, id)
	if err != nil {
		return fmt.Errorf("update reversal status of %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanStrings scans the current row into n strings. Dates are formatted as
// RFC 3339 and NULLs become "".
func scanStrings(rows *sql.Rows, n int) ([]string, error) {
	raw := make([]any, n)
	ptrs := make([]any, n)
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	out := make([]string, n)
	for i, v := range raw {
		out[i] = stringify(v)
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
