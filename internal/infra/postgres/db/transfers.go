package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createTransfer = `INSERT INTO transfers (sender_id, receiver_id, amount) VALUES ($1, $2, $3)
RETURNING id, created_at`

type CreateTransferParams struct {
	SenderID   int64
	ReceiverID int64
	Amount     int64
}

type CreateTransferRow struct {
	ID        int64
	CreatedAt pgtype.Timestamptz
}

func (q *Queries) CreateTransfer(ctx context.Context, arg CreateTransferParams) (CreateTransferRow, error) {
	var row CreateTransferRow
	err := q.db.QueryRow(ctx, createTransfer, arg.SenderID, arg.ReceiverID, arg.Amount).Scan(&row.ID, &row.CreatedAt)
	return row, err
}

const countTransfersByAccount = `SELECT COUNT(*) FROM transfers WHERE sender_id = $1 OR receiver_id = $1`

func (q *Queries) CountTransfersByAccount(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countTransfersByAccount, accountID).Scan(&count)
	return count, err
}

// LEFT JOIN como no histórico original; o FK RESTRICT garante que os nomes existem
const listTransfersSelect = `SELECT t.id, t.sender_id, t.receiver_id, t.amount, t.created_at,
       COALESCE(s.name, ''), COALESCE(r.name, '')
FROM transfers t
LEFT JOIN accounts s ON s.id = t.sender_id
LEFT JOIN accounts r ON r.id = t.receiver_id
`

const listTransfers = listTransfersSelect + `ORDER BY t.id DESC
LIMIT $1`

const listTransfersByAccount = listTransfersSelect + `WHERE t.sender_id = $1 OR t.receiver_id = $1
ORDER BY t.id DESC
LIMIT $2`

type ListTransfersRow struct {
	ID           int64
	SenderID     int64
	ReceiverID   int64
	Amount       int64
	CreatedAt    pgtype.Timestamptz
	SenderName   string
	ReceiverName string
}

func (q *Queries) ListTransfers(ctx context.Context, limit int32) ([]ListTransfersRow, error) {
	rows, err := q.db.Query(ctx, listTransfers, limit)
	if err != nil {
		return nil, err
	}
	return scanTransferRows(rows)
}

type ListTransfersByAccountParams struct {
	AccountID int64
	Limit     int32
}

func (q *Queries) ListTransfersByAccount(ctx context.Context, arg ListTransfersByAccountParams) ([]ListTransfersRow, error) {
	rows, err := q.db.Query(ctx, listTransfersByAccount, arg.AccountID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return scanTransferRows(rows)
}

func scanTransferRows(rows pgx.Rows) ([]ListTransfersRow, error) {
	defer rows.Close()

	var items []ListTransfersRow
	for rows.Next() {
		var t ListTransfersRow
		if err := rows.Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.CreatedAt, &t.SenderName, &t.ReceiverName); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
