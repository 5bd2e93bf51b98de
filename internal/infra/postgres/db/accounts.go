package db

import "context"

const accountColumns = `id, name, balance, created_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

const createAccount = `INSERT INTO accounts (name, balance) VALUES ($1, $2)
RETURNING ` + accountColumns

type CreateAccountParams struct {
	Name    string
	Balance int64
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, createAccount, arg.Name, arg.Balance))
}

const getAccount = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

func (q *Queries) GetAccount(ctx context.Context, id int64) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, getAccount, id))
}

const getAccountForUpdate = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

func (q *Queries) GetAccountForUpdate(ctx context.Context, id int64) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, getAccountForUpdate, id))
}

// LIMIT 2 basta para saber se o nome é ambíguo
const listAccountIDsByName = `SELECT id FROM accounts WHERE name = $1 ORDER BY id LIMIT 2`

func (q *Queries) ListAccountIDsByName(ctx context.Context, name string) ([]int64, error) {
	rows, err := q.db.Query(ctx, listAccountIDsByName, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ORDER BY id: todo mundo trava na mesma ordem, então não há deadlock entre A->B e B->A
const lockAccounts = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`

func (q *Queries) LockAccounts(ctx context.Context, ids []int64) ([]Account, error) {
	rows, err := q.db.Query(ctx, lockAccounts, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const adjustBalance = `UPDATE accounts SET balance = balance + $1, updated_at = NOW()
WHERE id = $2
RETURNING ` + accountColumns

type AdjustBalanceParams struct {
	Delta int64
	ID    int64
}

func (q *Queries) AdjustBalance(ctx context.Context, arg AdjustBalanceParams) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, adjustBalance, arg.Delta, arg.ID))
}

const deleteAccount = `DELETE FROM accounts WHERE id = $1 RETURNING ` + accountColumns

func (q *Queries) DeleteAccount(ctx context.Context, id int64) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, deleteAccount, id))
}
