package db

import "github.com/jackc/pgx/v5/pgtype"

type Account struct {
	ID        int64
	Name      string
	Balance   int64
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}
