package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/code-vault/pkg/code/data/vault"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed vault.Store
func New(db *sql.DB) vault.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Create implements vault.Store.Create
func (s *store) Create(ctx context.Context, record *vault.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	if err := model.dbCreate(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// Get implements vault.Store.Get
func (s *store) Get(ctx context.Context, address string) (*vault.Record, error) {
	model, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}

	return fromModel(model), nil
}

// AddToTotalDeposited implements vault.Store.AddToTotalDeposited
func (s *store) AddToTotalDeposited(ctx context.Context, address string, amount uint64) (uint64, error) {
	return dbAddToTotalDeposited(ctx, s.db, address, amount)
}

// CountAll implements vault.Store.CountAll
func (s *store) CountAll(ctx context.Context) (uint64, error) {
	return dbCountAll(ctx, s.db)
}
