package postgres

import (
	"context"
	"database/sql"
	"math"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/code-vault/pkg/code/data/vault"
	pgutil "github.com/code-payments/code-vault/pkg/database/postgres"
)

const (
	tableName = "codewallet__core_vaultstate"

	allColumns = `id, vault, authority, bump, total_deposited, created_at, last_updated_at`
)

// Postgres has no unsigned 64 bit type, so the counter is stored as a NUMERIC
// bounded to the uint64 range and passed as text.
var maxTotalDeposited = strconv.FormatUint(math.MaxUint64, 10)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Vault     string `db:"vault"`
	Authority string `db:"authority"`
	Bump      uint   `db:"bump"`

	TotalDeposited uint64 `db:"total_deposited"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *vault.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Vault:     obj.Vault,
		Authority: obj.Authority,
		Bump:      uint(obj.Bump),

		TotalDeposited: obj.TotalDeposited,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *vault.Record {
	return &vault.Record{
		Id: uint64(obj.Id.Int64),

		Vault:     obj.Vault,
		Authority: obj.Authority,
		Bump:      uint8(obj.Bump),

		TotalDeposited: obj.TotalDeposited,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbCreate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(vault, authority, bump, total_deposited, created_at, last_updated_at)
			VALUES ($1, $2, $3, 0, $4, $4)
			RETURNING ` + allColumns

		now := time.Now().UTC()

		err := tx.QueryRowxContext(
			ctx,
			query,

			m.Vault,
			m.Authority,
			m.Bump,

			now,
		).StructScan(m)

		return pgutil.CheckUniqueViolation(err, vault.ErrAlreadyInitialized)
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT ` + allColumns + `
		FROM ` + tableName + `
		WHERE vault = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, vault.ErrNotFound)
	}
	return res, nil
}

func dbAddToTotalDeposited(ctx context.Context, db *sqlx.DB, address string, amount uint64) (uint64, error) {
	var total uint64
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		// Bound check and increment are a single statement
		query := `UPDATE ` + tableName + `
			SET total_deposited = total_deposited + $2::NUMERIC, last_updated_at = $4
			WHERE vault = $1 AND total_deposited <= $3::NUMERIC - $2::NUMERIC
			RETURNING total_deposited`

		err := tx.QueryRowxContext(
			ctx,
			query,
			address,
			strconv.FormatUint(amount, 10),
			maxTotalDeposited,
			time.Now().UTC(),
		).Scan(&total)
		if !pgutil.IsNoRows(err) {
			return err
		}

		var exists bool
		err = tx.QueryRowxContext(
			ctx,
			`SELECT EXISTS(SELECT 1 FROM `+tableName+` WHERE vault = $1)`,
			address,
		).Scan(&exists)
		if err != nil {
			return err
		}

		if exists {
			return vault.ErrOverflow
		}
		return vault.ErrNotFound
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func dbCountAll(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var res uint64

	query := `SELECT COUNT(*) FROM ` + tableName

	err := db.GetContext(ctx, &res, query)
	if err != nil {
		return 0, err
	}
	return res, nil
}
