package account

import (
	"context"
	"database/sql"

	"github.com/foodforall/marketplace/model"
	"github.com/jmoiron/sqlx"
)

type SQL struct {
	conn *sqlx.DB
}

type AccountRepository interface {
	Create(ctx context.Context, req *model.AccountEntity) (*model.AccountEntity, error)
	Get(ctx context.Context, filter *model.AccountFilter) (*model.AccountEntity, error)
}

func NewAccountRepository(conn *sqlx.DB) AccountRepository {
	return &SQL{conn: conn}
}

const (
	insertAccountQuery = `INSERT INTO account (role, name, email, phone, password_hash, address, district, opening_time, closing_time, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`
	getAccountBase     = `SELECT id, role, name, email, phone, password_hash, address, district, opening_time, closing_time, created_at, updated_at FROM account WHERE true`
)

func (s *SQL) Create(ctx context.Context, data *model.AccountEntity) (*model.AccountEntity, error) {
	result, err := s.conn.ExecContext(ctx, insertAccountQuery,
		data.Role, data.Name, data.Email, data.Phone, data.PasswordHash,
		data.Address, data.District, data.OpeningTime, data.ClosingTime)
	if err != nil {
		return nil, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	data.ID = uint64(lastID)
	return data, nil
}

func (s *SQL) Get(ctx context.Context, filter *model.AccountFilter) (*model.AccountEntity, error) {
	query := getAccountBase
	args := make([]any, 0, 3)

	if filter.ID != 0 {
		query += " AND id = ?"
		args = append(args, filter.ID)
	}
	if filter.Email != "" {
		query += " AND email = ?"
		args = append(args, filter.Email)
	}
	if filter.Phone != "" {
		query += " AND phone = ?"
		args = append(args, filter.Phone)
	}

	var entity model.AccountEntity
	if err := s.conn.QueryRowxContext(ctx, query, args...).StructScan(&entity); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}
