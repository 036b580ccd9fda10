package listing

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/foodforall/marketplace/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type SQL struct {
	conn *sqlx.DB
}

// ListingRepository is the record store behind the shared listing
// collection. Update and Delete return sql.ErrNoRows when the target row
// vanished. The guarded Tx variants additionally fail with sql.ErrNoRows
// when the version token no longer matches.
type ListingRepository interface {
	Create(ctx context.Context, rec *model.ListingRecord) (uint64, error)
	Get(ctx context.Context, id uint64) (*model.ListingRecord, error)
	Update(ctx context.Context, id uint64, patch *model.ListingPatch) error
	Delete(ctx context.Context, id uint64) error
	QueryAll(ctx context.Context, orderBy string, desc bool) ([]model.ListingRecord, error)

	CreateTx(ctx context.Context, tx *sqlx.Tx, rec *model.ListingRecord) (uint64, error)
	UpdateGuardedTx(ctx context.Context, tx *sqlx.Tx, id, version uint64, patch *model.ListingPatch) error
	DeleteGuardedTx(ctx context.Context, tx *sqlx.Tx, id, version uint64) error
}

func NewListingRepository(conn *sqlx.DB) ListingRepository {
	return &SQL{conn: conn}
}

// listingRow mirrors the listing table. Prices are stored as text and
// reserved as a JSON array, matching the original collection layout.
type listingRow struct {
	ID                uint64     `db:"id"`
	RestaurantName    string     `db:"restaurant_name"`
	FoodName          string     `db:"food_name"`
	Description       string     `db:"description"`
	Address           string     `db:"address"`
	District          string     `db:"district"`
	OriginalPrice     string     `db:"original_price"`
	DiscountedPrice   string     `db:"discounted_price"`
	QuantityAvailable int64      `db:"quantity_available"`
	Reserved          string     `db:"reserved"`
	Creator           string     `db:"creator"`
	User              string     `db:"user"`
	Version           uint64     `db:"version"`
	ExpiresAt         *time.Time `db:"expires_at"`
	CreatedAt         time.Time  `db:"created_at"`
}

func (r *listingRow) toRecord() (*model.ListingRecord, error) {
	original, err := decimal.NewFromString(r.OriginalPrice)
	if err != nil {
		return nil, err
	}
	discounted, err := decimal.NewFromString(r.DiscountedPrice)
	if err != nil {
		return nil, err
	}

	reserved := make([]string, 0)
	if r.Reserved != "" {
		if err := json.Unmarshal([]byte(r.Reserved), &reserved); err != nil {
			return nil, err
		}
	}

	return &model.ListingRecord{
		ID:                r.ID,
		RestaurantName:    r.RestaurantName,
		FoodName:          r.FoodName,
		Description:       r.Description,
		Address:           r.Address,
		District:          r.District,
		OriginalPrice:     original,
		DiscountedPrice:   discounted,
		QuantityAvailable: r.QuantityAvailable,
		Reserved:          reserved,
		Creator:           r.Creator,
		User:              r.User,
		Version:           r.Version,
		ExpiresAt:         r.ExpiresAt,
		CreatedAt:         r.CreatedAt,
	}, nil
}

func marshalReserved(reserved []string) (string, error) {
	if reserved == nil {
		reserved = []string{}
	}
	b, err := json.Marshal(reserved)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

const (
	insertListingQuery = `INSERT INTO listing
(restaurant_name, food_name, description, address, district, original_price, discounted_price, quantity_available, reserved, creator, user, version, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, NOW())`

	getListingQuery = `SELECT id, restaurant_name, food_name, description, address, district, original_price, discounted_price, quantity_available, reserved, creator, user, version, expires_at, created_at
FROM listing WHERE id = ?`

	queryAllBase = `SELECT id, restaurant_name, food_name, description, address, district, original_price, discounted_price, quantity_available, reserved, creator, user, version, expires_at, created_at
FROM listing`
)

// orderColumns whitelists sortable columns for QueryAll.
var orderColumns = map[string]bool{
	"id":               true,
	"created_at":       true,
	"discounted_price": true,
}

func (s *SQL) Create(ctx context.Context, rec *model.ListingRecord) (uint64, error) {
	return insertListing(ctx, s.conn, rec)
}

func (s *SQL) CreateTx(ctx context.Context, tx *sqlx.Tx, rec *model.ListingRecord) (uint64, error) {
	return insertListing(ctx, tx, rec)
}

func insertListing(ctx context.Context, ext sqlx.ExtContext, rec *model.ListingRecord) (uint64, error) {
	reserved, err := marshalReserved(rec.Reserved)
	if err != nil {
		return 0, err
	}

	res, err := ext.ExecContext(ctx, insertListingQuery,
		rec.RestaurantName, rec.FoodName, rec.Description, rec.Address, rec.District,
		rec.OriginalPrice.StringFixed(2), rec.DiscountedPrice.StringFixed(2),
		rec.QuantityAvailable, reserved, rec.Creator, rec.User, rec.ExpiresAt)
	if err != nil {
		return 0, err
	}

	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(lastID), nil
}

func (s *SQL) Get(ctx context.Context, id uint64) (*model.ListingRecord, error) {
	var row listingRow
	if err := s.conn.QueryRowxContext(ctx, getListingQuery, id).StructScan(&row); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return row.toRecord()
}

func (s *SQL) Update(ctx context.Context, id uint64, patch *model.ListingPatch) error {
	query, args, err := buildUpdate(id, 0, patch)
	if err != nil {
		return err
	}
	return execExpectRow(ctx, s.conn, query, args)
}

// UpdateGuardedTx applies the patch only when the version token still
// matches, bumping it on success.
func (s *SQL) UpdateGuardedTx(ctx context.Context, tx *sqlx.Tx, id, version uint64, patch *model.ListingPatch) error {
	query, args, err := buildUpdate(id, version, patch)
	if err != nil {
		return err
	}
	return execExpectRow(ctx, tx, query, args)
}

func buildUpdate(id, version uint64, patch *model.ListingPatch) (string, []any, error) {
	query := "UPDATE listing SET version = version + 1"
	args := make([]any, 0, 4)

	if patch.QuantityAvailable != nil {
		query += ", quantity_available = ?"
		args = append(args, *patch.QuantityAvailable)
	}
	if patch.Reserved != nil {
		reserved, err := marshalReserved(*patch.Reserved)
		if err != nil {
			return "", nil, err
		}
		query += ", reserved = ?"
		args = append(args, reserved)
	}

	query += " WHERE id = ?"
	args = append(args, id)
	if version != 0 {
		query += " AND version = ?"
		args = append(args, version)
	}
	return query, args, nil
}

func (s *SQL) Delete(ctx context.Context, id uint64) error {
	return execExpectRow(ctx, s.conn, "DELETE FROM listing WHERE id = ?", []any{id})
}

func (s *SQL) DeleteGuardedTx(ctx context.Context, tx *sqlx.Tx, id, version uint64) error {
	return execExpectRow(ctx, tx, "DELETE FROM listing WHERE id = ? AND version = ?", []any{id, version})
}

func execExpectRow(ctx context.Context, ext sqlx.ExtContext, query string, args []any) error {
	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// QueryAll returns every record in the collection. The SQL ordering on
// discounted_price is lexicographic because the column stores text;
// callers needing numeric ordering re-sort on the decoded decimals.
func (s *SQL) QueryAll(ctx context.Context, orderBy string, desc bool) ([]model.ListingRecord, error) {
	if !orderColumns[orderBy] {
		orderBy = "id"
	}
	query := queryAllBase + " ORDER BY " + orderBy
	if desc {
		query += " DESC"
	}

	rows, err := s.conn.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.ListingRecord, 0)
	for rows.Next() {
		var row listingRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
