package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/domain/repositories"
)

// Options configures the connection pool
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

// Open connects to postgres with error translation enabled so unique violations surface as
// gorm.ErrDuplicatedKey
func Open(opts Options) (*gorm.DB, error) {
	level := gormlogger.Warn
	if opts.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// Store implements repositories.Store and repositories.TxManager on GORM. Reads made through a
// transactional store lock the rows they return.
type Store struct {
	db   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the connection for report queries
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTransaction runs fn in a READ COMMITTED transaction. Row locks taken with SELECT ... FOR UPDATE
// serialize concurrent writers of the same inventory key, order or transfer.
func (s *Store) WithTransaction(ctx context.Context, fn repositories.TxFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx, inTx: true})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (s *Store) Items() repositories.ItemRepository          { return &itemRepository{s} }
func (s *Store) Sites() repositories.SiteRepository          { return &siteRepository{s} }
func (s *Store) BOMs() repositories.BOMRepository            { return &bomRepository{s} }
func (s *Store) Inventory() repositories.InventoryRepository { return &inventoryRepository{s} }
func (s *Store) Orders() repositories.OrderRepository        { return &orderRepository{s} }
func (s *Store) Transfers() repositories.TransferRepository  { return &transferRepository{s} }
func (s *Store) Pricing() repositories.PricingRepository     { return &pricingRepository{s} }

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// locking returns a query that takes a row lock when running inside a transaction
func (s *Store) locking(ctx context.Context) *gorm.DB {
	db := s.conn(ctx)
	if s.inTx {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// first loads one row by id and maps a missing row to a NotFound error
func first(db *gorm.DB, dest interface{}, id int64, op, what string) error {
	err := db.Take(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.NotFoundf(op, "%s %d not found", what, id)
	}
	return err
}

// translate maps constraint violations to domain errors
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return entities.NewError(entities.KindValidation, op, "duplicate record: %v", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return entities.NewError(entities.KindValidation, op, "referenced record does not exist: %v", err)
	default:
		return err
	}
}

// translateLedger keeps unique violations on the inventory tables retryable. They come from
// concurrent writers of one key, never from bad input.
func translateLedger(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &entities.Error{Kind: entities.KindInternal, Op: op, Message: "concurrent write to the same inventory key", Err: err}
	}
	return translate(err, op)
}
