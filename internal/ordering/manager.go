package ordering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/clinic-backend/pkg/errors"
	"github.com/angelmondragon/clinic-backend/pkg/lock"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
)

const orderColumn = "display_order"

// unlockTimeout bounds the release of scope locks, which runs even after the request
// context is cancelled.
const unlockTimeout = 5 * time.Second

// ListOrder is the ORDER BY clause every orderable listing uses. Rows sharing a
// display_order fall back to insertion order, then id.
const ListOrder = "display_order ASC, created_at ASC, id ASC"

// Orderable is implemented by every gorm model carrying a display_order column.
type Orderable interface {
	TableName() string
}

type database interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Locker serializes mutations of one scope across API instances.
type Locker interface {
	Lock(ctx context.Context, name ...string) (func(context.Context) error, error)
}

// Params configures a Manager. ScopeColumn is empty for tables ordered globally.
type Params struct {
	DB          database
	ScopeColumn string
	Locker      Locker
	Logger      *logger.Logger
}

// Manager keeps display_order dense within each scope of one table.
type Manager[T Orderable] struct {
	db          database
	table       string
	scopeColumn string
	locker      Locker
	logg        *logger.Logger
}

// NewManager builds an ordering manager for the table of T.
func NewManager[T Orderable](params Params) (*Manager[T], error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	var zero T
	table := zero.TableName()
	if table == "" {
		return nil, fmt.Errorf("orderable table name required")
	}
	return &Manager[T]{
		db:          params.DB,
		table:       table,
		scopeColumn: params.ScopeColumn,
		locker:      params.Locker,
		logg:        params.Logger,
	}, nil
}

// Table returns the managed table name.
func (m *Manager[T]) Table() string {
	return m.table
}

// ScopeOf returns the scope holding records whose scope column equals value.
func (m *Manager[T]) ScopeOf(value any) Scope {
	if m.scopeColumn == "" {
		return Global()
	}
	return By(m.scopeColumn, value)
}

// NextOrder returns max(display_order)+1 over the scope, or 0 for an empty scope.
// It does not persist anything; callers write the value on the new record in tx.
func (m *Manager[T]) NextOrder(ctx context.Context, tx *gorm.DB, scope Scope) (int, error) {
	if tx == nil {
		tx = m.db.DB().WithContext(ctx)
	}
	var max sql.NullInt64
	row := scope.Apply(tx.Table(m.table)).Select(fmt.Sprintf("MAX(%s)", orderColumn)).Row()
	if err := row.Scan(&max); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute next display order")
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// Append runs fn in a transaction with the next free display order of scope.
func (m *Manager[T]) Append(ctx context.Context, scope Scope, fn func(tx *gorm.DB, order int) error) error {
	return m.withScopes(ctx, []Scope{scope}, func() error {
		return m.db.WithTx(ctx, func(tx *gorm.DB) error {
			order, err := m.NextOrder(ctx, tx, scope)
			if err != nil {
				return err
			}
			return fn(tx, order)
		})
	})
}

// Reorder assigns display_order = i to ids[i] inside one transaction. Every id must
// belong to scope; otherwise nothing is written and a NOT_FOUND error is returned.
// Records of the scope missing from ids keep their current order.
func (m *Manager[T]) Reorder(ctx context.Context, scope Scope, ids []uuid.UUID) error {
	if err := validateIDs(ids); err != nil {
		return err
	}
	return m.withScopes(ctx, []Scope{scope}, func() error {
		return m.db.WithTx(ctx, func(tx *gorm.DB) error {
			for i, id := range ids {
				res := scope.Apply(tx.Table(m.table)).
					Where("id = ?", id).
					UpdateColumn(orderColumn, i)
				if res.Error != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update display order")
				}
				if res.RowsAffected == 0 {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %s not found in collection", id)).
						WithDetails(map[string]any{"id": id.String(), "position": i})
				}
			}
			return nil
		})
	})
}

// CloseGap shifts every record of scope ordered after removedOrder down by one.
// It is a single conditional UPDATE and must run in the transaction that deleted the record.
func (m *Manager[T]) CloseGap(ctx context.Context, tx *gorm.DB, scope Scope, removedOrder int) error {
	if tx == nil {
		tx = m.db.DB().WithContext(ctx)
	}
	err := scope.Apply(tx.Table(m.table)).
		Where(fmt.Sprintf("%s > ?", orderColumn), removedOrder).
		UpdateColumn(orderColumn, gorm.Expr(fmt.Sprintf("%s - 1", orderColumn))).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close display order gap")
	}
	return nil
}

// Remove runs fn, which deletes one record and reports the display order it held,
// then closes the gap it left. Both happen in one transaction under the scope lock so
// the order is read from the row actually deleted.
func (m *Manager[T]) Remove(ctx context.Context, scope Scope, fn func(tx *gorm.DB) (int, error)) error {
	return m.withScopes(ctx, []Scope{scope}, func() error {
		return m.db.WithTx(ctx, func(tx *gorm.DB) error {
			removed, err := fn(tx)
			if err != nil {
				return err
			}
			return m.CloseGap(ctx, tx, scope, removed)
		})
	})
}

// Move appends a record to the end of to and closes its old slot in from. fn receives
// the new order, persists the record's new scope and returns the order it left behind.
func (m *Manager[T]) Move(ctx context.Context, from, to Scope, fn func(tx *gorm.DB, order int) (int, error)) error {
	if from.String() == to.String() {
		return pkgerrors.New(pkgerrors.CodeValidation, "source and target collections are the same")
	}
	return m.withScopes(ctx, []Scope{from, to}, func() error {
		return m.db.WithTx(ctx, func(tx *gorm.DB) error {
			order, err := m.NextOrder(ctx, tx, to)
			if err != nil {
				return err
			}
			previous, err := fn(tx, order)
			if err != nil {
				return err
			}
			return m.CloseGap(ctx, tx, from, previous)
		})
	})
}

type orderRow struct {
	ID           string
	DisplayOrder int
}

// Normalize rewrites scope to 0..n-1 following ListOrder and reports how many rows moved.
func (m *Manager[T]) Normalize(ctx context.Context, scope Scope) (int, error) {
	changed := 0
	err := m.withScopes(ctx, []Scope{scope}, func() error {
		return m.db.WithTx(ctx, func(tx *gorm.DB) error {
			var rows []orderRow
			if err := scope.Apply(tx.Table(m.table)).
				Select("id, " + orderColumn).
				Order(ListOrder).
				Scan(&rows).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load display orders")
			}
			for i, row := range rows {
				if row.DisplayOrder == i {
					continue
				}
				if err := tx.Table(m.table).
					Where("id = ?", row.ID).
					UpdateColumn(orderColumn, i).Error; err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rewrite display order")
				}
				changed++
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		logCtx := m.logg.WithFields(ctx, map[string]any{
			"table":   m.table,
			"scope":   scope.String(),
			"changed": changed,
		})
		m.logg.Info(logCtx, "ordering.normalized")
	}
	return changed, nil
}

// Scopes lists every scope currently holding at least one record.
func (m *Manager[T]) Scopes(ctx context.Context) ([]Scope, error) {
	if m.scopeColumn == "" {
		return []Scope{Global()}, nil
	}
	var values []sql.NullString
	if err := m.db.DB().WithContext(ctx).
		Table(m.table).
		Distinct(m.scopeColumn).
		Pluck(m.scopeColumn, &values).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ordering scopes")
	}
	scopes := make([]Scope, 0, len(values))
	for _, v := range values {
		if !v.Valid {
			scopes = append(scopes, By(m.scopeColumn, nil))
			continue
		}
		scopes = append(scopes, By(m.scopeColumn, v.String))
	}
	return scopes, nil
}

func (m *Manager[T]) withScopes(ctx context.Context, scopes []Scope, fn func() error) error {
	if m.locker == nil {
		return fn()
	}

	names := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		names = append(names, scope.String())
	}
	// fixed acquisition order so two moves in opposite directions cannot deadlock
	sort.Strings(names)

	releases := make([]func(context.Context) error, 0, len(names))
	defer func() {
		if len(releases) == 0 {
			return
		}
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
		defer cancel()
		for i := len(releases) - 1; i >= 0; i-- {
			if err := releases[i](unlockCtx); err != nil {
				m.logg.Warn(m.logg.WithFields(ctx, map[string]any{"table": m.table, "error": err.Error()}), "ordering.unlock_failed")
			}
		}
	}()

	for _, name := range names {
		release, err := m.locker.Lock(ctx, "ordering", m.table, name)
		if err != nil {
			if errors.Is(err, lock.ErrLockTimeout) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "collection is being modified, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock collection")
		}
		releases = append(releases, release)
	}
	return fn()
}

func validateIDs(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one id is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for i, id := range ids {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "ids must be valid").
				WithDetails(map[string]any{"position": i})
		}
		if _, dup := seen[id]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "ids must not repeat").
				WithDetails(map[string]any{"id": id.String()})
		}
		seen[id] = struct{}{}
	}
	return nil
}
