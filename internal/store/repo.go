// Package store provides tenant-scoped persistence for catalog records.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pantry/internal/tenant"
)

// Scoped is satisfied by pointers to models embedding models.Owned.
type Scoped[T any] interface {
	*T
	OwnerID() uint
	AssignOwner(customerID uint)
}

// WriteHook runs inside the write transaction before a create or update.
type WriteHook[T any] func(tx *gorm.DB, customer tenant.ID, entity *T) error

// DeleteHook runs inside the delete transaction before the row is removed.
// Returning an error aborts the delete.
type DeleteHook func(tx *gorm.DB, customer tenant.ID, id uint) error

// Repo reads and writes one model type, always filtered to a single customer.
type Repo[T any, PT Scoped[T]] struct {
	db           *gorm.DB
	name         string
	order        string
	preloads     []string
	beforeWrite  WriteHook[T]
	beforeDelete DeleteHook
}

// New returns a repository for T ordered by primary key.
func New[T any, PT Scoped[T]](db *gorm.DB, name string) *Repo[T, PT] {
	return &Repo[T, PT]{db: db, name: name, order: "id asc"}
}

// OrderBy sets the list ordering clause.
func (r *Repo[T, PT]) OrderBy(order string) *Repo[T, PT] {
	r.order = order
	return r
}

// Preload names associations loaded by List and Get.
func (r *Repo[T, PT]) Preload(associations ...string) *Repo[T, PT] {
	r.preloads = append(r.preloads, associations...)
	return r
}

// BeforeWrite installs a hook that runs before every create and update.
func (r *Repo[T, PT]) BeforeWrite(hook WriteHook[T]) *Repo[T, PT] {
	r.beforeWrite = hook
	return r
}

// BeforeDelete installs a hook that runs before every delete.
func (r *Repo[T, PT]) BeforeDelete(hook DeleteHook) *Repo[T, PT] {
	r.beforeDelete = hook
	return r
}

func (r *Repo[T, PT]) scoped(ctx context.Context, customer tenant.ID) *gorm.DB {
	query := r.db.WithContext(ctx).Where("customer_id = ?", uint(customer))
	for _, association := range r.preloads {
		query = query.Preload(association)
	}
	return query
}

func (r *Repo[T, PT]) List(ctx context.Context, customer tenant.ID) ([]T, error) {
	if err := tenant.Require(customer); err != nil {
		return nil, err
	}

	var records []T
	if err := r.scoped(ctx, customer).Order(r.order).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.name, err)
	}
	return records, nil
}

func (r *Repo[T, PT]) Get(ctx context.Context, customer tenant.ID, id uint) (*T, error) {
	if err := tenant.Require(customer); err != nil {
		return nil, err
	}

	var record T
	if err := r.scoped(ctx, customer).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %d: %w", r.name, id, ErrNotFound)
		}
		return nil, fmt.Errorf("load %s %d: %w", r.name, id, err)
	}
	return &record, nil
}

// Create stamps entity with the customer and inserts it.
func (r *Repo[T, PT]) Create(ctx context.Context, customer tenant.ID, entity PT) error {
	if err := tenant.Require(customer); err != nil {
		return err
	}
	resetModel(entity)
	entity.AssignOwner(uint(customer))
	if err := Validate(entity); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.beforeWrite != nil {
			if err := r.beforeWrite(tx, customer, (*T)(entity)); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(entity).Error; err != nil {
			return fmt.Errorf("create %s: %w", r.name, err)
		}
		return nil
	})
}

// Update overwrites the mutable columns of record id with the values in
// entity. A row that disappears between the read and the write reports
// ErrConflict.
func (r *Repo[T, PT]) Update(ctx context.Context, customer tenant.ID, id uint, entity PT) (*T, error) {
	if err := tenant.Require(customer); err != nil {
		return nil, err
	}
	entity.AssignOwner(uint(customer))
	if err := Validate(entity); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		if err := tx.Where("id = ? AND customer_id = ?", id, uint(customer)).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s %d: %w", r.name, id, ErrNotFound)
			}
			return fmt.Errorf("load %s %d: %w", r.name, id, err)
		}
		if r.beforeWrite != nil {
			if err := r.beforeWrite(tx, customer, (*T)(entity)); err != nil {
				return err
			}
		}

		result := tx.Model(&existing).
			Where("customer_id = ?", uint(customer)).
			Select("*").
			Omit("id", "created_at", "deleted_at", clause.Associations).
			Updates(entity)
		if result.Error != nil {
			return fmt.Errorf("update %s %d: %w", r.name, id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%s %d: %w", r.name, id, ErrConflict)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, customer, id)
}

// Delete removes record id after the delete hook has run, all inside one
// transaction.
func (r *Repo[T, PT]) Delete(ctx context.Context, customer tenant.ID, id uint) error {
	if err := tenant.Require(customer); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := RequireOwned[T](tx, customer, id); err != nil {
			return err
		}
		if r.beforeDelete != nil {
			if err := r.beforeDelete(tx, customer, id); err != nil {
				return err
			}
		}

		result := tx.Where("id = ? AND customer_id = ?", id, uint(customer)).Delete(new(T))
		if result.Error != nil {
			return fmt.Errorf("delete %s %d: %w", r.name, id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%s %d: %w", r.name, id, ErrConflict)
		}
		return nil
	})
}

// resetModel clears the embedded gorm.Model so client supplied ids and
// timestamps never reach an insert.
func resetModel(entity any) {
	value := reflect.ValueOf(entity)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return
	}
	value = value.Elem()
	if value.Kind() != reflect.Struct {
		return
	}
	field := value.FieldByName("Model")
	if field.IsValid() && field.CanSet() {
		field.Set(reflect.Zero(field.Type()))
	}
}
