package store

import (
	"fmt"

	"gorm.io/gorm"

	"pantry/internal/tenant"
)

// RequireOwned reports ErrNotFound unless row id of T exists and belongs to
// customer. Rows of other customers are indistinguishable from missing rows.
func RequireOwned[T any](tx *gorm.DB, customer tenant.ID, id uint) error {
	if err := tenant.Require(customer); err != nil {
		return err
	}

	var count int64
	if err := tx.Model(new(T)).Where("id = ? AND customer_id = ?", id, uint(customer)).Count(&count).Error; err != nil {
		return fmt.Errorf("check %T %d: %w", *new(T), id, err)
	}
	if count == 0 {
		return fmt.Errorf("%T %d: %w", *new(T), id, ErrNotFound)
	}
	return nil
}

// RefuseIfReferenced reports ErrInUse when any T row of customer has column
// equal to id.
func RefuseIfReferenced[T any](tx *gorm.DB, customer tenant.ID, column string, id uint, what string) error {
	var count int64
	if err := tx.Model(new(T)).Where("customer_id = ? AND "+column+" = ?", uint(customer), id).Count(&count).Error; err != nil {
		return fmt.Errorf("count %s: %w", what, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: used by %d %s", ErrInUse, count, what)
	}
	return nil
}

// DeleteWhere soft deletes every T row of customer whose column equals id.
func DeleteWhere[T any](tx *gorm.DB, customer tenant.ID, column string, id uint) error {
	if err := tx.Where("customer_id = ? AND "+column+" = ?", uint(customer), id).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("delete %T rows: %w", *new(T), err)
	}
	return nil
}
