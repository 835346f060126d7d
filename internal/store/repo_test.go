package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pantry/internal/tenant"
	"pantry/models"
)

const (
	tenantA tenant.ID = 1
	tenantB tenant.ID = 2
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:store-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedVendor(t *testing.T, db *gorm.DB, customer tenant.ID, name string) models.Vendor {
	t.Helper()

	vendor := models.Vendor{Name: name}
	vendor.AssignOwner(uint(customer))
	require.NoError(t, db.Create(&vendor).Error)
	return vendor
}

func TestListIsScopedToTenant(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	seedVendor(t, db, tenantA, "Valley Mills")
	seedVendor(t, db, tenantA, "Orchard Supply")
	seedVendor(t, db, tenantB, "Harbor Foods")

	repo := New[models.Vendor](db, "vendor").OrderBy("name asc")
	vendors, err := repo.List(context.Background(), tenantA)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "Orchard Supply", vendors[0].Name)
	assert.Equal(t, "Valley Mills", vendors[1].Name)
}

func TestRepoRejectsMissingTenant(t *testing.T) {
	t.Parallel()
	repo := New[models.Vendor](newTestDB(t), "vendor")
	ctx := context.Background()

	_, err := repo.List(ctx, tenant.None)
	assert.ErrorIs(t, err, tenant.ErrUnauthenticated)
	_, err = repo.Get(ctx, tenant.None, 1)
	assert.ErrorIs(t, err, tenant.ErrUnauthenticated)
	assert.ErrorIs(t, repo.Create(ctx, tenant.None, &models.Vendor{Name: "x"}), tenant.ErrUnauthenticated)
	assert.ErrorIs(t, repo.Delete(ctx, tenant.None, 1), tenant.ErrUnauthenticated)
}

func TestGetHidesOtherTenants(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	foreign := seedVendor(t, db, tenantB, "Harbor Foods")

	_, err := New[models.Vendor](db, "vendor").Get(context.Background(), tenantA, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateStampsTenant(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := New[models.Vendor](db, "vendor")

	vendor := &models.Vendor{Name: "Valley Mills"}
	vendor.CustomerID = uint(tenantB)
	require.NoError(t, repo.Create(context.Background(), tenantA, vendor))
	assert.NotZero(t, vendor.ID)
	assert.Equal(t, uint(tenantA), vendor.CustomerID)

	_, err := repo.Get(context.Background(), tenantB, vendor.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateIgnoresClientSuppliedID(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := New[models.Vendor](db, "vendor")

	existing := seedVendor(t, db, tenantB, "Harbor Provisions")
	vendor := &models.Vendor{Name: "Valley Mills"}
	vendor.ID = existing.ID
	require.NoError(t, repo.Create(context.Background(), tenantA, vendor))
	assert.NotEqual(t, existing.ID, vendor.ID)

	kept, err := New[models.Vendor](db, "vendor").Get(context.Background(), tenantB, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbor Provisions", kept.Name)
}

func TestCreateValidates(t *testing.T) {
	t.Parallel()
	repo := New[models.Vendor](newTestDB(t), "vendor")

	err := repo.Create(context.Background(), tenantA, &models.Vendor{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "name")

	err = repo.Create(context.Background(), tenantA, &models.Vendor{Name: "Valley", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateRunsWriteHook(t *testing.T) {
	t.Parallel()
	hookErr := errors.New("rejected")
	repo := New[models.Vendor](newTestDB(t), "vendor").BeforeWrite(func(tx *gorm.DB, customer tenant.ID, v *models.Vendor) error {
		if v.Name == "Blocked" {
			return hookErr
		}
		v.Notes = "checked"
		return nil
	})

	assert.ErrorIs(t, repo.Create(context.Background(), tenantA, &models.Vendor{Name: "Blocked"}), hookErr)

	vendor := &models.Vendor{Name: "Valley"}
	require.NoError(t, repo.Create(context.Background(), tenantA, vendor))
	stored, err := repo.Get(context.Background(), tenantA, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, "checked", stored.Notes)
}

func TestUpdateOverwritesMutableFields(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	original := seedVendor(t, db, tenantA, "Valley Mills")
	repo := New[models.Vendor](db, "vendor")

	updated, err := repo.Update(context.Background(), tenantA, original.ID, &models.Vendor{Name: "Valley Mills Co", City: "Fresno"})
	require.NoError(t, err)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, "Valley Mills Co", updated.Name)
	assert.Equal(t, "Fresno", updated.City)
	assert.Equal(t, uint(tenantA), updated.CustomerID)
}

func TestUpdateOtherTenantIsNotFound(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	foreign := seedVendor(t, db, tenantB, "Harbor Foods")

	_, err := New[models.Vendor](db, "vendor").Update(context.Background(), tenantA, foreign.ID, &models.Vendor{Name: "Stolen"})
	assert.ErrorIs(t, err, ErrNotFound)

	var stored models.Vendor
	require.NoError(t, db.First(&stored, foreign.ID).Error)
	assert.Equal(t, "Harbor Foods", stored.Name)
	assert.Equal(t, uint(tenantB), stored.CustomerID)
}

func TestUpdateReportsConflictWhenRowVanishes(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	vendor := seedVendor(t, db, tenantA, "Valley Mills")

	repo := New[models.Vendor](db, "vendor").BeforeWrite(func(tx *gorm.DB, _ tenant.ID, _ *models.Vendor) error {
		return tx.Unscoped().Delete(&models.Vendor{}, vendor.ID).Error
	})

	_, err := repo.Update(context.Background(), tenantA, vendor.ID, &models.Vendor{Name: "Renamed"})
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Vendor{}).Where("id = ?", vendor.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "the delete inside the failed transaction must roll back")
}

func TestDeleteRunsHookInTransaction(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	vendor := seedVendor(t, db, tenantA, "Valley Mills")
	ingredient := models.Ingredient{VendorID: vendor.ID, Name: "Flour"}
	ingredient.AssignOwner(uint(tenantA))
	require.NoError(t, db.Create(&ingredient).Error)

	repo := New[models.Vendor](db, "vendor").BeforeDelete(func(tx *gorm.DB, customer tenant.ID, id uint) error {
		return RefuseIfReferenced[models.Ingredient](tx, customer, "vendor_id", id, "ingredients")
	})

	err := repo.Delete(context.Background(), tenantA, vendor.ID)
	require.ErrorIs(t, err, ErrInUse)
	assert.Contains(t, err.Error(), "1 ingredients")

	require.NoError(t, db.Delete(&ingredient).Error)
	require.NoError(t, repo.Delete(context.Background(), tenantA, vendor.ID))

	_, err = repo.Get(context.Background(), tenantA, vendor.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOtherTenantIsNotFound(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	foreign := seedVendor(t, db, tenantB, "Harbor Foods")

	err := New[models.Vendor](db, "vendor").Delete(context.Background(), tenantA, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequireOwned(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	vendor := seedVendor(t, db, tenantA, "Valley Mills")

	assert.NoError(t, RequireOwned[models.Vendor](db, tenantA, vendor.ID))
	assert.ErrorIs(t, RequireOwned[models.Vendor](db, tenantB, vendor.ID), ErrNotFound)
	assert.ErrorIs(t, RequireOwned[models.Vendor](db, tenantA, vendor.ID+100), ErrNotFound)
}

func TestListQueryFiltersOnCustomer(t *testing.T) {
	t.Parallel()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "vendors" WHERE customer_id = \$1 AND "vendors"\."deleted_at" IS NULL ORDER BY name asc`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "name"}).AddRow(3, 9, "Valley Mills"))

	vendors, err := New[models.Vendor](db, "vendor").OrderBy("name asc").List(context.Background(), tenant.ID(9))
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Valley Mills", vendors[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
