package users

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pantry/internal/store"
	"pantry/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:users-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestCreate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	user, err := Create(context.Background(), db, "Example@Email.com", "  Test User  ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "example@email.com", user.Email)
	assert.Equal(t, "Test User", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))

	found, err := FindByEmail(context.Background(), db, "EXAMPLE@email.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestCreateRequiresCredentials(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := Create(context.Background(), db, " ", "User", "password")
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestWithoutDatabase(t *testing.T) {
	t.Parallel()

	_, err := Create(context.Background(), nil, "a@b.test", "", "pw")
	assert.True(t, errors.Is(err, gorm.ErrInvalidDB))
	_, err = FindByEmail(context.Background(), nil, "a@b.test")
	assert.True(t, errors.Is(err, gorm.ErrInvalidDB))
}

func TestGrantAndMemberships(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	user, err := Create(ctx, db, "owner@pantry.test", "Owner", "pw")
	require.NoError(t, err)
	zeta := models.Customer{Name: "Zeta Foods"}
	alpha := models.Customer{Name: "Alpha Bakery"}
	require.NoError(t, db.Create(&zeta).Error)
	require.NoError(t, db.Create(&alpha).Error)

	require.NoError(t, Grant(ctx, db, user.ID, zeta.ID))
	require.NoError(t, Grant(ctx, db, user.ID, alpha.ID))
	require.NoError(t, Grant(ctx, db, user.ID, alpha.ID))

	customers, err := Memberships(ctx, db, user.ID)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Alpha Bakery", customers[0].Name)
	assert.Equal(t, "Zeta Foods", customers[1].Name)

	assert.ErrorIs(t, Grant(ctx, db, user.ID, 999), store.ErrNotFound)
}
