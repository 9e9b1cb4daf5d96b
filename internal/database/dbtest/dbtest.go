// Package dbtest opens the Postgres database used by store tests.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/database"
	"github.com/wastewise/wastewise/internal/listing"
	listingStore "github.com/wastewise/wastewise/internal/listing/store"
	"github.com/wastewise/wastewise/internal/user"
	userStore "github.com/wastewise/wastewise/internal/user/store"
)

// EnvDSN names the variable holding the test database connection string.
const EnvDSN = "WASTEWISE_TEST_DATABASE_URL"

// New connects to the database named by EnvDSN and applies the migrations.
// The test is skipped when the variable is unset. Tests share the database, so
// they must create their own rows with unique keys instead of truncating.
func New(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvDSN)
	}

	db, err := database.New(dsn)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))

	return db
}

// CreateUser inserts a user with a unique email and KRA PIN.
func CreateUser(t *testing.T, db *sql.DB, role auth.Role) *user.User {
	t.Helper()

	u := &user.User{
		CompanyName:  "Test Co " + uuid.NewString()[:8],
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "not-a-real-hash",
		KRAPin:       "P" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")),
		Role:         role,
	}
	require.NoError(t, userStore.New(db).CreateUser(context.Background(), u))

	return u
}

// CreateListing inserts an Active listing of five tons owned by sellerID.
func CreateListing(t *testing.T, db *sql.DB, sellerID uuid.UUID) *listing.Listing {
	t.Helper()

	l := &listing.Listing{
		SellerID:     sellerID,
		Title:        "5 Tons Scrap Metal",
		MaterialType: "Scrap Metal",
		Quantity:     decimal.NewFromInt(5),
		Unit:         listing.UnitTons,
		PricePerUnit: decimal.RequireFromString("12500.50"),
		LocationName: "Nairobi",
		Status:       listing.StatusActive,
	}
	require.NoError(t, listingStore.New(db).CreateListing(context.Background(), l))

	return l
}
