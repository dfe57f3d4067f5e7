//go:build dbtest
// +build dbtest

package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	qt "github.com/frankban/quicktest"

	"github.com/conwetlab/privatedatasets-backend/config"
	database "github.com/conwetlab/privatedatasets-backend/pkg/db"
	"github.com/conwetlab/privatedatasets-backend/pkg/repository"
)

var db *gorm.DB

func TestMain(m *testing.M) {
	if err := config.Init("../../config/config.yaml"); err != nil {
		panic(err)
	}

	var err error
	db, err = database.NewConnection(&config.Config.Database)
	if err != nil {
		panic(err)
	}

	if err := repository.NewRepository(db).EnsureSchema(context.Background()); err != nil {
		panic(err)
	}

	exitCode := m.Run()
	database.Close(db)

	os.Exit(exitCode)
}

func newTxRepository(c *qt.C) repository.Repository {
	tx := db.Begin()
	c.Cleanup(func() { tx.Rollback() })
	return repository.NewRepository(tx)
}

func TestRepository_AddAndList(t *testing.T) {
	c := qt.New(t)
	repo := newTxRepository(c)
	ctx := context.Background()

	require.NoError(t, repo.AddAllowedUser(ctx, "ds-1", "bob"))
	require.NoError(t, repo.AddAllowedUser(ctx, "ds-1", "alice"))
	require.NoError(t, repo.AddAllowedUser(ctx, "ds-2", "alice"))

	entries, err := repo.ListAllowedUsers(ctx, repository.AllowedUserFilter{PackageID: "ds-1"})
	require.NoError(t, err)
	c.Assert(entries, qt.HasLen, 2)
	// ordered by package then user
	c.Assert(entries[0].UserName, qt.Equals, "alice")
	c.Assert(entries[1].UserName, qt.Equals, "bob")

	entries, err = repo.ListAllowedUsers(ctx, repository.AllowedUserFilter{UserName: "alice"})
	require.NoError(t, err)
	c.Assert(entries, qt.HasLen, 2)

	entries, err = repo.ListAllowedUsers(ctx, repository.AllowedUserFilter{PackageID: "ds-1", UserName: "alice"})
	require.NoError(t, err)
	c.Assert(entries, qt.HasLen, 1)
}

func TestRepository_AddDuplicate(t *testing.T) {
	c := qt.New(t)
	repo := newTxRepository(c)
	ctx := context.Background()

	require.NoError(t, repo.AddAllowedUser(ctx, "ds-1", "bob"))

	err := repo.AddAllowedUser(ctx, "ds-1", "bob")
	c.Assert(err, qt.ErrorIs, repository.ErrAlreadyExists)
}

func TestRepository_Delete(t *testing.T) {
	c := qt.New(t)
	repo := newTxRepository(c)
	ctx := context.Background()

	require.NoError(t, repo.AddAllowedUser(ctx, "ds-1", "bob"))
	require.NoError(t, repo.DeleteAllowedUser(ctx, "ds-1", "bob"))

	err := repo.DeleteAllowedUser(ctx, "ds-1", "bob")
	c.Assert(err, qt.ErrorIs, repository.ErrNoDataDeleted)
}

func TestRepository_DeleteByPackage(t *testing.T) {
	c := qt.New(t)
	repo := newTxRepository(c)
	ctx := context.Background()

	require.NoError(t, repo.AddAllowedUser(ctx, "ds-1", "bob"))
	require.NoError(t, repo.AddAllowedUser(ctx, "ds-1", "alice"))
	require.NoError(t, repo.AddAllowedUser(ctx, "ds-2", "bob"))

	require.NoError(t, repo.DeleteAllowedUsersByPackage(ctx, "ds-1"))

	entries, err := repo.ListAllowedUsers(ctx, repository.AllowedUserFilter{})
	require.NoError(t, err)
	c.Assert(entries, qt.HasLen, 1)
	c.Assert(entries[0].PackageID, qt.Equals, "ds-2")
}

func TestRepository_WithTransactionRollback(t *testing.T) {
	c := qt.New(t)
	repo := newTxRepository(c)
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(txRepo repository.Repository) error {
		if err := txRepo.AddAllowedUser(ctx, "ds-1", "bob"); err != nil {
			return err
		}
		return repository.ErrNoDataDeleted
	})
	c.Assert(err, qt.ErrorIs, repository.ErrNoDataDeleted)

	entries, err := repo.ListAllowedUsers(ctx, repository.AllowedUserFilter{PackageID: "ds-1"})
	require.NoError(t, err)
	c.Assert(entries, qt.HasLen, 0)
}
