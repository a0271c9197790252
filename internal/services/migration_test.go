package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fishlog/internal/localdb"
	"github.com/dmitrijs2005/fishlog/internal/models"
	"github.com/dmitrijs2005/fishlog/internal/remote/blobstore"
	"github.com/dmitrijs2005/fishlog/internal/remote/docstore"
	"github.com/dmitrijs2005/fishlog/internal/repositories/catches"
	"github.com/dmitrijs2005/fishlog/internal/repositories/metadata"

	_ "modernc.org/sqlite"
)

type migrationFixture struct {
	svc  *MigrationService
	sync *SyncService
	repo *catches.SQLiteRepository
	meta metadata.Repository
	docs *docstore.MemoryStore
}

func setupMigration(t *testing.T) *migrationFixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, localdb.RunMigrations(context.Background(), db))

	repo := catches.NewSQLiteRepository(db)
	meta := metadata.NewSQLiteRepository(db)
	docs := docstore.NewMemoryStore()

	syncSvc := NewSyncService(repo, docs, blobstore.NewMemoryStore(), testLogger())
	syncSvc.recordDelay = 0

	svc := NewMigrationService(repo, meta, syncSvc, testLogger())
	svc.recordDelay = 0

	return &migrationFixture{svc: svc, sync: syncSvc, repo: repo, meta: meta, docs: docs}
}

func orphanCatch(t *testing.T, f *migrationFixture, id, species string) {
	t.Helper()
	c := &models.Catch{
		ID:         id,
		CapturedAt: time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC),
		Latitude:   56.95,
		Longitude:  24.1,
		Species:    species,
	}
	require.NoError(t, f.repo.CreateOrUpdate(context.Background(), c))
}

func TestCheck_ReportsPendingCount(t *testing.T) {
	f := setupMigration(t)
	ctx := context.Background()

	orphanCatch(t, f, "c1", "pike")
	orphanCatch(t, f, "c2", "perch")

	pending, done, err := f.svc.Check(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 2, pending)
}

func TestRun_AdoptsOrphanedRecords(t *testing.T) {
	f := setupMigration(t)
	ctx := context.Background()

	orphanCatch(t, f, "c1", "pike")
	orphanCatch(t, f, "c2", "perch")

	var phases []MigrationPhase
	var currents []string
	res, err := f.svc.Run(ctx, "alice", func(p MigrationProgress) {
		phases = append(phases, p.Phase)
		if p.Current != "" {
			currents = append(currents, p.Current)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Synced)
	assert.Zero(t, res.Failed)

	assert.Equal(t, MigrationPreparing, phases[0])
	assert.Contains(t, phases, MigrationMigrating)
	assert.Equal(t, MigrationCompleted, phases[len(phases)-1])
	assert.ElementsMatch(t, []string{"pike", "perch"}, currents)

	for _, id := range []string{"c1", "c2"} {
		local, err := f.repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alice", local.OwnerID)
		assert.Equal(t, models.SyncStatusSynced, local.SyncStatus)

		_, err = f.docs.Get(ctx, "alice_"+id)
		require.NoError(t, err)
	}

	done, err := f.svc.Completed(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestRun_NothingToMigrate(t *testing.T) {
	f := setupMigration(t)
	ctx := context.Background()

	var phases []MigrationPhase
	res, err := f.svc.Run(ctx, "alice", func(p MigrationProgress) {
		phases = append(phases, p.Phase)
	})
	require.NoError(t, err)
	assert.Zero(t, res.Synced)
	assert.Zero(t, res.Failed)
	assert.Equal(t, []MigrationPhase{MigrationPreparing, MigrationCompleted}, phases)

	done, err := f.svc.Completed(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestRun_SecondRunIsNoOp(t *testing.T) {
	f := setupMigration(t)
	ctx := context.Background()

	orphanCatch(t, f, "c1", "pike")

	_, err := f.svc.Run(ctx, "alice", nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.docs.Len())

	// sign-in gate: Check short-circuits once the marker is set
	pending, done, err := f.svc.Check(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Zero(t, pending)

	// and even a forced re-run finds nothing to adopt
	res, err := f.svc.Run(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Zero(t, res.Synced)
	assert.Equal(t, 1, f.docs.Len(), "no duplicate remote writes")
}

func TestRun_PartialFailureStillCompletes(t *testing.T) {
	f := setupMigration(t)
	ctx := context.Background()

	orphanCatch(t, f, "c1", "pike")
	orphanCatch(t, f, "c2", "perch")
	orphanCatch(t, f, "c3", "trout")

	f.sync.docs = &flakyDocs{Store: f.docs, failSet: map[string]bool{"alice_c2": true}}

	res, err := f.svc.Run(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Synced)
	assert.Equal(t, 1, res.Failed)

	// attempted counts as done: the user is not re-prompted
	done, err := f.svc.Completed(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, done)

	// the failed record stays failed for the regular sweeps to retry
	local, err := f.repo.GetByID(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusFailed, local.SyncStatus)
}

// brokenRepo fails the unmigrated scan, simulating an unusable local store.
type brokenRepo struct {
	catches.Repository
}

func (brokenRepo) GetUnmigrated(ctx context.Context, ownerID string) ([]models.Catch, error) {
	return nil, errors.New("database is locked")
}

func TestRun_WholeFlowErrorDoesNotMarkComplete(t *testing.T) {
	f := setupMigration(t)
	ctx := context.Background()
	f.svc.catches = brokenRepo{Repository: f.repo}

	var phases []MigrationPhase
	var message string
	_, err := f.svc.Run(ctx, "alice", func(p MigrationProgress) {
		phases = append(phases, p.Phase)
		if p.Phase == MigrationError {
			message = p.Message
		}
	})
	require.Error(t, err)
	assert.Equal(t, MigrationError, phases[len(phases)-1])
	assert.Contains(t, message, "database is locked")

	// eligible for retry on the next sign-in
	done, checkErr := f.svc.Completed(ctx, "alice")
	require.NoError(t, checkErr)
	assert.False(t, done)
}

func TestSkip(t *testing.T) {
	f := setupMigration(t)
	ctx := context.Background()

	orphanCatch(t, f, "c1", "pike")

	require.NoError(t, f.svc.Skip(ctx, "alice"))

	pending, done, err := f.svc.Check(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Zero(t, pending)
	assert.Zero(t, f.docs.Len(), "skip must not upload anything")
}
