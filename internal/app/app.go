// Package app wires the fishlog CLI together: local storage, remote stores,
// the sync services and the interactive command loop.
package app

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"google.golang.org/api/option"

	"github.com/dmitrijs2005/fishlog/internal/common"
	"github.com/dmitrijs2005/fishlog/internal/config"
	"github.com/dmitrijs2005/fishlog/internal/identity"
	"github.com/dmitrijs2005/fishlog/internal/localdb"
	"github.com/dmitrijs2005/fishlog/internal/logging"
	"github.com/dmitrijs2005/fishlog/internal/netmon"
	"github.com/dmitrijs2005/fishlog/internal/remote/blobstore"
	"github.com/dmitrijs2005/fishlog/internal/remote/docstore"
	"github.com/dmitrijs2005/fishlog/internal/repositories/catches"
	"github.com/dmitrijs2005/fishlog/internal/repositories/metadata"
	"github.com/dmitrijs2005/fishlog/internal/services"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	catches catches.Repository

	syncService      *services.SyncService
	migrationService *services.MigrationService

	identity identity.Provider
	monitor  *netmon.Monitor

	reader *bufio.Reader
	out    io.Writer

	// userID is empty while signed out; commands that need the cloud check it.
	userID string
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := localdb.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	catchRepo := catches.NewSQLiteRepository(db)
	metaRepo := metadata.NewSQLiteRepository(db)

	docs, err := newDocStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	syncSvc := services.NewSyncService(catchRepo, docs, blobs, log)
	migrationSvc := services.NewMigrationService(catchRepo, metaRepo, syncSvc, log)

	monitor := netmon.NewMonitor(netmon.NewHTTPProber(cfg.OnlineCheckURL), cfg.OnlineCheckInterval, log)

	return &App{
		config:           cfg,
		log:              log,
		db:               db,
		catches:          catchRepo,
		syncService:      syncSvc,
		migrationService: migrationSvc,
		identity:         identity.NewTokenFileProvider(cfg.TokenPath),
		monitor:          monitor,
		reader:           bufio.NewReader(os.Stdin),
		out:              os.Stdout,
	}, nil
}

// newDocStore picks Firestore when a project is configured; without one the
// app runs local-only against an in-memory store.
func newDocStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	if cfg.FirestoreProjectID == "" {
		return docstore.NewMemoryStore(), nil
	}

	var opts []option.ClientOption
	if cfg.FirestoreCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentialsFile))
	}

	store, err := docstore.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCollection, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init firestore: %w", err)
	}
	return store, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	if cfg.S3AccessKey == "" {
		return blobstore.NewMemoryStore(), nil
	}

	store, err := blobstore.NewS3Store(ctx, blobstore.S3Options{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init blob storage: %w", err)
	}
	return store, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) isSignedIn() bool {
	return a.userID != ""
}

func (a *App) getStatus() string {
	s := ""
	if a.userID != "" {
		s = a.userID + " "
	}
	if a.monitor.Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// Run resolves the identity, starts the background sweeps and hands control
// to the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.signIn(ctx)
	a.startBackgroundSync(ctx)

	if a.isSignedIn() {
		a.promptMigration(ctx)
	}

	fmt.Fprintln(a.out, "Welcome to fishlog (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin), a.out)
}

func (a *App) signIn(ctx context.Context) {
	userID, err := a.identity.CurrentUserID(ctx)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			fmt.Fprintln(a.out, "No identity token found, running in offline-only mode.")
		} else {
			a.log.Warn(ctx, "failed to resolve identity", "error", err)
			fmt.Fprintln(a.out, "Could not read the identity token, running in offline-only mode.")
		}
		return
	}
	a.userID = userID
}
