package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MaxAutoCheckpoints is how many automatic snapshots survive cleanup.
const MaxAutoCheckpoints = 5

// CheckpointManager snapshots the ledger database to sibling files and
// restores them.
type CheckpointManager struct {
	db             *sql.DB
	now            func() time.Time
	dbPath         string
	checkpointsDir string
}

// CheckpointMetadata is persisted next to each snapshot as JSON.
type CheckpointMetadata struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// CheckpointInfo is the listing view of a checkpoint.
type CheckpointInfo struct {
	CreatedAt     time.Time
	ID            string
	Description   string
	FileSize      int64
	Persons       int
	Accounts      int
	Categories    int
	Transactions  int
	SchemaVersion int
	IsAuto        bool
}

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidCheckpointID = errors.New("invalid checkpoint id: cannot contain path separators")
)

// ledgerTables are counted into every checkpoint's metadata.
var ledgerTables = map[string]string{
	"persons":      "SELECT COUNT(*) FROM persons",
	"accounts":     "SELECT COUNT(*) FROM accounts",
	"categories":   "SELECT COUNT(*) FROM categories",
	"transactions": "SELECT COUNT(*) FROM transactions",
}

// NewCheckpointManager creates a manager that keeps snapshots in a
// "checkpoints" directory beside dbPath.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	checkpointsDir := filepath.Join(filepath.Dir(absPath), "checkpoints")

	if err := os.MkdirAll(checkpointsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		db:             db,
		dbPath:         absPath,
		checkpointsDir: checkpointsDir,
		now:            time.Now,
	}, nil
}

// Dir returns the directory holding checkpoint files.
func (cm *CheckpointManager) Dir() string {
	return cm.checkpointsDir
}

// Create snapshots the database under tag. An empty tag is generated from
// the current time.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	return cm.create(ctx, tag, description, false)
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*CheckpointInfo, error) {
	if tag == "" {
		tag = "checkpoint-" + cm.now().Format("2006-01-02-150405")
	}
	if err := validateCheckpointID(tag); err != nil {
		return nil, err
	}

	checkpointPath := cm.snapshotPath(tag)
	if _, err := os.Stat(checkpointPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	var schemaVersion int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	rowCounts := cm.collectRowCounts(ctx)

	if err := cm.backupDatabase(ctx, checkpointPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	stat, err := os.Stat(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	metadata := CheckpointMetadata{
		ID:            tag,
		CreatedAt:     cm.now().UTC(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     rowCounts,
		SchemaVersion: schemaVersion,
		IsAuto:        auto,
	}

	if err := saveMetadata(cm.metadataPath(tag), metadata); err != nil {
		if rmErr := os.Remove(checkpointPath); rmErr != nil {
			slog.Error("failed to remove checkpoint file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	// The sidecar file is authoritative; the table row is an index.
	if err := cm.storeMetadataInDB(ctx, metadata); err != nil {
		slog.Warn("failed to store checkpoint metadata in database", "error", err)
	}

	slog.Info("created checkpoint",
		"id", tag,
		"auto", auto,
		"transactions", rowCounts["transactions"])

	info := metadata.info()
	return &info, nil
}

// List returns every checkpoint, newest first.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]CheckpointInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		metadata, err := loadMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, metadata.info())
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})

	return checkpoints, nil
}

// Info returns one checkpoint's listing view.
func (cm *CheckpointManager) Info(_ context.Context, checkpointID string) (*CheckpointInfo, error) {
	if err := validateCheckpointID(checkpointID); err != nil {
		return nil, err
	}

	metadata, err := loadMetadata(cm.metadataPath(checkpointID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, checkpointID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}

	info := metadata.info()
	return &info, nil
}

// Restore replaces the live database file with a checkpoint. It closes the
// manager's connection; the owning storage must be reopened afterwards.
func (cm *CheckpointManager) Restore(_ context.Context, checkpointID string) error {
	if err := validateCheckpointID(checkpointID); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(checkpointID)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, checkpointID)
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if _, err := loadMetadata(cm.metadataPath(checkpointID)); err != nil {
		return fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}

	if err := verifyIntegrity(checkpointPath); err != nil {
		slog.Error("checkpoint failed integrity check", "id", checkpointID, "error", err)
		return ErrCheckpointCorrupted
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backupPath := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	if err := copyFile(checkpointPath, cm.dbPath); err != nil {
		if restoreErr := copyFile(backupPath, cm.dbPath); restoreErr != nil {
			slog.Error("failed to restore backup after checkpoint restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	// Stale WAL files would be replayed over the restored snapshot.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove sqlite sidecar file", "file", cm.dbPath+suffix, "error", err)
		}
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}

	slog.Info("restored checkpoint", "id", checkpointID)
	return nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(ctx context.Context, checkpointID string) error {
	if err := validateCheckpointID(checkpointID); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(checkpointID)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, checkpointID)
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := os.Remove(checkpointPath); err != nil {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}

	metadataPath := cm.metadataPath(checkpointID)
	if err := os.Remove(metadataPath); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "path", metadataPath)
	}

	if _, err := cm.db.ExecContext(ctx, "DELETE FROM checkpoint_metadata WHERE id = ?", checkpointID); err != nil {
		slog.Debug("failed to remove checkpoint metadata from database", "error", err, "id", checkpointID)
	}

	return nil
}

// AutoCheckpoint snapshots the database before a bulk operation named by
// prefix and prunes automatic snapshots beyond MaxAutoCheckpoints.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, prefix string) (*CheckpointInfo, error) {
	tag := fmt.Sprintf("auto-%s-%s", prefix, cm.now().Format("2006-01-02-150405.000"))
	info, err := cm.create(ctx, tag, "Automatic checkpoint before "+prefix, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := cm.cleanupOldAutoCheckpoints(ctx); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}

	return info, nil
}

func (cm *CheckpointManager) cleanupOldAutoCheckpoints(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	autoCount := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		autoCount++
		if autoCount <= MaxAutoCheckpoints {
			continue
		}
		if err := cm.Delete(ctx, cp.ID); err != nil {
			slog.Debug("failed to delete old auto-checkpoint", "error", err, "checkpoint", cp.ID)
		}
	}

	return nil
}

func (cm *CheckpointManager) snapshotPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".db")
}

func (cm *CheckpointManager) metadataPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".meta.json")
}

func (cm *CheckpointManager) collectRowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(ledgerTables))
	for table, query := range ledgerTables {
		var count int
		if err := cm.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			slog.Debug("failed to count rows", "table", table, "error", err)
		}
		counts[table] = count
	}
	return counts
}

func (cm *CheckpointManager) backupDatabase(ctx context.Context, destPath string) error {
	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	if strings.ContainsAny(destPath, `'";`) || !filepath.IsAbs(destPath) {
		return fmt.Errorf("invalid destination path %q", destPath)
	}

	// #nosec G201 - destPath is validated above
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		slog.Debug("VACUUM INTO failed, falling back to file copy", "error", err)
		return copyFile(cm.dbPath, destPath)
	}
	return nil
}

func (cm *CheckpointManager) storeMetadataInDB(ctx context.Context, metadata CheckpointMetadata) error {
	rowCounts, err := json.Marshal(metadata.RowCounts)
	if err != nil {
		return err
	}

	_, err = cm.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoint_metadata
		(id, created_at, description, file_size, row_counts, schema_version, is_auto)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		metadata.ID,
		formatTime(metadata.CreatedAt),
		metadata.Description,
		metadata.FileSize,
		string(rowCounts),
		metadata.SchemaVersion,
		metadata.IsAuto,
	)
	return err
}

func (m *CheckpointMetadata) info() CheckpointInfo {
	return CheckpointInfo{
		ID:            m.ID,
		CreatedAt:     m.CreatedAt,
		Description:   m.Description,
		FileSize:      m.FileSize,
		Persons:       m.RowCounts["persons"],
		Accounts:      m.RowCounts["accounts"],
		Categories:    m.RowCounts["categories"],
		Transactions:  m.RowCounts["transactions"],
		SchemaVersion: m.SchemaVersion,
		IsAuto:        m.IsAuto,
	}
}

func validateCheckpointID(id string) error {
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return ErrInvalidCheckpointID
	}
	return nil
}

func saveMetadata(path string, metadata CheckpointMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func loadMetadata(path string) (*CheckpointMetadata, error) {
	// #nosec G304 - path is built from a validated checkpoint id
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var metadata CheckpointMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close checkpoint database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - both paths come from the manager's own directories
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	tmpDst := dst + ".tmp"
	// #nosec G304
	destination, err := os.Create(filepath.Clean(tmpDst))
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}

	return os.Rename(tmpDst, dst)
}
