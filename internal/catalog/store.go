package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// DatabaseFileName is the SQLite file created inside every catalog directory.
const DatabaseFileName = "tracksync.db"

// lockFileName guards each catalog against concurrent writers.
const lockFileName = "tracksync.lock"

const schemaVersion = "1.0"

// ErrRoleMismatch is returned when a catalog is reopened with a different
// source/destination role than it was created with. The role is immutable.
var ErrRoleMismatch = errors.New("catalog role mismatch")

// ErrCatalogLocked is returned when another process holds the catalog lock.
var ErrCatalogLocked = errors.New("catalog is locked by another process")

// Store is a persistent, role-tagged catalog of tracks backed by SQLite.
//
// Every operation acquires a connection and commits independently; no call
// spans a multi-statement transaction. Crash safety across a file copy is
// therefore the responsibility of the Copying/Copied state marker written
// by the pipeline, not of the store.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to the catalog stored in dir, creating and stamping a new
// one when none exists. The isDestination role is fixed at creation time;
// reopening with the other role fails with ErrRoleMismatch.
func Open(ctx context.Context, dir string, isDestination bool) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path %s is not a directory", dir)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrCatalogLocked, dir)
	}

	dbPath := filepath.Join(dir, DatabaseFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.initState(ctx, isDestination); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database connection and the catalog lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the location of the underlying database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initState(ctx context.Context, isDestination bool) error {
	var stored bool
	err := s.db.QueryRowContext(ctx, `SELECT is_destination FROM state LIMIT 1`).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(
			ctx,
			`INSERT INTO state (version, is_destination) VALUES (?, ?)`,
			schemaVersion,
			boolToInt(isDestination),
		); err != nil {
			return fmt.Errorf("initialize catalog state: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read catalog state: %w", err)
	}
	if stored != isDestination {
		return fmt.Errorf("%w: stored as destination=%t, opened as destination=%t", ErrRoleMismatch, stored, isDestination)
	}
	return nil
}

// IsDestination reports the role the catalog was stamped with at creation.
func (s *Store) IsDestination(ctx context.Context) (bool, error) {
	var dest bool
	if err := s.db.QueryRowContext(ctx, `SELECT is_destination FROM state LIMIT 1`).Scan(&dest); err != nil {
		return false, fmt.Errorf("read catalog role: %w", err)
	}
	return dest, nil
}

// UpsertTrack inserts or replaces a track keyed by its content identity.
// The store-local surrogate id of an existing row is preserved.
func (s *Store) UpsertTrack(ctx context.Context, track Track) error {
	if track.TrackID == "" {
		return errors.New("track id is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tracks (
            track_id, title, artist, album, number, file_path,
            disc_number, disc_total, file_state, extension, added_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (track_id) DO UPDATE SET
            title = excluded.title,
            artist = excluded.artist,
            album = excluded.album,
            number = excluded.number,
            file_path = excluded.file_path,
            disc_number = excluded.disc_number,
            disc_total = excluded.disc_total,
            file_state = excluded.file_state,
            extension = excluded.extension,
            updated_at = excluded.updated_at`,
		track.TrackID,
		track.Title,
		track.Artist,
		track.Album,
		track.Number,
		track.FilePath,
		track.DiscNumber,
		track.DiscTotal,
		int64(track.FileState),
		track.Extension,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert track %s: %w", track.TrackID, err)
	}
	return nil
}

// DeleteTrack removes a row by its store-local id.
func (s *Store) DeleteTrack(ctx context.Context, localID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, localID); err != nil {
		return fmt.Errorf("delete track %d: %w", localID, err)
	}
	return nil
}

// Exists reports whether a row already records the given file path.
// Scanning uses it to skip re-adding unchanged paths.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM tracks WHERE file_path = ? LIMIT 1`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query track path: %w", err)
	}
	return true, nil
}

// TracksByState returns all tracks currently in the given lifecycle state.
func (s *Store) TracksByState(ctx context.Context, state FileState) ([]Track, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE file_state = ? ORDER BY id`,
		int64(state),
	)
	if err != nil {
		return nil, fmt.Errorf("query tracks by state: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// TrackIDsByState returns the identity set for one lifecycle state.
func (s *Store) TrackIDsByState(ctx context.Context, state FileState) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id FROM tracks WHERE file_state = ?`, int64(state))
	if err != nil {
		return nil, fmt.Errorf("query track ids by state: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TracksByIDs resolves a set of track identities to full rows. Unknown ids
// are silently absent from the result.
func (s *Store) TracksByIDs(ctx context.Context, ids []string) ([]Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE track_id IN (`+placeholders+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query tracks by ids: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// ListTracks returns every track in the catalog.
func (s *Store) ListTracks(ctx context.Context) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+trackColumns+` FROM tracks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// TrackPathsUnder returns the recorded file paths beneath a directory.
func (s *Store) TrackPathsUnder(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.TrimRight(dir, string(filepath.Separator))
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT file_path FROM tracks WHERE file_path LIKE ? ESCAPE '\'`,
		escapeLike(prefix)+string(filepath.Separator)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("query track paths under %s: %w", dir, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// RecordDirectory remembers a scanned source root so update runs can
// re-derive it without the caller re-specifying.
func (s *Store) RecordDirectory(ctx context.Context, dir string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO directories (directory) VALUES (?)`, dir); err != nil {
		return fmt.Errorf("record directory %s: %w", dir, err)
	}
	return nil
}

// ListDirectories returns the previously recorded scan roots.
func (s *Store) ListDirectories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT directory FROM directories ORDER BY directory`)
	if err != nil {
		return nil, fmt.Errorf("list directories: %w", err)
	}
	defer rows.Close()

	var dirs []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, rows.Err()
}

// GetFilter returns the stored filter script text, if any.
func (s *Store) GetFilter(ctx context.Context) (string, bool, error) {
	var filter sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT filter FROM state LIMIT 1`).Scan(&filter); err != nil {
		return "", false, fmt.Errorf("read filter: %w", err)
	}
	if !filter.Valid || strings.TrimSpace(filter.String) == "" {
		return "", false, nil
	}
	return filter.String, true, nil
}

// SetFilter stores the filter script text. Callers validate the script
// before persisting it.
func (s *Store) SetFilter(ctx context.Context, text string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE state SET filter = ?`, text); err != nil {
		return fmt.Errorf("store filter: %w", err)
	}
	return nil
}

// FuzzyMatchAlbums runs a multi-keyword AND full-text query against the
// album index, returning one representative row per distinct album name.
func (s *Store) FuzzyMatchAlbums(ctx context.Context, keywords []string) ([]AlbumMatch, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		// Quote each keyword so FTS operator characters are inert.
		quoted = append(quoted, `"`+strings.ReplaceAll(kw, `"`, `""`)+`"`)
	}
	if len(quoted) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT track_id, album, extension FROM track_fts WHERE album MATCH ? GROUP BY album`,
		strings.Join(quoted, " "),
	)
	if err != nil {
		return nil, fmt.Errorf("fuzzy match albums: %w", err)
	}
	defer rows.Close()

	var matches []AlbumMatch
	for rows.Next() {
		var m AlbumMatch
		if err := rows.Scan(&m.TrackID, &m.Album, &m.Extension); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Albums returns the derived album rows: one per (artist, title, format).
func (s *Store) Albums(ctx context.Context) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT artist, title, format FROM albums ORDER BY artist, title`)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		var a Album
		if err := rows.Scan(&a.Artist, &a.Title, &a.Format); err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

// DuplicateAlbumGroups returns (artist, title) keys stored in two or more
// format rows. These are guaranteed duplicates regardless of any fuzzy score.
func (s *Store) DuplicateAlbumGroups(ctx context.Context) ([]AlbumGroup, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT artist, title, COUNT(*) AS count FROM albums
         GROUP BY artist, title
         HAVING count > 1
         ORDER BY artist, title`,
	)
	if err != nil {
		return nil, fmt.Errorf("query duplicate albums: %w", err)
	}
	defer rows.Close()

	var groups []AlbumGroup
	for rows.Next() {
		var g AlbumGroup
		if err := rows.Scan(&g.Artist, &g.Title, &g.Count); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AlbumFormatPaths returns one (directory, extension) pair per stored
// format of the given album.
func (s *Store) AlbumFormatPaths(ctx context.Context, artist, title string) ([]FormatPath, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT file_path, extension FROM tracks
         WHERE artist = ? AND album = ?
         GROUP BY extension`,
		artist,
		title,
	)
	if err != nil {
		return nil, fmt.Errorf("query album paths: %w", err)
	}
	defer rows.Close()

	var paths []FormatPath
	for rows.Next() {
		var filePath, ext string
		if err := rows.Scan(&filePath, &ext); err != nil {
			return nil, err
		}
		paths = append(paths, FormatPath{Directory: filepath.Dir(filePath), Extension: ext})
	}
	return paths, rows.Err()
}

const trackColumns = "id, track_id, title, artist, album, number, file_path, disc_number, disc_total, file_state, extension, added_at, updated_at"

func collectTracks(rows *sql.Rows) ([]Track, error) {
	var tracks []Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (Track, error) {
	var (
		track     Track
		stateCode int64
		addedRaw  string
		updatedRaw string
	)
	if err := scanner.Scan(
		&track.LocalID,
		&track.TrackID,
		&track.Title,
		&track.Artist,
		&track.Album,
		&track.Number,
		&track.FilePath,
		&track.DiscNumber,
		&track.DiscTotal,
		&stateCode,
		&track.Extension,
		&addedRaw,
		&updatedRaw,
	); err != nil {
		return Track{}, fmt.Errorf("scan track: %w", err)
	}
	track.FileState = ParseFileState(stateCode)
	if added, err := time.Parse(time.RFC3339Nano, addedRaw); err == nil {
		track.AddedAt = added
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		track.UpdatedAt = updated
	}
	return track, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
