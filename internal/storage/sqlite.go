package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS remotes (
	name       TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	is_default INTEGER NOT NULL DEFAULT 0,
	username   TEXT NOT NULL DEFAULT '',
	token      TEXT NOT NULL DEFAULT ''
)`

// SQLiteStore keeps the preferences tree in a single remotes table, one row
// per remote with its credentials inlined.
type SQLiteStore struct {
	path   string
	db     *sql.DB
	sealer *Sealer
}

func OpenSQLiteStore(path string, sealer *Sealer) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	logger.LogFileOpen(path)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		logger.LogError("SQLITE_SCHEMA", path, err)
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil && !errors.Is(err, os.ErrNotExist) {
		db.Close()
		return nil, fmt.Errorf("chmod db path: %w", err)
	}

	return &SQLiteStore{path: path, db: db, sealer: sealer}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) RemoteNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM remotes ORDER BY name`)
	if err != nil {
		logger.LogError("SQLITE_LIST", s.path, err)
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan remote: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Remote(name string) (*domain.Remote, error) {
	var (
		url       string
		isDefault int
	)
	err := s.db.QueryRow(`SELECT url, is_default FROM remotes WHERE name = ?`, name).Scan(&url, &isDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		logger.LogError("SQLITE_GET_REMOTE", name, err)
		return nil, fmt.Errorf("get remote %q: %w", name, err)
	}
	return &domain.Remote{Name: name, URL: url, IsDefault: isDefault != 0}, nil
}

func (s *SQLiteStore) Credentials(name string) (*domain.RemoteCredentials, error) {
	var username, token string
	err := s.db.QueryRow(`SELECT username, token FROM remotes WHERE name = ?`, name).Scan(&username, &token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		logger.LogError("SQLITE_GET_CREDENTIALS", name, err)
		return nil, fmt.Errorf("get credentials %q: %w", name, err)
	}

	token, err = s.sealer.Open(token)
	if err != nil {
		logger.LogError("OPEN_TOKEN", name, err)
		return nil, fmt.Errorf("remote %q: %w", name, err)
	}
	return &domain.RemoteCredentials{Username: username, Token: token}, nil
}

func (s *SQLiteStore) PutRemote(remote domain.Remote) error {
	_, err := s.db.Exec(`
INSERT INTO remotes(name, url, is_default) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	url=excluded.url,
	is_default=excluded.is_default
`, remote.Name, remote.URL, boolToInt(remote.IsDefault))
	if err != nil {
		logger.LogError("SQLITE_PUT_REMOTE", remote.Name, err)
		return fmt.Errorf("put remote %q: %w", remote.Name, err)
	}
	logger.Log("Stored remote: %s [%s]", remote.Name, remote.URL)
	return nil
}

func (s *SQLiteStore) MergeCredentials(name string, creds domain.RemoteCredentials) error {
	token, err := s.sealer.Seal(creds.Token)
	if err != nil {
		logger.LogError("SEAL_TOKEN", name, err)
		return fmt.Errorf("remote %q: %w", name, err)
	}

	result, err := s.db.Exec(`
UPDATE remotes SET
	username = CASE WHEN ? = '' THEN username ELSE ? END,
	token    = CASE WHEN ? = '' THEN token ELSE ? END
WHERE name = ?
`, creds.Username, creds.Username, token, token, name)
	if err != nil {
		logger.LogError("SQLITE_MERGE_CREDENTIALS", name, err)
		return fmt.Errorf("merge credentials %q: %w", name, err)
	}
	if err := requireRow(result, name); err != nil {
		return err
	}
	logger.Log("Merged credentials for remote %s", name)
	return nil
}

func (s *SQLiteStore) DeleteRemote(name string) error {
	result, err := s.db.Exec(`DELETE FROM remotes WHERE name = ?`, name)
	if err != nil {
		logger.LogError("SQLITE_DELETE_REMOTE", name, err)
		return fmt.Errorf("delete remote %q: %w", name, err)
	}
	if err := requireRow(result, name); err != nil {
		return err
	}
	logger.Log("Deleted remote: %s", name)
	return nil
}

func (s *SQLiteStore) SetDefault(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin set default: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM remotes WHERE name = ?`, name).Scan(&exists); err != nil {
		return fmt.Errorf("set default %q: %w", name, err)
	}
	if exists == 0 {
		return fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
	}
	if _, err := tx.Exec(`UPDATE remotes SET is_default = CASE WHEN name = ? THEN 1 ELSE 0 END`, name); err != nil {
		logger.LogError("SQLITE_SET_DEFAULT", name, err)
		return fmt.Errorf("set default %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set default: %w", err)
	}
	logger.Log("Default remote set to %s", name)
	return nil
}

func requireRow(result sql.Result, name string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remote %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
