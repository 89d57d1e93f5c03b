package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// BoardRecord 本地攻略板库中的一条记录。
// Code holds the full bracketed share code; the board itself is not
// stored, anyone with the code can reconstruct it.
type BoardRecord struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a slug has no stored board.
var ErrNotFound = errors.New("sqlite: board not found")

// InitializeDB 打开（必要时创建）攻略板数据库。
func InitializeDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	createTableSQL := `
    CREATE TABLE IF NOT EXISTS boards (
        slug TEXT NOT NULL PRIMARY KEY,
        name TEXT NOT NULL,
        code TEXT NOT NULL,
        created_at TIMESTAMP NOT NULL
    );`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating boards table: %w", err)
	}
	return db, nil
}

// SaveBoard 保存一条记录，slug 冲突时覆盖旧码。
func SaveBoard(db *sql.DB, rec *BoardRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		"INSERT OR REPLACE INTO boards (slug, name, code, created_at) VALUES (?, ?, ?, ?)",
		rec.Slug, rec.Name, rec.Code, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving board: %w", err)
	}
	return nil
}

// GetBoard 按 slug 查询。
func GetBoard(db *sql.DB, slug string) (*BoardRecord, error) {
	rec := &BoardRecord{}
	err := db.QueryRow(
		"SELECT slug, name, code, created_at FROM boards WHERE slug = ?", slug,
	).Scan(&rec.Slug, &rec.Name, &rec.Code, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying board: %w", err)
	}
	return rec, nil
}

// ListBoards 按保存时间倒序列出最近的记录。
func ListBoards(db *sql.DB, limit int) ([]BoardRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := db.Query(
		"SELECT slug, name, code, created_at FROM boards ORDER BY created_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing boards: %w", err)
	}
	defer rows.Close()

	var records []BoardRecord
	for rows.Next() {
		var rec BoardRecord
		if err := rows.Scan(&rec.Slug, &rec.Name, &rec.Code, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning board row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating board rows: %w", err)
	}
	return records, nil
}

// DeleteBoard 删除一条记录，不存在时返回 ErrNotFound。
func DeleteBoard(db *sql.DB, slug string) error {
	res, err := db.Exec("DELETE FROM boards WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("error deleting board: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting board: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
