package db

import (
	"context"
	"database/sql"
	"fmt"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		title            TEXT    NOT NULL,
		category         TEXT    NOT NULL,
		isbn             TEXT    NOT NULL,
		total_copies     INTEGER NOT NULL DEFAULT 0,
		available_copies INTEGER NOT NULL DEFAULT 0,
		published_date   DATE,
		version          INTEGER NOT NULL DEFAULT 1,
		CHECK (available_copies >= 0 AND available_copies <= total_copies)
	);`,
	`CREATE TABLE IF NOT EXISTS book_authors (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		book_id    INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		first_name TEXT    NOT NULL,
		last_name  TEXT    NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_book_authors_book ON book_authors(book_id);`,
	`CREATE TABLE IF NOT EXISTS members (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		member_id TEXT    NOT NULL UNIQUE,
		name      TEXT    NOT NULL,
		email     TEXT    NOT NULL,
		joined    DATE,
		active    BOOLEAN NOT NULL DEFAULT 1
	);`,
	`CREATE TABLE IF NOT EXISTS loans (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		loan_ulid     TEXT    NOT NULL UNIQUE,
		member_id     INTEGER NOT NULL,
		book_id       INTEGER NOT NULL,
		loan_date     DATE    NOT NULL,
		due_date      DATE    NOT NULL,
		returned_date DATE,
		status        TEXT    NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_loans_member ON loans(member_id);`,
}

// loans keep plain id columns: a loan outlives the book or member it names.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id               BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title            VARCHAR(255) NOT NULL,
		category         VARCHAR(32)  NOT NULL,
		isbn             VARCHAR(20)  NOT NULL,
		total_copies     INT          NOT NULL DEFAULT 0,
		available_copies INT          NOT NULL DEFAULT 0,
		published_date   DATE         NULL,
		version          BIGINT       NOT NULL DEFAULT 1,
		CONSTRAINT chk_books_copies CHECK (available_copies >= 0 AND available_copies <= total_copies)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS book_authors (
		id         BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		book_id    BIGINT       NOT NULL,
		position   INT          NOT NULL,
		first_name VARCHAR(255) NOT NULL,
		last_name  VARCHAR(255) NOT NULL,
		INDEX idx_book_authors_book (book_id),
		CONSTRAINT fk_book_authors_book FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS members (
		id        BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		member_id VARCHAR(64)  NOT NULL,
		name      VARCHAR(255) NOT NULL,
		email     VARCHAR(255) NOT NULL,
		joined    DATE         NULL,
		active    BOOLEAN      NOT NULL DEFAULT TRUE,
		UNIQUE KEY uq_members_member_id (member_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS loans (
		id            BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
		loan_ulid     CHAR(26)    NOT NULL,
		member_id     BIGINT      NOT NULL,
		book_id       BIGINT      NOT NULL,
		loan_date     DATE        NOT NULL,
		due_date      DATE        NOT NULL,
		returned_date DATE        NULL,
		status        VARCHAR(16) NOT NULL,
		UNIQUE KEY uq_loans_ulid (loan_ulid),
		INDEX idx_loans_member (member_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the schema for driver. Every statement is idempotent.
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverMySQL:
		stmts = mysqlSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	return RunInTx(ctx, conn, nil, func(ctx context.Context, tx DBTX) error {
		for i, s := range stmts {
			if _, err := tx.ExecContext(ctx, s); err != nil {
				return fmt.Errorf("migration step %d: %w", i+1, err)
			}
		}
		return nil
	})
}
