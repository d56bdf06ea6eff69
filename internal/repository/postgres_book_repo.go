package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bookstand/internal/model"
)

// PostgresBookRepo はPostgreSQLを使用した書籍リポジトリ。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

const bookColumns = `id, title, author, description, year, cover_url, category, created_at, updated_at`

// scanBook は1行分の書籍レコードをスキャンする。
func scanBook(row interface{ Scan(...any) error }) (*model.Book, error) {
	book := &model.Book{}
	var year sql.NullInt64
	err := row.Scan(
		&book.ID, &book.Title, &book.Author, &book.Description,
		&year, &book.CoverURL, &book.Category, &book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if year.Valid {
		book.Year = int(year.Int64)
	}
	return book, nil
}

// yearParam はYearのゼロ値をNULLとして保存するための変換。
func yearParam(year int) sql.NullInt64 {
	if year == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(year), Valid: true}
}

// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	book, err := scanBook(r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}
	return book, nil
}

// FindByTitle は指定タイトルの書籍を取得する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByTitle(ctx context.Context, title string) (*model.Book, error) {
	book, err := scanBook(r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE title = $1`,
		title,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book by title: %w", err)
	}
	return book, nil
}

// List はカテゴリフィルタとページネーション付きで書籍一覧を返す。
// categoryが空の場合は全カテゴリを対象とする。created_at降順。
func (r *PostgresBookRepo) List(ctx context.Context, category model.BookCategory, offset, limit int) ([]*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*model.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

// Count はカテゴリフィルタに一致する書籍数を返す。
func (r *PostgresBookRepo) Count(ctx context.Context, category model.BookCategory) (int, error) {
	query := `SELECT COUNT(*) FROM books`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// Create は書籍を作成し、採番されたIDをbookに書き戻す。
// タイトルが既に存在する場合はErrDuplicateを返す。
func (r *PostgresBookRepo) Create(ctx context.Context, book *model.Book) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO books (title, author, description, year, cover_url, category)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		book.Title, book.Author, book.Description, yearParam(book.Year), book.CoverURL, book.Category,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

// Update は書籍情報を上書き更新する。
// タイトルが他の書籍と衝突する場合はErrDuplicateを返す。
func (r *PostgresBookRepo) Update(ctx context.Context, book *model.Book) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE books
		 SET title = $1, author = $2, description = $3, year = $4, cover_url = $5, category = $6, updated_at = now()
		 WHERE id = $7
		 RETURNING updated_at`,
		book.Title, book.Author, book.Description, yearParam(book.Year), book.CoverURL, book.Category, book.ID,
	).Scan(&book.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("book not found: %d", book.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	return nil
}

// Delete は指定IDの書籍を削除する。削除件数を返す。
func (r *PostgresBookRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM books WHERE id = $1`,
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete book: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// compile-time interface check
var _ BookRepository = (*PostgresBookRepo)(nil)
