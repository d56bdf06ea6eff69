package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bookstand/internal/model"
)

// PostgresCartRepo はPostgreSQLを使用したカートリポジトリ。
type PostgresCartRepo struct {
	db *sql.DB
}

// NewPostgresCartRepo はPostgresCartRepoを生成する。
func NewPostgresCartRepo(db *sql.DB) *PostgresCartRepo {
	return &PostgresCartRepo{db: db}
}

// ListByUserID はユーザーのカート一覧を書籍情報とJOINして返す。
func (r *PostgresCartRepo) ListByUserID(ctx context.Context, userID int64) ([]model.CartItemWithBook, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.book_id, c.created_at,
		        b.id, b.title, b.author, b.description, b.year, b.cover_url, b.category, b.created_at, b.updated_at
		 FROM cart_items c
		 JOIN books b ON b.id = c.book_id
		 WHERE c.user_id = $1
		 ORDER BY c.created_at DESC, c.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItemWithBook{}
	for rows.Next() {
		var item model.CartItemWithBook
		var year sql.NullInt64
		err := rows.Scan(
			&item.ID, &item.UserID, &item.BookID, &item.CreatedAt,
			&item.Book.ID, &item.Book.Title, &item.Book.Author, &item.Book.Description,
			&year, &item.Book.CoverURL, &item.Book.Category, &item.Book.CreatedAt, &item.Book.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if year.Valid {
			item.Book.Year = int(year.Int64)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}

	return items, nil
}

// FindByUserAndBook はユーザーIDと書籍IDでカートアイテムを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresCartRepo) FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.CartItem, error) {
	item := &model.CartItem{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, created_at FROM cart_items WHERE user_id = $1 AND book_id = $2`,
		userID, bookID,
	).Scan(&item.ID, &item.UserID, &item.BookID, &item.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	return item, nil
}

// Create はカートアイテムを作成し、採番されたIDをitemに書き戻す。
// 同じ(user_id, book_id)の組が既に存在する場合はErrDuplicateを返す。
func (r *PostgresCartRepo) Create(ctx context.Context, item *model.CartItem) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cart_items (user_id, book_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		item.UserID, item.BookID,
	).Scan(&item.ID, &item.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	return nil
}

// Delete はユーザーIDと書籍IDでカートアイテムを削除する。削除件数を返す。
func (r *PostgresCartRepo) Delete(ctx context.Context, userID, bookID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND book_id = $2`,
		userID, bookID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cart item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// DeleteByUserID はユーザーの全カートアイテムを削除する。削除件数を返す。
func (r *PostgresCartRepo) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// compile-time interface check
var _ CartRepository = (*PostgresCartRepo)(nil)
