// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/bookstand/internal/model"
)

// ErrDuplicate はストアの一意性制約違反を表す。
// 事前チェックをすり抜けた同時登録もこのエラーで検出される。
// 一意性制約が重複判定の最終的な根拠となる。
var ErrDuplicate = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDと作成日時をuserに書き戻す。
	// ユーザー名が既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error
}

// BookRepository は書籍データの永続化インターフェース。
type BookRepository interface {
	// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Book, error)

	// FindByTitle は指定タイトルの書籍を取得する。見つからない場合はnilを返す。
	FindByTitle(ctx context.Context, title string) (*model.Book, error)

	// List はカテゴリフィルタとページネーション付きで書籍一覧を返す。
	// categoryが空の場合は全カテゴリを対象とする。created_at降順。
	List(ctx context.Context, category model.BookCategory, offset, limit int) ([]*model.Book, error)

	// Count はカテゴリフィルタに一致する書籍数を返す。
	Count(ctx context.Context, category model.BookCategory) (int, error)

	// Create は書籍を作成し、採番されたIDをbookに書き戻す。
	// タイトルが既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, book *model.Book) error

	// Update は書籍情報を上書き更新する。
	// タイトルが他の書籍と衝突する場合はErrDuplicateを返す。
	Update(ctx context.Context, book *model.Book) error

	// Delete は指定IDの書籍を削除する。削除件数を返す。
	Delete(ctx context.Context, id int64) (int64, error)
}

// CartRepository はカートデータの永続化インターフェース。
type CartRepository interface {
	// ListByUserID はユーザーのカート一覧を書籍情報とJOINして返す。
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItemWithBook, error)

	// FindByUserAndBook はユーザーIDと書籍IDでカートアイテムを検索する。
	// 見つからない場合はnilを返す。
	FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.CartItem, error)

	// Create はカートアイテムを作成し、採番されたIDをitemに書き戻す。
	// 同じ(user_id, book_id)の組が既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, item *model.CartItem) error

	// Delete はユーザーIDと書籍IDでカートアイテムを削除する。削除件数を返す。
	Delete(ctx context.Context, userID, bookID int64) (int64, error)

	// DeleteByUserID はユーザーの全カートアイテムを削除する。削除件数を返す。
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
}
