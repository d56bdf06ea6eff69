// Package model はドメインモデルを定義する。
package model

import "time"

// Book はカタログ上の書籍を表す。
// タイトルはカタログ全体で一意。
type Book struct {
	ID          int64
	Title       string
	Author      string
	Description string // サニタイズ済み
	Year        int
	CoverURL    string
	Category    BookCategory
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookCategory は書籍の陳列セクションを表す。
type BookCategory string

const (
	// CategoryTerror はホラーセクション。
	CategoryTerror BookCategory = "terror"
	// CategoryAuthor は注目作家セクション。
	CategoryAuthor BookCategory = "author"
	// CategoryKids は児童書セクション。
	CategoryKids BookCategory = "kids"
	// CategoryNew は新着セクション。
	CategoryNew BookCategory = "new"
	// CategoryClub は読書クラブ選定セクション。
	CategoryClub BookCategory = "club"
)

// IsValid はBookCategoryが定義済みの値かどうかを判定する。
// 空文字はセクション未指定として許容する。
func (c BookCategory) IsValid() bool {
	switch c {
	case "", CategoryTerror, CategoryAuthor, CategoryKids, CategoryNew, CategoryClub:
		return true
	default:
		return false
	}
}

// CartItem はユーザーのカートに入っている書籍を表す。
// (user_id, book_id) の組はカート内で一意。
type CartItem struct {
	ID        int64
	UserID    int64
	BookID    int64
	CreatedAt time.Time
}

// CartItemWithBook はカートアイテムと書籍情報を結合したモデル。
// booksテーブルとJOINして取得される。
type CartItemWithBook struct {
	CartItem
	Book Book
}
