// Package cart はショッピングカートのドメインロジックを提供する。
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/bookstand/internal/metrics"
	"github.com/hitoshi/bookstand/internal/model"
	"github.com/hitoshi/bookstand/internal/repository"
)

// Service はカートのビジネスロジックを提供する。
// 操作対象のカートは常に認証済みユーザー自身のもの。
type Service struct {
	cartRepo  repository.CartRepository
	bookRepo  repository.BookRepository
	collector metrics.MetricsCollector
}

// NewService はServiceを生成する。collectorはnil許容。
func NewService(cartRepo repository.CartRepository, bookRepo repository.BookRepository, collector metrics.MetricsCollector) *Service {
	return &Service{
		cartRepo:  cartRepo,
		bookRepo:  bookRepo,
		collector: collector,
	}
}

// ListItems はユーザーのカート一覧を書籍情報付きで返す。
func (s *Service) ListItems(ctx context.Context, userID int64) ([]model.CartItemWithBook, error) {
	items, err := s.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

// AddItem は書籍をユーザーのカートに追加する。
// 書籍が存在しない場合はNotFound、既にカートにある場合は重複エラー。
// 重複の最終判定は(user_id, book_id)の一意性制約で行われる。
func (s *Service) AddItem(ctx context.Context, userID, bookID int64) (*model.CartItem, error) {
	b, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	if b == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}

	existing, err := s.cartRepo.FindByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to check cart: %w", err)
	}
	if existing != nil {
		return nil, model.NewCartDuplicateError()
	}

	item := &model.CartItem{
		UserID: userID,
		BookID: bookID,
	}

	if err := s.cartRepo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewCartDuplicateError()
		}
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordCartItemsAdded(1)
	}

	slog.Info("cart item added",
		slog.Int64("user_id", userID),
		slog.Int64("book_id", bookID),
	)

	return item, nil
}

// RemoveItem は書籍をユーザーのカートから削除する。
// カートに入っていない場合はNotFoundエラー。
func (s *Service) RemoveItem(ctx context.Context, userID, bookID int64) error {
	deleted, err := s.cartRepo.Delete(ctx, userID, bookID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if deleted == 0 {
		return model.NewCartItemNotFoundError()
	}

	slog.Info("cart item removed",
		slog.Int64("user_id", userID),
		slog.Int64("book_id", bookID),
	)

	return nil
}

// Clear はユーザーのカートを空にする。削除件数を返す。
func (s *Service) Clear(ctx context.Context, userID int64) (int64, error) {
	deleted, err := s.cartRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	slog.Info("cart cleared",
		slog.Int64("user_id", userID),
		slog.Int64("deleted", deleted),
	)

	return deleted, nil
}
