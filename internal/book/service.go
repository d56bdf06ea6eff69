// Package book は書籍カタログのドメインロジックを提供する。
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/bookstand/internal/covers"
	"github.com/hitoshi/bookstand/internal/model"
	"github.com/hitoshi/bookstand/internal/repository"
	"github.com/hitoshi/bookstand/internal/security"
)

const (
	// defaultPerPage は一覧取得のデフォルト件数。
	defaultPerPage = 20
	// maxPerPage は一覧取得の最大件数。
	maxPerPage = 100
)

// CoverFetcher はカバー画像取得のインターフェース。
type CoverFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Service は書籍カタログのビジネスロジックを提供する。
type Service struct {
	bookRepo   repository.BookRepository
	sanitizer  security.DescriptionSanitizerService
	fetcher    CoverFetcher
	coverStore covers.Store
}

// NewService はServiceを生成する。
func NewService(
	bookRepo repository.BookRepository,
	sanitizer security.DescriptionSanitizerService,
	fetcher CoverFetcher,
	coverStore covers.Store,
) *Service {
	return &Service{
		bookRepo:   bookRepo,
		sanitizer:  sanitizer,
		fetcher:    fetcher,
		coverStore: coverStore,
	}
}

// CreateBookInput は書籍登録の入力。
type CreateBookInput struct {
	Title       string
	Author      string
	Description string
	Year        int
	Category    model.BookCategory
}

// UpdateBookInput は書籍更新の入力。nilフィールドは変更しない部分更新。
type UpdateBookInput struct {
	Title       *string
	Author      *string
	Description *string
	Year        *int
	Category    *model.BookCategory
}

// ListResult は書籍一覧とページネーション情報。
type ListResult struct {
	Books   []*model.Book
	Total   int
	Page    int
	PerPage int
}

// CreateBook は書籍を登録する。
// タイトルの重複はストアの一意性制約で最終判定される。
func (s *Service) CreateBook(ctx context.Context, input CreateBookInput) (*model.Book, error) {
	if input.Title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}
	if input.Author == "" {
		return nil, model.NewValidationError("著者は必須です")
	}
	if !input.Category.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("無効なカテゴリです: %s", input.Category))
	}

	existing, err := s.bookRepo.FindByTitle(ctx, input.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to check book title: %w", err)
	}
	if existing != nil {
		return nil, model.NewBookTitleTakenError(input.Title)
	}

	b := &model.Book{
		Title:       input.Title,
		Author:      input.Author,
		Description: s.sanitizer.Sanitize(input.Description),
		Year:        input.Year,
		Category:    input.Category,
	}

	if err := s.bookRepo.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewBookTitleTakenError(input.Title)
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	slog.Info("book created",
		slog.Int64("book_id", b.ID),
		slog.String("title", b.Title),
	)

	return b, nil
}

// ListBooks はカテゴリフィルタとページネーション付きで書籍一覧を返す。
// pageは1始まり。perPageは1〜maxPerPageにクランプされる。
func (s *Service) ListBooks(ctx context.Context, category model.BookCategory, page, perPage int) (*ListResult, error) {
	if !category.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("無効なカテゴリです: %s", category))
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	total, err := s.bookRepo.Count(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	books, err := s.bookRepo.List(ctx, category, (page-1)*perPage, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return &ListResult{
		Books:   books,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// GetBook は書籍詳細を返す。見つからない場合はNotFoundエラー。
func (s *Service) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	if b == nil {
		return nil, model.NewBookNotFoundError(id)
	}
	return b, nil
}

// UpdateBook は書籍情報を部分更新する。
func (s *Service) UpdateBook(ctx context.Context, id int64, input UpdateBookInput) (*model.Book, error) {
	b, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	if b == nil {
		return nil, model.NewBookNotFoundError(id)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, model.NewValidationError("タイトルは空にできません")
		}
		b.Title = *input.Title
	}
	if input.Author != nil {
		if *input.Author == "" {
			return nil, model.NewValidationError("著者は空にできません")
		}
		b.Author = *input.Author
	}
	if input.Description != nil {
		b.Description = s.sanitizer.Sanitize(*input.Description)
	}
	if input.Year != nil {
		b.Year = *input.Year
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, model.NewValidationError(fmt.Sprintf("無効なカテゴリです: %s", *input.Category))
		}
		b.Category = *input.Category
	}

	if err := s.bookRepo.Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewBookTitleTakenError(b.Title)
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return b, nil
}

// DeleteBook は書籍を削除する。見つからない場合はNotFoundエラー。
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	deleted, err := s.bookRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if deleted == 0 {
		return model.NewBookNotFoundError(id)
	}

	slog.Info("book deleted", slog.Int64("book_id", id))
	return nil
}

// SetCover は外部URLからカバー画像を取得して保存し、書籍に紐付ける。
// URLの安全性検証はFetcher側のSSRFガードで行われる。
func (s *Service) SetCover(ctx context.Context, id int64, rawURL string) (*model.Book, error) {
	b, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	if b == nil {
		return nil, model.NewBookNotFoundError(id)
	}

	data, contentType, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		slog.Warn("cover fetch failed",
			slog.Int64("book_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewCoverFetchFailedError(err.Error())
	}

	coverPath, err := s.coverStore.Save(b.ID, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save cover: %w", err)
	}

	b.CoverURL = coverPath
	if err := s.bookRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update book cover: %w", err)
	}

	slog.Info("book cover updated",
		slog.Int64("book_id", b.ID),
		slog.String("cover_url", coverPath),
	)

	return b, nil
}
