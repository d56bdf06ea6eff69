package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/bookstand/internal/model"
	"github.com/hitoshi/bookstand/internal/repository"
)

// --- モック定義 ---

type mockCartRepo struct {
	listByUserIDFn      func(ctx context.Context, userID int64) ([]model.CartItemWithBook, error)
	findByUserAndBookFn func(ctx context.Context, userID, bookID int64) (*model.CartItem, error)
	createFn            func(ctx context.Context, item *model.CartItem) error
	deleteFn            func(ctx context.Context, userID, bookID int64) (int64, error)
	deleteByUserIDFn    func(ctx context.Context, userID int64) (int64, error)
}

func (m *mockCartRepo) ListByUserID(ctx context.Context, userID int64) ([]model.CartItemWithBook, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCartRepo) FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.CartItem, error) {
	if m.findByUserAndBookFn != nil {
		return m.findByUserAndBookFn(ctx, userID, bookID)
	}
	return nil, nil
}

func (m *mockCartRepo) Create(ctx context.Context, item *model.CartItem) error {
	if m.createFn != nil {
		return m.createFn(ctx, item)
	}
	return nil
}

func (m *mockCartRepo) Delete(ctx context.Context, userID, bookID int64) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, bookID)
	}
	return 1, nil
}

func (m *mockCartRepo) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return 0, nil
}

type mockBookRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Book, error)
}

func (m *mockBookRepo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBookRepo) FindByTitle(ctx context.Context, title string) (*model.Book, error) {
	return nil, nil
}

func (m *mockBookRepo) List(ctx context.Context, category model.BookCategory, offset, limit int) ([]*model.Book, error) {
	return nil, nil
}

func (m *mockBookRepo) Count(ctx context.Context, category model.BookCategory) (int, error) {
	return 0, nil
}

func (m *mockBookRepo) Create(ctx context.Context, book *model.Book) error {
	return nil
}

func (m *mockBookRepo) Update(ctx context.Context, book *model.Book) error {
	return nil
}

func (m *mockBookRepo) Delete(ctx context.Context, id int64) (int64, error) {
	return 0, nil
}

func existingBook(id int64) *mockBookRepo {
	return &mockBookRepo{
		findByIDFn: func(ctx context.Context, bookID int64) (*model.Book, error) {
			if bookID == id {
				return &model.Book{ID: id, Title: "It"}, nil
			}
			return nil, nil
		},
	}
}

// --- テスト ---

func TestService_AddItem_Success(t *testing.T) {
	cartRepo := &mockCartRepo{
		createFn: func(ctx context.Context, item *model.CartItem) error {
			item.ID = 10
			return nil
		},
	}
	svc := NewService(cartRepo, existingBook(3), nil)

	item, err := svc.AddItem(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if item.ID != 10 || item.UserID != 1 || item.BookID != 3 {
		t.Errorf("item = %+v", item)
	}
}

func TestService_AddItem_BookNotFound(t *testing.T) {
	svc := NewService(&mockCartRepo{}, &mockBookRepo{}, nil)

	_, err := svc.AddItem(context.Background(), 1, 999)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeBookNotFound {
		t.Errorf("AddItem() error = %v, want BOOK_NOT_FOUND", err)
	}
}

func TestService_AddItem_Duplicate_Precheck(t *testing.T) {
	cartRepo := &mockCartRepo{
		findByUserAndBookFn: func(ctx context.Context, userID, bookID int64) (*model.CartItem, error) {
			return &model.CartItem{ID: 10, UserID: userID, BookID: bookID}, nil
		},
	}
	svc := NewService(cartRepo, existingBook(3), nil)

	_, err := svc.AddItem(context.Background(), 1, 3)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCartDuplicate {
		t.Errorf("AddItem() error = %v, want CART_DUPLICATE", err)
	}
}

func TestService_AddItem_Duplicate_StoreRace(t *testing.T) {
	// 事前チェックをすり抜けた重複は(user_id, book_id)の一意性制約で検出される
	cartRepo := &mockCartRepo{
		createFn: func(ctx context.Context, item *model.CartItem) error {
			return repository.ErrDuplicate
		},
	}
	svc := NewService(cartRepo, existingBook(3), nil)

	_, err := svc.AddItem(context.Background(), 1, 3)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCartDuplicate {
		t.Errorf("AddItem() error = %v, want CART_DUPLICATE on store conflict", err)
	}
}

func TestService_ListItems_ReturnsJoinedRows(t *testing.T) {
	cartRepo := &mockCartRepo{
		listByUserIDFn: func(ctx context.Context, userID int64) ([]model.CartItemWithBook, error) {
			return []model.CartItemWithBook{
				{
					CartItem: model.CartItem{ID: 10, UserID: userID, BookID: 3},
					Book:     model.Book{ID: 3, Title: "It"},
				},
			}, nil
		},
	}
	svc := NewService(cartRepo, &mockBookRepo{}, nil)

	items, err := svc.ListItems(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 1 || items[0].Book.Title != "It" {
		t.Errorf("items = %+v", items)
	}
}

func TestService_RemoveItem_NotInCart(t *testing.T) {
	cartRepo := &mockCartRepo{
		deleteFn: func(ctx context.Context, userID, bookID int64) (int64, error) {
			return 0, nil
		},
	}
	svc := NewService(cartRepo, &mockBookRepo{}, nil)

	err := svc.RemoveItem(context.Background(), 1, 3)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCartItemNotFound {
		t.Errorf("RemoveItem() error = %v, want CART_ITEM_NOT_FOUND", err)
	}
}

func TestService_RemoveItem_Success(t *testing.T) {
	cartRepo := &mockCartRepo{
		deleteFn: func(ctx context.Context, userID, bookID int64) (int64, error) {
			if userID != 1 || bookID != 3 {
				t.Errorf("userID = %d, bookID = %d, want 1, 3", userID, bookID)
			}
			return 1, nil
		},
	}
	svc := NewService(cartRepo, &mockBookRepo{}, nil)

	if err := svc.RemoveItem(context.Background(), 1, 3); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
}

func TestService_Clear_ReturnsDeletedCount(t *testing.T) {
	cartRepo := &mockCartRepo{
		deleteByUserIDFn: func(ctx context.Context, userID int64) (int64, error) {
			return 4, nil
		},
	}
	svc := NewService(cartRepo, &mockBookRepo{}, nil)

	deleted, err := svc.Clear(context.Background(), 1)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4", deleted)
	}
}
