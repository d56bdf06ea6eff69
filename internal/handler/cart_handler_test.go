package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/bookstand/internal/middleware"
	"github.com/hitoshi/bookstand/internal/model"
)

// --- モック定義 ---

type mockCartService struct {
	listItemsFn  func(ctx context.Context, userID int64) ([]model.CartItemWithBook, error)
	addItemFn    func(ctx context.Context, userID, bookID int64) (*model.CartItem, error)
	removeItemFn func(ctx context.Context, userID, bookID int64) error
	clearFn      func(ctx context.Context, userID int64) (int64, error)
}

func (m *mockCartService) ListItems(ctx context.Context, userID int64) ([]model.CartItemWithBook, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCartService) AddItem(ctx context.Context, userID, bookID int64) (*model.CartItem, error) {
	if m.addItemFn != nil {
		return m.addItemFn(ctx, userID, bookID)
	}
	return nil, nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID, bookID int64) error {
	if m.removeItemFn != nil {
		return m.removeItemFn(ctx, userID, bookID)
	}
	return nil
}

func (m *mockCartService) Clear(ctx context.Context, userID int64) (int64, error) {
	if m.clearFn != nil {
		return m.clearFn(ctx, userID)
	}
	return 0, nil
}

// cartTestRouter はカートハンドラーをマウントしたルーターを返す。
func cartTestRouter(svc CartServiceInterface) http.Handler {
	h := NewCartHandler(svc)
	r := chi.NewRouter()
	r.Get("/cart", h.ListItems)
	r.Post("/cart", h.AddItem)
	r.Delete("/cart", h.Clear)
	r.Delete("/cart/{bookID}", h.RemoveItem)
	return r
}

// asUser はリクエストに認証済みユーザーを注入する。
func asUser(req *http.Request, userID int64) *http.Request {
	ctx := middleware.ContextWithUser(req.Context(), &model.User{
		ID:       userID,
		Username: "alice",
		Role:     model.RoleUser,
	})
	return req.WithContext(ctx)
}

// --- テスト ---

func TestCartHandler_ListItems_ReturnsItemsWithBooks(t *testing.T) {
	svc := &mockCartService{
		listItemsFn: func(ctx context.Context, userID int64) ([]model.CartItemWithBook, error) {
			if userID != 1 {
				t.Errorf("userID = %d, want 1", userID)
			}
			return []model.CartItemWithBook{
				{
					CartItem: model.CartItem{ID: 10, UserID: 1, BookID: 3},
					Book:     model.Book{ID: 3, Title: "It", Author: "Stephen King"},
				},
			}, nil
		},
	}
	router := cartTestRouter(svc)

	req := asUser(httptest.NewRequest(http.MethodGet, "/cart", nil), 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got cartListResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Count != 1 || len(got.Items) != 1 {
		t.Fatalf("response = %+v", got)
	}
	if got.Items[0].Book.Title != "It" {
		t.Errorf("book title = %q, want %q", got.Items[0].Book.Title, "It")
	}
}

func TestCartHandler_ListItems_NoUser_ReturnsUnauthorized(t *testing.T) {
	router := cartTestRouter(&mockCartService{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestCartHandler_AddItem_Success(t *testing.T) {
	svc := &mockCartService{
		addItemFn: func(ctx context.Context, userID, bookID int64) (*model.CartItem, error) {
			if userID != 1 || bookID != 3 {
				t.Errorf("userID = %d, bookID = %d, want 1, 3", userID, bookID)
			}
			return &model.CartItem{ID: 10, UserID: userID, BookID: bookID}, nil
		},
	}
	router := cartTestRouter(svc)

	req := asUser(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"book_id":3}`)), 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestCartHandler_AddItem_MissingBook_Returns404(t *testing.T) {
	svc := &mockCartService{
		addItemFn: func(ctx context.Context, userID, bookID int64) (*model.CartItem, error) {
			return nil, model.NewBookNotFoundError(bookID)
		},
	}
	router := cartTestRouter(svc)

	req := asUser(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"book_id":999}`)), 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCartHandler_AddItem_Duplicate_Returns400(t *testing.T) {
	svc := &mockCartService{
		addItemFn: func(ctx context.Context, userID, bookID int64) (*model.CartItem, error) {
			return nil, model.NewCartDuplicateError()
		},
	}
	router := cartTestRouter(svc)

	req := asUser(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"book_id":3}`)), 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Code != model.ErrCodeCartDuplicate {
		t.Errorf("code = %q, want %q", got.Code, model.ErrCodeCartDuplicate)
	}
}

func TestCartHandler_AddItem_InvalidBookID(t *testing.T) {
	router := cartTestRouter(&mockCartService{})

	req := asUser(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(`{"book_id":0}`)), 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCartHandler_RemoveItem_Success(t *testing.T) {
	svc := &mockCartService{
		removeItemFn: func(ctx context.Context, userID, bookID int64) error {
			if userID != 1 || bookID != 3 {
				t.Errorf("userID = %d, bookID = %d, want 1, 3", userID, bookID)
			}
			return nil
		},
	}
	router := cartTestRouter(svc)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/cart/3", nil), 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestCartHandler_RemoveItem_NotInCart_Returns404(t *testing.T) {
	svc := &mockCartService{
		removeItemFn: func(ctx context.Context, userID, bookID int64) error {
			return model.NewCartItemNotFoundError()
		},
	}
	router := cartTestRouter(svc)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/cart/3", nil), 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCartHandler_Clear_ReturnsDeletedCount(t *testing.T) {
	svc := &mockCartService{
		clearFn: func(ctx context.Context, userID int64) (int64, error) {
			return 4, nil
		},
	}
	router := cartTestRouter(svc)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/cart", nil), 1)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got map[string]int64
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got["deleted"] != 4 {
		t.Errorf("deleted = %d, want 4", got["deleted"])
	}
}
