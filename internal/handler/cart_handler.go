package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/bookstand/internal/middleware"
	"github.com/hitoshi/bookstand/internal/model"
)

// CartServiceInterface はカートハンドラーが必要とするサービスインターフェース。
type CartServiceInterface interface {
	// ListItems はユーザーのカート一覧を書籍情報付きで返す。
	ListItems(ctx context.Context, userID int64) ([]model.CartItemWithBook, error)
	// AddItem は書籍をカートに追加する。
	AddItem(ctx context.Context, userID, bookID int64) (*model.CartItem, error)
	// RemoveItem は書籍をカートから削除する。
	RemoveItem(ctx context.Context, userID, bookID int64) error
	// Clear はカートを空にして削除件数を返す。
	Clear(ctx context.Context, userID int64) (int64, error)
}

// CartHandler はショッピングカートのHTTPハンドラー。
// 操作対象は常に認証済みユーザー自身のカートとなる。
type CartHandler struct {
	service CartServiceInterface
}

// NewCartHandler はCartHandlerを生成する。
func NewCartHandler(service CartServiceInterface) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// addCartItemRequest はカート追加リクエストのボディ。
type addCartItemRequest struct {
	BookID int64 `json:"book_id"`
}

// cartItemResponse はカートアイテムのAPIレスポンス。
type cartItemResponse struct {
	ID     int64        `json:"id"`
	BookID int64        `json:"book_id"`
	Book   bookResponse `json:"book"`
}

// cartListResponse はカート一覧のレスポンス。
type cartListResponse struct {
	Items []cartItemResponse `json:"items"`
	Count int                `json:"count"`
}

// ListItems はカート一覧を返す。
// GET /cart
func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	items, err := h.service.ListItems(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := cartListResponse{
		Items: make([]cartItemResponse, 0, len(items)),
		Count: len(items),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, cartItemResponse{
			ID:     item.ID,
			BookID: item.BookID,
			Book:   toBookResponse(&item.Book),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// AddItem は書籍をカートに追加する。
// POST /cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}
	if req.BookID < 1 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("book_idが正しくありません"))
		return
	}

	item, err := h.service.AddItem(r.Context(), user.ID, req.BookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]int64{
		"id":      item.ID,
		"book_id": item.BookID,
	})
}

// RemoveItem は書籍をカートから削除する。
// DELETE /cart/{bookID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	raw := chi.URLParam(r, "bookID")
	bookID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || bookID < 1 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("書籍IDが正しくありません"))
		return
	}

	if err := h.service.RemoveItem(r.Context(), user.ID, bookID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear はカートを空にする。
// DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	deleted, err := h.service.Clear(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{
		"deleted": deleted,
	})
}
