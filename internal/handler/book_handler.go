package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/bookstand/internal/book"
	"github.com/hitoshi/bookstand/internal/model"
)

// BookServiceInterface は書籍ハンドラーが必要とするサービスインターフェース。
type BookServiceInterface interface {
	// CreateBook は書籍を登録する。
	CreateBook(ctx context.Context, input book.CreateBookInput) (*model.Book, error)
	// ListBooks はカテゴリフィルタとページネーション付きで書籍一覧を返す。
	ListBooks(ctx context.Context, category model.BookCategory, page, perPage int) (*book.ListResult, error)
	// GetBook は書籍詳細を返す。
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	// UpdateBook は書籍情報を部分更新する。
	UpdateBook(ctx context.Context, id int64, input book.UpdateBookInput) (*model.Book, error)
	// DeleteBook は書籍を削除する。
	DeleteBook(ctx context.Context, id int64) error
	// SetCover は外部URLからカバー画像を取得して書籍に紐付ける。
	SetCover(ctx context.Context, id int64, rawURL string) (*model.Book, error)
}

// BookHandler は書籍カタログのHTTPハンドラー。
type BookHandler struct {
	service BookServiceInterface
}

// NewBookHandler はBookHandlerを生成する。
func NewBookHandler(service BookServiceInterface) *BookHandler {
	return &BookHandler{
		service: service,
	}
}

// createBookRequest は書籍登録リクエストのボディ。
type createBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	Year        int    `json:"year,omitempty"`
	Category    string `json:"category,omitempty"`
}

// updateBookRequest は書籍更新リクエストのボディ。nilフィールドは変更しない。
type updateBookRequest struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Description *string `json:"description,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// setCoverRequest はカバー画像設定リクエストのボディ。
type setCoverRequest struct {
	URL string `json:"url"`
}

// bookResponse は書籍情報のAPIレスポンス。
type bookResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	Year        int    `json:"year,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	Category    string `json:"category,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// bookListResponse は書籍一覧のページネーション付きレスポンス。
type bookListResponse struct {
	Books   []bookResponse `json:"books"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateBook は書籍登録を処理する。
// POST /books
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	b, err := h.service.CreateBook(r.Context(), book.CreateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Year:        req.Year,
		Category:    model.BookCategory(req.Category),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toBookResponse(b))
}

// ListBooks は書籍一覧を返す。
// GET /books?category=&page=&per_page=
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	category := model.BookCategory(q.Get("category"))

	result, err := h.service.ListBooks(r.Context(), category, page, perPage)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := bookListResponse{
		Books:   make([]bookResponse, 0, len(result.Books)),
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
	}
	for _, b := range result.Books {
		resp.Books = append(resp.Books, toBookResponse(b))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetBook は書籍詳細を返す。
// GET /books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(w, r)
	if !ok {
		return
	}

	b, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBookResponse(b))
}

// UpdateBook は書籍情報を部分更新する。
// PUT /books/{id}
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(w, r)
	if !ok {
		return
	}

	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	input := book.UpdateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Year:        req.Year,
	}
	if req.Category != nil {
		c := model.BookCategory(*req.Category)
		input.Category = &c
	}

	b, err := h.service.UpdateBook(r.Context(), id, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBookResponse(b))
}

// DeleteBook は書籍を削除する。
// DELETE /books/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetCover はカバー画像の取得と設定を処理する。
// POST /books/{id}/cover
func (h *BookHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(w, r)
	if !ok {
		return
	}

	var req setCoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}
	if req.URL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("URLが空です"))
		return
	}

	b, err := h.service.SetCover(r.Context(), id, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBookResponse(b))
}

// --- ヘルパー関数 ---

// parseBookID はURLパラメータから書籍IDを取り出す。
// 不正な場合はエラーレスポンスを書き込み、falseを返す。
func parseBookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("書籍IDが正しくありません"))
		return 0, false
	}
	return id, true
}

// toBookResponse はmodel.BookからAPIレスポンスに変換する。
func toBookResponse(b *model.Book) bookResponse {
	return bookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Year:        b.Year,
		CoverURL:    b.CoverURL,
		Category:    string(b.Category),
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeUsernameTaken,
		model.ErrCodeBookTitleTaken, model.ErrCodeCartDuplicate:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCreds, model.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeCaptchaFailed, model.ErrCodeForbidden, model.ErrCodeCoverURLBlocked:
		return http.StatusForbidden
	case model.ErrCodeBookNotFound, model.ErrCodeUserNotFound, model.ErrCodeCartItemNotFound:
		return http.StatusNotFound
	case model.ErrCodeCoverFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
