package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/bookstand/internal/security"
)

// Fetcher は外部URLからカバー画像を取得する。
// ユーザー入力のURLを扱うため、SSRF防止付きHTTPクライアントを使用する。
type Fetcher struct {
	guard   security.SSRFGuardService
	timeout time.Duration
	maxSize int64
}

// NewFetcher はFetcherを生成する。
func NewFetcher(guard security.SSRFGuardService, timeout time.Duration, maxSize int64) *Fetcher {
	return &Fetcher{
		guard:   guard,
		timeout: timeout,
		maxSize: maxSize,
	}
}

// Fetch はURLから画像データを取得する。
// 取得サイズはmaxSizeで制限され、画像以外のContent-Typeは拒否される。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if err := f.guard.ValidateURL(rawURL); err != nil {
		return nil, "", fmt.Errorf("unsafe cover URL: %w", err)
	}

	client := f.guard.NewSafeClient(f.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create cover request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("cover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("cover fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("unexpected cover content type: %s", contentType)
	}

	// maxSize+1まで読み、超過を検出する
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read cover body: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, "", fmt.Errorf("cover exceeds maximum size of %d bytes", f.maxSize)
	}

	return data, contentType, nil
}
