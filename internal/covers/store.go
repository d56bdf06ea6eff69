// Package covers はカバー画像の取得と保存を提供する。
package covers

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store はカバー画像の保存インターフェース。
type Store interface {
	// Save は画像データを保存し、配信用のパスを返す。
	// 同じ書籍に対する再保存は上書きする。
	Save(bookID int64, contentType string, data []byte) (string, error)
}

// DiskStore はローカルディスクにカバー画像を保存するStore実装。
type DiskStore struct {
	dir string
}

// NewDiskStore はDiskStoreを生成する。保存先ディレクトリがなければ作成する。
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cover directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir は保存先ディレクトリを返す。静的ファイル配信の設定に使用する。
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save は画像データをディスクに保存し、配信用のパスを返す。
func (s *DiskStore) Save(bookID int64, contentType string, data []byte) (string, error) {
	ext, err := extensionFor(contentType)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d%s", bookID, ext)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}

	return "/covers/" + name, nil
}

// extensionFor はContent-Typeからファイル拡張子を決定する。
// 対応していない画像形式はエラーを返す。
func extensionFor(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported cover content type: %s", contentType)
	}
}

// compile-time interface check
var _ Store = (*DiskStore)(nil)
