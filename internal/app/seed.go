package app

import "github.com/hitoshi/bookstand/internal/model"

// seedBooks は開発・デモ用の初期書籍データを返す。
func seedBooks() []*model.Book {
	return []*model.Book{
		{
			Title:       "It",
			Author:      "Stephen King",
			Description: "デリーの街に潜む恐怖を描いた長編ホラー。",
			Year:        1986,
			Category:    model.CategoryTerror,
		},
		{
			Title:       "El Resplandor",
			Author:      "Stephen King",
			Description: "雪に閉ざされたホテルで起こる惨劇。",
			Year:        1977,
			Category:    model.CategoryTerror,
		},
		{
			Title:       "Cien años de soledad",
			Author:      "Gabriel García Márquez",
			Description: "ブエンディア一族の百年を描いたマジックリアリズムの代表作。",
			Year:        1967,
			Category:    model.CategoryAuthor,
		},
		{
			Title:       "El Principito",
			Author:      "Antoine de Saint-Exupéry",
			Description: "小さな王子さまと飛行士の出会いの物語。",
			Year:        1943,
			Category:    model.CategoryKids,
		},
		{
			Title:       "Novedad 2025",
			Author:      "Autor Nuevo",
			Description: "今月入荷の新刊。",
			Year:        2025,
			Category:    model.CategoryNew,
		},
		{
			Title:       "Libro del club",
			Author:      "Club de Lectura",
			Description: "読書クラブの今月の課題本。",
			Year:        2024,
			Category:    model.CategoryClub,
		},
	}
}
