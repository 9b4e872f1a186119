package books

import "time"

// ===== Requests =====

type CreateBookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author" binding:"required"`
	Quantity int    `json:"quantity"` // >= 0
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
}

// 更新は全フィールド上書き。status も呼び出し側の指定をそのまま保存する。
// quantity だけ変えて status を更新し忘れると在庫不変条件が崩れるので、
// 貸出・返却以外で quantity を触るのは管理者の修正操作に限ること。
type UpdateBookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author" binding:"required"`
	Quantity int    `json:"quantity"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
	Status   Status `json:"status" binding:"required"`
}

// ===== Responses =====

type BookResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Quantity  int       `json:"quantity"`
	ISBN      string    `json:"isbn"`
	Category  string    `json:"category"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
