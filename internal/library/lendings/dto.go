package lendings

import "time"

// ===== Requests =====

// 貸出登録リクエスト。due_date は RFC3339（パースできなければ何も書き込まれない）。
type CheckoutRequest struct {
	BookID    string    `json:"book_id" binding:"required"`
	StudentID string    `json:"student_id" binding:"required"`
	DueDate   time.Time `json:"due_date" binding:"required"`
}

// 管理者向けの修正リクエスト。全フィールド上書きで、在庫調整も
// 貸出上限チェックもやらない。ライフサイクル遷移には使わないこと。
type UpdateLendingRequest struct {
	BookID     string     `json:"book_id" binding:"required"`
	StudentID  string     `json:"student_id" binding:"required"`
	DueDate    time.Time  `json:"due_date" binding:"required"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// ===== Responses =====

// LendingResponse は書籍・生徒を結合した表示用の射影。保存はしない。
type LendingResponse struct {
	ID            string     `json:"id"`
	BookID        string     `json:"book_id"`
	StudentID     string     `json:"student_id"`
	LentAt        time.Time  `json:"lent_at"`
	DueDate       time.Time  `json:"due_date"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty"`
	Status        Status     `json:"status"`
	BookTitle     string     `json:"book_title"`
	BookAuthor    string     `json:"book_author"`
	StudentName   string     `json:"student_name"`
	StudentNumber string     `json:"student_number"`
}
