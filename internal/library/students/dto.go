package students

import "time"

// ===== Requests =====

type CreateStudentRequest struct {
	Name string `json:"name" binding:"required"`
	// 学年・クラスなどの区分（自由記述）
	Grade       string  `json:"grade"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	// 学籍番号。内部IDとは別物で、一意性はここでは強制しない。
	StudentNumber string `json:"student_id" binding:"required"`
}

type UpdateStudentRequest struct {
	Name          string  `json:"name" binding:"required"`
	Grade         string  `json:"grade"`
	PhoneNumber   *string `json:"phone_number,omitempty"`
	StudentNumber string  `json:"student_id" binding:"required"`
	Status        Status  `json:"status" binding:"required"`
}

// ===== Responses =====

type StudentResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Grade         string    `json:"grade"`
	PhoneNumber   *string   `json:"phone_number,omitempty"`
	StudentNumber string    `json:"student_id"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
