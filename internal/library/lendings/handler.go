package lendings

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /lendings (貸出)
	r.POST("/lendings", h.Checkout)
	// GET /lendings?book_id=&student_id= (一覧・絞り込み)
	r.GET("/lendings", h.ListLendings)
	r.GET("/lendings/:lending_id", h.GetLending)
	// POST /lendings/:lending_id/return (返却)
	r.POST("/lendings/:lending_id/return", h.Return)
	// PUT は記録修正専用
	r.PUT("/lendings/:lending_id", h.UpdateLending)
	r.DELETE("/lendings/:lending_id", h.DeleteLending)
}

// ---------- handlers ----------

func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// due_date が RFC3339 で無い場合もここで弾かれる（DBには何も書かれない）
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Checkout(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}

	c.Header("Location", "/lendings/"+res.ID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListLendings(c *gin.Context) {
	f := Filter{}
	if v := c.Query("book_id"); v != "" {
		f.BookID = &v
	}
	if v := c.Query("student_id"); v != "" {
		f.StudentID = &v
	}
	res, err := h.svc.ListLendings(c.Request.Context(), f)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetLending(c *gin.Context) {
	res, err := h.svc.GetLending(c.Request.Context(), c.Param("lending_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Return(c *gin.Context) {
	res, err := h.svc.Return(c.Request.Context(), c.Param("lending_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateLending(c *gin.Context) {
	var req UpdateLendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.UpdateLending(c.Request.Context(), c.Param("lending_id"), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteLending(c *gin.Context) {
	if err := h.svc.DeleteLending(c.Request.Context(), c.Param("lending_id")); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
