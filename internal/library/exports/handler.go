package exports

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/exports/books.csv", h.BooksCSV)
	r.GET("/exports/lendings.csv", h.LendingsCSV)
}

func encodingFromQuery(c *gin.Context) Encoding {
	if c.Query("encoding") == string(EncodingShiftJIS) {
		return EncodingShiftJIS
	}
	return EncodingUTF8
}

func contentType(enc Encoding) string {
	if enc == EncodingShiftJIS {
		return "text/csv; charset=Shift_JIS"
	}
	return "text/csv; charset=utf-8"
}

func (h *Handler) BooksCSV(c *gin.Context) {
	enc := encodingFromQuery(c)
	buf, err := h.svc.BooksCSV(c.Request.Context(), enc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="books.csv"`)
	c.Data(http.StatusOK, contentType(enc), buf)
}

func (h *Handler) LendingsCSV(c *gin.Context) {
	enc := encodingFromQuery(c)
	buf, err := h.svc.LendingsCSV(c.Request.Context(), enc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="lendings.csv"`)
	c.Data(http.StatusOK, contentType(enc), buf)
}
