package statistics

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/statistics/dashboard", h.Dashboard)
	r.GET("/statistics/popular-books", h.PopularBooks)
	r.GET("/statistics/overdue-books", h.OverdueBooks)
	r.GET("/statistics/recent-activity", h.RecentActivity)
}

func (h *Handler) Dashboard(c *gin.Context) {
	res, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) PopularBooks(c *gin.Context) {
	res, err := h.svc.PopularBooks(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) OverdueBooks(c *gin.Context) {
	res, err := h.svc.OverdueBooks(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RecentActivity(c *gin.Context) {
	res, err := h.svc.RecentActivity(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
