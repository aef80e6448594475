package loans

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/loans/checkout", h.Checkout)
	r.POST("/loans/:id/return", h.Return)
	r.GET("/loans/member/:member_id", h.MemberLoans)
	r.GET("/loans", h.List)
	r.GET("/loans/:id", h.Get) // id or ULID
}

func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "invalid json")
		return
	}
	days := h.svc.DefaultDays()
	if req.Days != nil {
		days = *req.Days
	}
	res, err := h.svc.Checkout(c.Request.Context(), req.BookID, req.MemberID, days)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/api/loans/"+res.LoanULID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Return(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Return(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MemberLoans(c *gin.Context) {
	id, ok := parseID(c, "member_id")
	if !ok {
		return
	}
	res, err := h.svc.MemberLoans(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.AllLoans(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.svc.GetByKey(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		apierr.BadRequest(c, name+" must be a number")
		return 0, false
	}
	return id, true
}
