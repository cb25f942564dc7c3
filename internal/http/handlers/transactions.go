package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/judychuepursuit/change-4-change-back/internal/http/middleware"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/donations"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
)

type TransactionsHandler struct {
	Repo *donations.Repo
}

func NewTransactionsHandler(repo *donations.Repo) *TransactionsHandler {
	return &TransactionsHandler{Repo: repo}
}

// GET /transactions
func (h *TransactionsHandler) List(c *gin.Context) {
	list, err := h.Repo.ListWithCharity(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, list)
}
