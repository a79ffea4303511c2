package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/scribely/internal/models"
	"github.com/yoockh/scribely/internal/services"
)

type NoteHandler struct {
	notes services.NoteService
}

func NewNoteHandler(notes services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// List handles GET /notes?category=&limit=
func (h *NoteHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a number"})
			return
		}
		limit = n
	}

	notes, err := h.notes.List(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}
