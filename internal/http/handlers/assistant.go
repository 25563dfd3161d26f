package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ChatRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Message    string `json:"message" validate:"required,max=2000"`
}

// @Summary Customer assistant chat
// @Description Answers with the customer's open tickets and balance as context. Keeps the last 10 turns per customer.
// @Tags assistant
// @Accept json
// @Produce json
// @Param body body ChatRequest true "Chat message"
// @Success 200 {object} chat.Reply
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if !h.bind(c, &req) {
		return
	}
	reply, err := h.ChatService.Ask(c.Request.Context(), req.CustomerID, req.Message)
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// @Summary Reset customer chat history
// @Tags assistant
// @Param customer_id path string true "Customer ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/chat/{customer_id} [delete]
func (h *Handler) ResetChat(c *gin.Context) {
	if err := h.ChatService.Reset(c.Request.Context(), c.Param("customer_id")); err != nil {
		h.writeAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
