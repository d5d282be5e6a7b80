package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/mebel-backend/internal/dto"
	"github.com/ignatzorin/mebel-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mebel-backend/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, login, password string) (*service.AccessToken, error)
}

// AuthHandler выдаёт токены администраторам.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login обрабатывает POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBindError(c, err)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(req.Login), req.Password)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		Success:     true,
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt.Unix(),
	})
}
