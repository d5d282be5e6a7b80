package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/mebel-backend/internal/dto"
	"github.com/ignatzorin/mebel-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mebel-backend/internal/service"
)

type LogoService interface {
	Upload(ctx context.Context, file service.UploadFile) (*service.LogoResult, error)
	Delete(ctx context.Context, path string) error
}

// LogoHandler загружает и удаляет логотипы.
type LogoHandler struct {
	logos LogoService
}

func NewLogoHandler(logos LogoService) *LogoHandler {
	return &LogoHandler{logos: logos}
}

// Upload обрабатывает POST /logos/upload.
func (h *LogoHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		common.RespondValidation(c, map[string][]string{"file": {"обязательное поле"}})
		return
	}

	res, err := h.logos.Upload(c.Request.Context(), toUploadFile(fh))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LogoUploadResponse{
		Success:  true,
		URL:      res.URL,
		Path:     res.Path,
		Filename: res.Filename,
	})
}

// Delete обрабатывает DELETE /logos.
func (h *LogoHandler) Delete(c *gin.Context) {
	var req dto.DeleteLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBindError(c, err)
		return
	}

	if err := h.logos.Delete(c.Request.Context(), req.Path); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Логотип удалён"})
}
