package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/http/response"
	"github.com/yungbote/appregistry-backend/internal/platform/apierr"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
	"github.com/yungbote/appregistry-backend/internal/services"
)

type PermissionHandler struct {
	log   *logger.Logger
	perms services.PermissionService
}

func NewPermissionHandler(log *logger.Logger, perms services.PermissionService) *PermissionHandler {
	return &PermissionHandler{log: log.With("handler", "PermissionHandler"), perms: perms}
}

// GET /permissions
func (h *PermissionHandler) List(c *gin.Context) {
	perms, err := h.perms.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, perms)
}

// GET /permissions/:name
func (h *PermissionHandler) Get(c *gin.Context) {
	perm, err := h.perms.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, perm)
}

// PUT /permissions/:name
func (h *PermissionHandler) Put(c *gin.Context) {
	var perm application.Permission
	if err := c.ShouldBindJSON(&perm); err != nil {
		h.fail(c, apierr.New(http.StatusBadRequest, "invalid_body", err))
		return
	}
	saved, err := h.perms.Put(c.Request.Context(), c.Param("name"), &perm)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, saved)
}

// DELETE /permissions/:name
func (h *PermissionHandler) Delete(c *gin.Context) {
	if err := h.perms.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PermissionHandler) fail(c *gin.Context, err error) {
	if response.StatusFor(err) >= http.StatusInternalServerError {
		h.log.Error("permission request failed", "path", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	response.Fail(c, err)
}
