package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/appregistry-backend/internal/domain/aggregates"
	"github.com/yungbote/appregistry-backend/internal/domain/application"
	"github.com/yungbote/appregistry-backend/internal/http/response"
	"github.com/yungbote/appregistry-backend/internal/platform/apierr"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
	"github.com/yungbote/appregistry-backend/internal/services"
)

type ApplicationHandler struct {
	log  *logger.Logger
	apps services.ApplicationService
}

func NewApplicationHandler(log *logger.Logger, apps services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{log: log.With("handler", "ApplicationHandler"), apps: apps}
}

// GET /v2/applications
// Query parameters are search criteria; none lists everything.
func (h *ApplicationHandler) List(c *gin.Context) {
	params := map[string]string{}
	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 && strings.TrimSpace(vs[0]) != "" {
			params[k] = vs[0]
		}
	}
	var (
		apps []*application.Application
		err  error
	)
	if len(params) == 0 {
		apps, err = h.apps.FindAll(c.Request.Context())
	} else {
		apps, err = h.apps.Search(c.Request.Context(), params)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, apps)
}

// GET /v2/applications/:name
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.apps.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, app)
}

// POST /v2/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	app, ok := h.bind(c)
	if !ok {
		return
	}
	saved, err := h.apps.Save(c.Request.Context(), app)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondCreated(c, saved)
}

// PATCH /v2/applications/:name
// The body name must match the path or be omitted.
func (h *ApplicationHandler) Update(c *gin.Context) {
	app, ok := h.bind(c)
	if !ok {
		return
	}
	name := c.Param("name")
	if body := strings.TrimSpace(app.Name); body != "" && !strings.EqualFold(body, strings.TrimSpace(name)) {
		h.fail(c, domainagg.NewError(domainagg.CodeValidation, "application.update",
			fmt.Sprintf("application name %q does not match path %q", body, name), nil))
		return
	}
	app.Name = name
	updated, err := h.apps.Update(c.Request.Context(), app)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, updated)
}

// DELETE /v2/applications/:name
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.apps.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ApplicationHandler) bind(c *gin.Context) (*application.Application, bool) {
	var app application.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		h.fail(c, apierr.New(http.StatusBadRequest, "invalid_body", err))
		return nil, false
	}
	return &app, true
}

func (h *ApplicationHandler) fail(c *gin.Context, err error) {
	if response.StatusFor(err) >= http.StatusInternalServerError {
		h.log.Error("application request failed", "path", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	response.Fail(c, err)
}
