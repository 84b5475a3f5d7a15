// Project HTTP handlers.
//
// This file exposes REST endpoints for chat-thread resources:
//   - POST   /projects                (create)
//   - GET    /projects                (list, paginated)
//   - DELETE /projects/{id}           (delete, cascades to messages)
//   - GET    /projects/{id}/messages  (list messages, paginated)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/http/middleware"
	"github.com/kawanlabs/kawan-backend/internal/services"
	"github.com/kawanlabs/kawan-backend/internal/utils"
)

// ProjectService defines project lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ProjectService interface {
	// Create starts a new project for userID with the placeholder name.
	Create(ctx context.Context, userID string) (*services.CreatedProject, error)
	// ListPage returns a page of the user's projects and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Project, int64, error)
	// ListMessagesPage returns a page of a project's messages in thread order.
	ListMessagesPage(ctx context.Context, userID, projectID string, page, pageSize int) ([]domain.ChatMessage, int64, error)
	// Delete removes a project owned by userID and all of its messages.
	Delete(ctx context.Context, userID, projectID string) error
}

// ProjectHandlers groups the project endpoints.
type ProjectHandlers struct {
	svc ProjectService
}

// NewProjects constructs ProjectHandlers bound to the given service.
func NewProjects(svc ProjectService) *ProjectHandlers {
	return &ProjectHandlers{svc: svc}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListProjectsResponse wraps a page of projects and pagination information.
type ListProjectsResponse struct {
	Projects   []domain.Project `json:"projects"`
	Pagination Pagination       `json:"pagination"`
}

// ListMessagesResponse contains a page of messages and pagination metadata.
type ListMessagesResponse struct {
	Messages   []domain.ChatMessage `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// paginationFor derives the response metadata for a page.
func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// CreateProject godoc
// @ID          createProject
// @Summary     Create a new project
// @Description Creates a chat thread for the current user. The name starts as "Untitled" and is
// @Description renamed automatically after the first exchange. Creation may grant project-count achievements.
// @Tags        Projects
// @Produce     json
//
// @Security    BearerAuth
//
// @Success     201  {object} services.CreatedProject
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /projects [post]
func (h *ProjectHandlers) CreateProject(c *gin.Context) {
	created, err := h.svc.Create(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, created)
}

// ListProjects godoc
// @ID          listProjects
// @Summary     List projects (paginated)
// @Description Returns a page of the user's projects, newest first.
// @Tags        Projects
// @Produce     json
//
// @Security    BearerAuth
//
// @Param       page       query  int  false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListProjectsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /projects [get]
func (h *ProjectHandlers) ListProjects(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.svc.ListPage(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListProjectsResponse{
		Projects:   items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// DeleteProject godoc
// @ID          deleteProject
// @Summary     Delete a project
// @Description Removes a project owned by the current user. Messages are deleted first, then the
// @Description project row, so no orphaned messages survive a partial failure.
// @Tags        Projects
// @Produce     json
//
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Project ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Project not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /projects/{id} [delete]
func (h *ProjectHandlers) DeleteProject(c *gin.Context) {
	projectID := c.Param("id")
	if _, err := uuid.Parse(projectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project id must be a UUID")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), projectID); err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "project not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ListProjectMessages godoc
// @ID          listProjectMessages
// @Summary     List messages in a project
// @Description Returns a paginated list of messages for the given project in thread order.
// @Tags        Messages
// @Produce     json
//
// @Security    BearerAuth
//
// @Param       id         path   string  true  "Project ID (UUID)"  format(uuid)
// @Param       page       query  int     false "Page number"        minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"     minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListMessagesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Project not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /projects/{id}/messages [get]
func (h *ProjectHandlers) ListProjectMessages(c *gin.Context) {
	projectID := c.Param("id")
	if _, err := uuid.Parse(projectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project id must be a UUID")
		return
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.svc.ListMessagesPage(c.Request.Context(), middleware.UserID(c), projectID, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "project not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages:   items,
		Pagination: paginationFor(page, pageSize, total),
	})
}
