package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/services"
)

// DirectoryHandler serves the department and designation lists.
type DirectoryHandler struct {
	directoryService *services.DirectoryService
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directoryService *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *DirectoryHandler) ListDepartments(c *gin.Context) {
	depts, err := h.directoryService.ListDepartments()
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": depts})
}

func (h *DirectoryHandler) AddDepartment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dept, err := h.directoryService.AddDepartment(actor, req.Name)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusCreated, dept)
}

func (h *DirectoryHandler) DeleteDepartment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.directoryService.DeleteDepartment(actor, id); err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Department deleted successfully"})
}

func (h *DirectoryHandler) ListDesignations(c *gin.Context) {
	desigs, err := h.directoryService.ListDesignations()
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"designations": desigs})
}

func (h *DirectoryHandler) AddDesignation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	desig, err := h.directoryService.AddDesignation(actor, req.Name)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusCreated, desig)
}

func (h *DirectoryHandler) DeleteDesignation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.directoryService.DeleteDesignation(actor, id); err != nil {
		apierrors.FromService(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Designation deleted successfully"})
}
