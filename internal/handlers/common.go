package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/workforce-portal/internal/errors"
	"github.com/yukikurage/workforce-portal/internal/middleware"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/services"
)

// attachmentsField is the multipart field carrying uploaded files.
const attachmentsField = "attachments"

// currentActor returns the user loaded by middleware.LoadActor, answering 401 when absent.
func currentActor(c *gin.Context) (*models.User, bool) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return actor, true
}

// idParam parses a numeric path parameter, answering 400 when malformed.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", strings.ReplaceAll(name, "_", " ")))
		return 0, false
	}
	return id, true
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formUploads opens every file of the attachments field. The returned
// closer must be called once the service is done with the readers.
func formUploads(c *gin.Context) ([]services.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, err
	}

	headers := form.File[attachmentsField]
	uploads := make([]services.Upload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, services.Upload{Filename: fh.Filename, Content: f})
	}

	return uploads, closeAll, nil
}

// formList reads a repeated form field, also splitting comma-separated values.
func formList(c *gin.Context, field string) []string {
	var values []string
	for _, v := range c.PostFormArray(field) {
		values = append(values, strings.Split(v, ",")...)
	}
	return values
}

// sendBlob streams an attachment as a download.
func sendBlob(c *gin.Context, blob *services.Blob) {
	defer blob.Body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.Filename))
	c.DataFromReader(http.StatusOK, blob.Size, blob.ContentType, blob.Body, nil)
}
