package services

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/storage"
	"go.uber.org/zap"
)

var ErrFileNotFound = newError(ErrNotFound, "file not found")

// sniffLen is how much of an upload is buffered for content detection.
const sniffLen = 3072

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Blob is an opened attachment ready to be streamed to a client.
type Blob struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Extension tables per attachment owner. Unlisted extensions are "other".
var (
	chatFileTypes = map[string]models.FileType{
		".jpg": models.FileTypeImage, ".jpeg": models.FileTypeImage, ".png": models.FileTypeImage,
		".gif": models.FileTypeImage, ".webp": models.FileTypeImage,
		".mp3": models.FileTypeAudio, ".wav": models.FileTypeAudio, ".ogg": models.FileTypeAudio, ".m4a": models.FileTypeAudio,
		".pdf": models.FileTypePDF,
		".doc": models.FileTypeDocument, ".docx": models.FileTypeDocument,
		".xlsx": models.FileTypeSpreadsheet, ".xls": models.FileTypeSpreadsheet,
	}
	taskFileTypes = map[string]models.FileType{
		".jpg": models.FileTypeImage, ".jpeg": models.FileTypeImage, ".png": models.FileTypeImage,
		".pdf": models.FileTypePDF,
		".doc": models.FileTypeDocument, ".docx": models.FileTypeDocument,
		".xlsx": models.FileTypeSpreadsheet, ".xls": models.FileTypeSpreadsheet,
	}
	noticeFileTypes = map[string]models.FileType{
		".jpg": models.FileTypeImage, ".jpeg": models.FileTypeImage, ".png": models.FileTypeImage, ".gif": models.FileTypeImage,
		".pdf": models.FileTypePDF,
	}
)

// classify tags a file by its extension.
func classify(table map[string]models.FileType, filename string) models.FileType {
	if t, ok := table[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return models.FileTypeOther
}

// attachmentStore writes uploads to the blob store and undoes the writes
// when the owning row cannot be persisted.
type attachmentStore struct {
	blobs  storage.BlobStore
	logger *zap.Logger
}

// store writes every upload under namespace. On failure the blobs already
// written are removed and no metadata is returned.
func (a attachmentStore) store(namespace string, table map[string]models.FileType, uploaderID uint64, uploads []Upload) ([]models.FileMeta, error) {
	metas := make([]models.FileMeta, 0, len(uploads))

	for _, up := range uploads {
		name := filepath.Base(strings.ReplaceAll(up.Filename, "\\", "/"))
		if name == "." || name == "/" || name == "" {
			a.discard(metas)
			return nil, validationf("attachment has no file name")
		}

		head := make([]byte, sniffLen)
		n, err := io.ReadFull(up.Content, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			a.discard(metas)
			return nil, storageError("read upload "+name, err)
		}
		head = head[:n]

		path, size, err := a.blobs.Store(namespace, name, io.MultiReader(bytes.NewReader(head), up.Content))
		if err != nil {
			a.discard(metas)
			return nil, storageError("store "+name, err)
		}

		uploader := uploaderID
		metas = append(metas, models.FileMeta{
			Filename:     name,
			FilePath:     path,
			FileType:     classify(table, name),
			ContentType:  mimetype.Detect(head).String(),
			FileSize:     size,
			UploadedByID: &uploader,
		})
	}

	return metas, nil
}

// discard removes the blobs behind metas. Used to compensate a failed row write.
func (a attachmentStore) discard(metas []models.FileMeta) {
	paths := make([]string, len(metas))
	for i, m := range metas {
		paths[i] = m.FilePath
	}
	a.remove(paths)
}

// remove deletes blobs best-effort; failures are logged only.
func (a attachmentStore) remove(paths []string) {
	for _, p := range paths {
		if err := a.blobs.Delete(p); err != nil {
			a.logger.Warn("failed to remove blob", zap.String("path", p), zap.Error(err))
		}
	}
}

// open streams a stored attachment. A vanished blob is ErrFileNotFound.
func (a attachmentStore) open(meta models.FileMeta) (*Blob, error) {
	body, err := a.blobs.Open(meta.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			a.logger.Warn("attachment blob missing", zap.String("path", meta.FilePath))
			return nil, ErrFileNotFound
		}
		return nil, storageError("open "+meta.Filename, err)
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Blob{
		Filename:    meta.Filename,
		ContentType: contentType,
		Size:        meta.FileSize,
		Body:        body,
	}, nil
}
