// Package upload checks image attachments against the client-side limits
// and sends them to the backend in one multipart request.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/config"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

const megabyte = 1 << 20

// DefaultAllowedTypes are the image formats the backend accepts
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Limits bound what a single upload may contain
type Limits struct {
	MaxFiles     int
	MaxFileBytes int64
	AllowedTypes []string
}

// LimitsFromConfig reads upload.max_files and upload.max_file_mb
func LimitsFromConfig() Limits {
	return Limits{
		MaxFiles:     config.GetInt("upload.max_files"),
		MaxFileBytes: int64(config.GetInt("upload.max_file_mb")) * megabyte,
		AllowedTypes: DefaultAllowedTypes,
	}
}

// File is a local file that passed validation
type File struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// Validate checks paths against limits and sniffs each file's content type.
// The first violation is returned as a *errors.CLIError.
func Validate(paths []string, limits Limits) ([]File, error) {
	if len(paths) == 0 {
		return nil, clierrors.ValidationError("files", "select at least one file")
	}
	if limits.MaxFiles > 0 && len(paths) > limits.MaxFiles {
		return nil, clierrors.UploadCountError(len(paths), limits.MaxFiles)
	}

	allowed := limits.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}

	files := make([]File, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, clierrors.FileNotFoundError(path)
		}

		name := filepath.Base(path)
		if limits.MaxFileBytes > 0 && info.Size() > limits.MaxFileBytes {
			return nil, clierrors.UploadSizeError(name,
				float64(info.Size())/megabyte, int(limits.MaxFileBytes/megabyte))
		}

		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		contentType, ok := matchType(mtype, allowed)
		if !ok {
			return nil, clierrors.UploadTypeError(name, mtype.String(), allowed)
		}

		files = append(files, File{Path: path, Name: name, Size: info.Size(), ContentType: contentType})
	}
	return files, nil
}

func matchType(mtype *mimetype.MIME, allowed []string) (string, bool) {
	for _, t := range allowed {
		if mtype.Is(t) {
			return t, true
		}
	}
	return "", false
}

// Progress describes how much of an upload has been handed to the transport
type Progress struct {
	File      string
	FileIndex int
	FileCount int
	Sent      int64
	Total     int64
	Done      bool
}

// Percent returns Sent as a share of Total
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Sent) * 100 / float64(p.Total)
}

// Uploader validates and sends attachments
type Uploader struct {
	limits Limits
	newKey func() string
}

// NewUploader creates an uploader enforcing limits
func NewUploader(limits Limits) *Uploader {
	return &Uploader{limits: limits, newKey: uuid.NewString}
}

// Upload validates paths and posts them in one request. onProgress, when
// set, sees monotonically growing byte counts and a final Done event once
// the server has stored the files.
func (u *Uploader) Upload(ctx context.Context, paths []string, onProgress func(Progress)) ([]api.UploadedFile, error) {
	files, err := Validate(paths, u.limits)
	if err != nil {
		return nil, err
	}
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}

	tracker := &tracker{total: total, count: len(files), report: onProgress}
	parts := make([]api.UploadPart, 0, len(files))
	for i, f := range files {
		fh, err := os.Open(f.Path)
		if err != nil {
			return nil, clierrors.FileNotFoundError(f.Path)
		}
		defer fh.Close()

		parts = append(parts, api.UploadPart{
			Filename:    f.Name,
			ContentType: f.ContentType,
			Reader:      &countingReader{r: fh, tracker: tracker, file: f.Name, index: i},
		})
	}

	key := u.newKey()
	logger.Debug("Starting upload", "files", len(files), "bytes", total, "idempotency_key", key)

	resp, err := api.UploadFiles(ctx, parts, key)
	if err != nil {
		return nil, err
	}

	onProgress(Progress{FileIndex: len(files) - 1, FileCount: len(files), Sent: total, Total: total, Done: true})
	return resp.Files, nil
}

// tracker accumulates bytes read across every part of one upload
type tracker struct {
	sent   int64
	total  int64
	count  int
	report func(Progress)
}

type countingReader struct {
	r       io.Reader
	tracker *tracker
	file    string
	index   int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		t := c.tracker
		t.sent += int64(n)
		// the Done event is the only one allowed to reach the total
		sent := min(t.sent, t.total-1)
		if sent < 0 {
			sent = 0
		}
		t.report(Progress{File: c.file, FileIndex: c.index, FileCount: t.count, Sent: sent, Total: t.total})
	}
	return n, err
}
