package api

import (
	"context"
	"io"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

// IdempotencyKeyHeader lets the backend drop a replayed upload
const IdempotencyKeyHeader = "Idempotency-Key"

// UploadPart is one file of a multipart upload
type UploadPart struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// UploadFiles posts every part under the "files" field in a single
// multipart request.
func UploadFiles(ctx context.Context, parts []UploadPart, idempotencyKey string) (*UploadResponse, error) {
	logger.Debug("Uploading files", "count", len(parts), "idempotency_key", idempotencyKey)

	fields := make([]*resty.MultipartField, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, &resty.MultipartField{
			Param:       "files",
			FileName:    p.Filename,
			ContentType: p.ContentType,
			Reader:      p.Reader,
		})
	}

	var response UploadResponse
	req := newRequest(ctx).
		SetMultipartFields(fields...).
		SetResult(&response)
	if idempotencyKey != "" {
		req.SetHeader(IdempotencyKeyHeader, idempotencyKey)
	}

	if _, err := send(req, resty.MethodPost, "/api/v1/uploads"); err != nil {
		return nil, err
	}

	logger.Debug("Files uploaded", "count", len(response.Files))
	return &response, nil
}
