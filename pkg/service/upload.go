package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/zfogg/wayfarer/cli/pkg/api"
	"github.com/zfogg/wayfarer/cli/pkg/formatter"
	"github.com/zfogg/wayfarer/cli/pkg/output"
	"github.com/zfogg/wayfarer/cli/pkg/upload"
)

const progressWidth = 30

// UploadService sends image attachments and draws their progress
type UploadService struct {
	uploader *upload.Uploader
}

// NewUploadService creates an upload service enforcing limits
func NewUploadService(limits upload.Limits) *UploadService {
	return &UploadService{uploader: upload.NewUploader(limits)}
}

// Upload sends paths in one request and returns the stored files
func (us *UploadService) Upload(ctx context.Context, paths []string) ([]api.UploadedFile, error) {
	var onProgress func(upload.Progress)
	if !output.IsJSON() {
		lastPercent := -1
		onProgress = func(p upload.Progress) {
			percent := int(p.Percent())
			if percent == lastPercent && !p.Done {
				return
			}
			lastPercent = percent
			fmt.Fprintf(output.Out, "\r%s", progressLine(p))
			if p.Done {
				fmt.Fprintln(output.Out)
			}
		}
	}

	files, err := us.uploader.Upload(ctx, paths, onProgress)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// UploadAndReport uploads paths and prints the stored URLs
func (us *UploadService) UploadAndReport(ctx context.Context, paths []string) error {
	files, err := us.Upload(ctx, paths)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Filename, f.ContentType, fmt.Sprintf("%.1f KB", float64(f.Size)/1024), f.URL})
	}
	if !output.IsJSON() {
		formatter.PrintSuccess("✓ Uploaded %s", formatter.Plural(len(files), "file"))
	}
	return output.PrintList("", files, []string{"FILE", "TYPE", "SIZE", "URL"}, rows)
}

func progressLine(p upload.Progress) string {
	filled := int(p.Percent() * progressWidth / 100)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressWidth-filled)

	label := "done"
	if !p.Done {
		label = fmt.Sprintf("%d/%d %s", p.FileIndex+1, p.FileCount, formatter.Truncate(p.File, 24))
	}
	return fmt.Sprintf("%s %3.0f%%  %-32s", bar, p.Percent(), label)
}
