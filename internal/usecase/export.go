package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"resume-render/internal/domain"
	"resume-render/internal/logger"
	"resume-render/internal/model"
	"resume-render/internal/render"
)

// Format is an export file type.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ErrUnsupportedFormat is returned for formats other than png and pdf.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// ExportFile is a finished export.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportService turns a draft into a downloadable file. It always renders the
// logical page itself, never a scaled preview.
type ExportService struct {
	exporter Exporter
	archive  Archive
	log      *logger.Logger
}

// NewExportService creates the service. archive may be nil.
func NewExportService(exporter Exporter, archive Archive, log *logger.Logger) *ExportService {
	return &ExportService{exporter: exporter, archive: archive, log: log}
}

func (s *ExportService) Export(ctx context.Context, sess domain.Session, id domain.TemplateID, data model.ResumeData, f Format) (ExportFile, error) {
	if f != FormatPNG && f != FormatPDF {
		return ExportFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	doc, err := render.Document(id, data)
	if err != nil {
		return ExportFile{}, err
	}

	var out []byte
	if f == FormatPNG {
		out, err = s.exporter.ExportImage(ctx, doc)
	} else {
		out, err = s.exporter.ExportDocument(ctx, doc)
	}
	if err != nil {
		return ExportFile{}, fmt.Errorf("export %s: %w", f, err)
	}

	file := ExportFile{
		Name:        fmt.Sprintf("resume-%s.%s", id, f),
		ContentType: f.ContentType(),
		Data:        out,
	}
	if s.archive != nil {
		key := fmt.Sprintf("exports/%s/%s/%s.%s", sess.DeviceID, id, uuid.NewString(), f)
		if err := s.archive.Put(ctx, key, out, file.ContentType); err != nil {
			s.log.Warn("failed to archive export", "key", key, "error", err)
		}
	}
	return file, nil
}
