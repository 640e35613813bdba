package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"resume-render/internal/config"
	"resume-render/internal/domain"
	"resume-render/internal/model"
	"resume-render/internal/render"
	"resume-render/pkg/infrastructure"
)

type renderOptions struct {
	template string
	data     string
	format   string
	out      string
	strict   bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a resume file with a template",
		Example: "  render render --template modern --data resume.yaml --format pdf --out resume.pdf\n" +
			"  render render --template classic --format html",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.template, "template", "t", string(domain.TemplateClassic), "template id")
	f.StringVarP(&opts.data, "data", "d", "", "resume file (.json, .yaml or .yml); placeholder resume when empty")
	f.StringVarP(&opts.format, "format", "f", "html", "output format: html, png or pdf")
	f.StringVarP(&opts.out, "out", "o", "", "output file; stdout when empty")
	f.BoolVar(&opts.strict, "strict", false, "fail when the resume does not satisfy the schema")
	return cmd
}

func runRender(ctx context.Context, cmd *cobra.Command, opts renderOptions) error {
	id := domain.TemplateID(opts.template)
	if _, ok := render.Find(id); !ok {
		return fmt.Errorf("%w: %s", render.ErrTemplateNotFound, id)
	}

	data := model.Default()
	if opts.data != "" {
		var err error
		if data, err = loadResume(opts.data, opts.strict); err != nil {
			return err
		}
	}

	out, err := renderFormat(ctx, id, data, opts.format)
	if err != nil {
		return err
	}
	if opts.out == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.out, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", opts.out)
	return nil
}

func renderFormat(ctx context.Context, id domain.TemplateID, data model.ResumeData, format string) ([]byte, error) {
	doc, err := render.Document(id, data)
	if err != nil {
		return nil, err
	}
	if format == "html" {
		return []byte(doc), nil
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	exporter := infrastructure.NewChromeExporter(cfg.Export.Path)
	switch format {
	case "png":
		return exporter.ExportImage(ctx, doc)
	case "pdf":
		return exporter.ExportDocument(ctx, doc)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// loadResume reads a JSON or YAML resume file. Missing or malformed fields
// fall back to their defaults unless strict is set, in which case the file
// must satisfy the schema as written.
func loadResume(path string, strict bool) (model.ResumeData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return model.ResumeData{}, err
	}
	return decodeResume(b, filepath.Ext(path), strict)
}

func decodeResume(b []byte, ext string, strict bool) (model.ResumeData, error) {
	var raw interface{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return model.ResumeData{}, fmt.Errorf("decode resume yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &raw); err != nil {
			return model.ResumeData{}, fmt.Errorf("decode resume json: %w", err)
		}
	default:
		return model.ResumeData{}, fmt.Errorf("unsupported resume file type %q", ext)
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return model.ResumeData{}, model.ErrNotObject
	}
	if strict {
		if err := model.ValidateMap(m); err != nil {
			return model.ResumeData{}, err
		}
	}
	return model.Parse(m), nil
}
