package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the YAML representation of a catalog fixture. Sections are
// imported in dependency order regardless of their order in the file.
type Document struct {
	Locales       []SaveLocaleRequest       `yaml:"locales"`
	Channels      []SaveChannelRequest      `yaml:"channels"`
	Attributes    []SaveAttributeRequest    `yaml:"attributes"`
	Families      []SaveFamilyRequest       `yaml:"families"`
	FileInfos     []SaveFileInfoRequest     `yaml:"files"`
	ProductModels []SaveProductModelRequest `yaml:"product_models"`
	Products      []SaveProductRequest      `yaml:"products"`
}

// ImportSummary counts the records saved by an import.
type ImportSummary struct {
	Locales       int
	Channels      int
	Attributes    int
	Families      int
	FileInfos     int
	ProductModels int
	Products      int
}

// DecodeDocument reads a YAML catalog document.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("decode catalog document: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads a YAML catalog document from disk.
func LoadDocument(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeDocument(file)
}

// Import saves every record of the document through the service. It stops at
// the first failure and reports the record that caused it.
func Import(ctx context.Context, svc Service, doc *Document) (ImportSummary, error) {
	var summary ImportSummary
	if doc == nil {
		return summary, nil
	}
	for _, req := range doc.Locales {
		if _, err := svc.SaveLocale(ctx, req); err != nil {
			return summary, fmt.Errorf("import locale %q: %w", req.Code, err)
		}
		summary.Locales++
	}
	for _, req := range doc.Channels {
		if _, err := svc.SaveChannel(ctx, req); err != nil {
			return summary, fmt.Errorf("import channel %q: %w", req.Code, err)
		}
		summary.Channels++
	}
	for _, req := range doc.Attributes {
		if _, err := svc.SaveAttribute(ctx, req); err != nil {
			return summary, fmt.Errorf("import attribute %q: %w", req.Code, err)
		}
		summary.Attributes++
	}
	for _, req := range doc.Families {
		if _, err := svc.SaveFamily(ctx, req); err != nil {
			return summary, fmt.Errorf("import family %q: %w", req.Code, err)
		}
		summary.Families++
	}
	for _, req := range doc.FileInfos {
		if _, err := svc.SaveFileInfo(ctx, req); err != nil {
			return summary, fmt.Errorf("import file %q: %w", req.Key, err)
		}
		summary.FileInfos++
	}
	for _, req := range doc.ProductModels {
		if _, err := svc.SaveProductModel(ctx, req); err != nil {
			return summary, fmt.Errorf("import product model %q: %w", req.Code, err)
		}
		summary.ProductModels++
	}
	for _, req := range doc.Products {
		if _, err := svc.SaveProduct(ctx, req); err != nil {
			return summary, fmt.Errorf("import product %q: %w", req.Identifier, err)
		}
		summary.Products++
	}
	return summary, nil
}
