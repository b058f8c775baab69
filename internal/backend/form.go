package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"

	"atelier/internal/domain"
)

// ImageUpload is an image file selected by the operator, already read into
// memory by the presentation layer.
type ImageUpload struct {
	Filename string
	MIME     string
	Data     []byte
}

// ProductForm is the multipart payload for the add and edit endpoints.
// Images are keyed by position: slot i is sent as the field image(i+1),
// and empty slots are omitted entirely so the backend keeps the existing
// image for that position on edit.
type ProductForm struct {
	ID          string
	Name        string
	Description string
	Price       string
	Category    string
	SubCategory string
	Sizes       []string
	BestSeller  bool
	Images      [domain.MaxImages]*ImageUpload
}

func (f ProductForm) encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	sizes, err := json.Marshal(f.Sizes)
	if err != nil {
		return nil, "", fmt.Errorf("encoding sizes: %w", err)
	}

	fields := []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"description", f.Description},
		{"price", f.Price},
		{"category", f.Category},
		{"subCategory", f.SubCategory},
		{"bestSeller", strconv.FormatBool(f.BestSeller)},
		{"sizes", string(sizes)},
	}
	if f.ID != "" {
		fields = append([]struct {
			name  string
			value string
		}{{"id", f.ID}}, fields...)
	}

	for _, field := range fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", field.name, err)
		}
	}

	for i, img := range f.Images {
		if img == nil {
			continue
		}
		part, err := w.CreateFormFile("image"+strconv.Itoa(i+1), img.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("writing image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return body, w.FormDataContentType(), nil
}

// HasImage reports whether any slot carries an upload.
func (f ProductForm) HasImage() bool {
	for _, img := range f.Images {
		if img != nil {
			return true
		}
	}
	return false
}
