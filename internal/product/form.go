package product

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"atelier/internal/backend"
	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/notify"

	"go.uber.org/zap"
)

const maxImageBytes = 5 << 20

var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// priceInput is the as-typed constraint on the add form's price field:
// digits, at most one decimal point, at most two fractional digits.
var priceInput = regexp.MustCompile(`^\d*\.?\d{0,2}$`)

type ProductAdder interface {
	AddProduct(ctx context.Context, form backend.ProductForm) (string, error)
}

// AddForm holds the draft state of the add-product page and enforces the
// input-level constraints before anything reaches the backend. Controllers
// are single-threaded by design; the web layer serializes access.
type AddForm struct {
	client ProductAdder
	notify notify.Notifier
	logger *zap.Logger

	Name        string
	Description string
	Category    string
	SubCategory string
	BestSeller  bool

	price   string
	sizes   []string
	images  [domain.MaxImages]*backend.ImageUpload
	loading bool
}

func NewAddForm(client ProductAdder, notifier notify.Notifier, logger *zap.Logger) *AddForm {
	f := &AddForm{
		client: client,
		notify: notifier,
		logger: logger,
	}
	f.Reset()
	return f
}

// Reset restores every field to its default and clears image slots.
func (f *AddForm) Reset() {
	f.Name = ""
	f.Description = ""
	f.price = ""
	f.Category = domain.CategoryMen
	f.SubCategory = domain.SubCategoryTopWear
	f.BestSeller = false
	f.sizes = nil
	f.images = [domain.MaxImages]*backend.ImageUpload{}
}

func (f *AddForm) Price() string {
	return f.price
}

// SetPrice applies the as-typed rule; input that breaks it is ignored and the
// field keeps its previous value.
func (f *AddForm) SetPrice(value string) {
	if value == "" {
		f.price = ""
		return
	}
	if !priceInput.MatchString(value) {
		return
	}
	if n, err := strconv.ParseFloat(value, 64); err != nil || n < 0 {
		return
	}
	f.price = value
}

func (f *AddForm) Sizes() []string {
	return f.sizes
}

func (f *AddForm) HasSize(size string) bool {
	for _, s := range f.sizes {
		if s == size {
			return true
		}
	}
	return false
}

// ToggleSize flips a size in or out of the selection, preserving the order
// sizes were picked in.
func (f *AddForm) ToggleSize(size string) {
	if !domain.ValidSize(size) {
		return
	}
	for i, s := range f.sizes {
		if s == size {
			f.sizes = append(f.sizes[:i], f.sizes[i+1:]...)
			return
		}
	}
	f.sizes = append(f.sizes, size)
}

func (f *AddForm) Images() [domain.MaxImages]*backend.ImageUpload {
	return f.images
}

// AttachImage validates and stores an upload into the given slot (0-based).
// Oversized or wrong-type files are rejected with a notification and the
// slot keeps its previous content.
func (f *AddForm) AttachImage(slot int, img backend.ImageUpload) error {
	if slot < 0 || slot >= domain.MaxImages {
		return apperrors.NewValidationError("image", fmt.Sprintf("invalid image slot %d", slot))
	}
	if len(img.Data) > maxImageBytes {
		f.notify.Error("File size should be less than 5MB")
		return apperrors.NewValidationError("image", "File size should be less than 5MB")
	}
	if !allowedImageMIME[img.MIME] {
		f.notify.Error("Only JPG, JPEG, and PNG files are allowed")
		return apperrors.NewValidationError("image", "Only JPG, JPEG, and PNG files are allowed")
	}

	f.images[slot] = &img
	return nil
}

func (f *AddForm) RemoveImage(slot int) {
	if slot < 0 || slot >= domain.MaxImages {
		return
	}
	f.images[slot] = nil
}

func (f *AddForm) Loading() bool {
	return f.loading
}

// validate checks constraints in the fixed page order, short-circuiting on
// the first failure.
func (f *AddForm) validate() *apperrors.ValidationError {
	if strings.TrimSpace(f.Name) == "" {
		return apperrors.NewValidationError("name", "Please enter a product name")
	}
	if strings.TrimSpace(f.Description) == "" {
		return apperrors.NewValidationError("description", "Please enter a product description")
	}
	price, err := strconv.ParseFloat(f.price, 64)
	if f.price == "" || err != nil || price <= 0 {
		return apperrors.NewValidationError("price", "Please enter a valid price greater than 0")
	}
	if len(f.sizes) == 0 {
		return apperrors.NewValidationError("sizes", "Please select at least one size")
	}
	hasImage := false
	for _, img := range f.images {
		if img != nil {
			hasImage = true
			break
		}
	}
	if !hasImage {
		return apperrors.NewValidationError("images", "Please upload at least one image")
	}
	return nil
}

// Submit validates the draft and, if it passes, sends the product to the
// backend. Success resets the form; failure surfaces the message and leaves
// the draft untouched so the operator can retry.
func (f *AddForm) Submit(ctx context.Context) error {
	if f.loading {
		return nil
	}

	if ve := f.validate(); ve != nil {
		f.notify.Error(ve.Message)
		return ve
	}

	f.loading = true
	defer func() { f.loading = false }()

	price, _ := strconv.ParseFloat(f.price, 64)
	form := backend.ProductForm{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Price:       strconv.FormatFloat(price, 'f', 2, 64),
		Category:    f.Category,
		SubCategory: f.SubCategory,
		Sizes:       f.sizes,
		BestSeller:  f.BestSeller,
		Images:      f.images,
	}

	if _, err := f.client.AddProduct(ctx, form); err != nil {
		f.logger.Warn("add product failed", zap.Error(err))
		f.notify.Error(messageOr(err, "Error adding product"))
		return err
	}

	f.notify.Success("Product added successfully!")
	f.Reset()
	return nil
}

// messageOr prefers the backend's own message and falls back to a generic
// one for transport failures.
func messageOr(err error, fallback string) string {
	if re, ok := apperrors.IsRemoteError(err); ok && re.Message != "" {
		return re.Message
	}
	if ue, ok := apperrors.IsUnauthorizedError(err); ok && ue.Message != "" {
		return ue.Message
	}
	if ve, ok := apperrors.IsValidationError(err); ok && ve.Message != "" {
		return ve.Message
	}
	return fallback
}
