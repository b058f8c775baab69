package product

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"atelier/internal/backend"
	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/metrics"
	"atelier/internal/notify"

	"go.uber.org/zap"
)

type CatalogClient interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	EditProduct(ctx context.Context, form backend.ProductForm) (string, error)
	RemoveProduct(ctx context.Context, id string) (string, error)
}

type SessionGate interface {
	Authenticated() bool
}

// editPriceInput is the looser as-typed rule of the edit modal: digits and at
// most one decimal point, fractional digits unbounded.
var editPriceInput = regexp.MustCompile(`^\d*\.?\d*$`)

// EditDraft is the snapshot of a product taken when the editor opens. Price
// is coerced to a string and bestSeller to a plain bool so the draft edits
// like form state, not like the fetched document.
type EditDraft struct {
	ID          string
	Name        string
	Description string
	Price       string
	Category    string
	SubCategory string
	Sizes       []string
	BestSeller  bool

	// CurrentImages are the stored image URLs, shown next to the upload
	// inputs; they are never sent back.
	CurrentImages []string
}

// ListView owns the fetched product collection and its client-side filters.
// The collection only ever changes through Resync; mutations never patch it
// locally.
type ListView struct {
	client  CatalogClient
	session SessionGate
	notify  notify.Notifier
	logger  *zap.Logger

	products []domain.Product
	search   string
	category string
	draft    *EditDraft
	loading  bool
}

func NewListView(client CatalogClient, session SessionGate, notifier notify.Notifier, logger *zap.Logger) *ListView {
	return &ListView{
		client:  client,
		session: session,
		notify:  notifier,
		logger:  logger,
		loading: true,
	}
}

// Resync replaces the collection with a full re-fetch. It is the only
// synchronization mechanism: every successful mutation ends here.
func (v *ListView) Resync(ctx context.Context) error {
	v.loading = true
	defer func() { v.loading = false }()

	metrics.CollectionResyncs.WithLabelValues("products").Inc()

	products, err := v.client.ListProducts(ctx)
	if err != nil {
		if _, ok := apperrors.IsUnauthorizedError(err); ok {
			v.notify.Error("Session expired. Please login again.")
			return err
		}
		v.logger.Warn("fetching products failed", zap.Error(err))
		v.notify.Error(messageOr(err, "Error fetching products"))
		return err
	}

	v.products = products
	return nil
}

// Products returns the collection exactly as the server returned it.
func (v *ListView) Products() []domain.Product {
	return v.products
}

func (v *ListView) Loading() bool {
	return v.loading
}

func (v *ListView) Search() string {
	return v.search
}

func (v *ListView) SetSearch(term string) {
	v.search = term
}

func (v *ListView) SelectedCategory() string {
	return v.category
}

func (v *ListView) SetCategory(category string) {
	v.category = category
}

// Categories returns the distinct categories present in the current
// collection, in fetch order. Recomputed on every call, never cached.
func (v *ListView) Categories() []string {
	seen := make(map[string]struct{}, len(v.products))
	var out []string
	for _, p := range v.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Filtered applies the search term (case-insensitive substring against name
// or category) and the selected-category filter, then reverses the result so
// newest-appended items surface first. The underlying collection is not
// touched.
func (v *ListView) Filtered() []domain.Product {
	term := strings.ToLower(strings.TrimSpace(v.search))

	var matched []domain.Product
	for _, p := range v.products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) {
			continue
		}
		if v.category != "" && p.Category != v.category {
			continue
		}
		matched = append(matched, p)
	}

	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched
}

// BeginEdit snapshots the target product into a draft. Opening the editor on
// an identifier not in the collection is a validation failure.
func (v *ListView) BeginEdit(id string) error {
	for _, p := range v.products {
		if p.ID != id {
			continue
		}
		sizes := make([]string, len(p.Sizes))
		copy(sizes, p.Sizes)

		v.draft = &EditDraft{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Price:         strconv.FormatFloat(p.Price, 'f', -1, 64),
			Category:      p.Category,
			SubCategory:   p.SubCategory,
			Sizes:         sizes,
			BestSeller:    p.BestSeller,
			CurrentImages: p.Images,
		}
		return nil
	}
	return apperrors.NewValidationError("id", "product not found")
}

func (v *ListView) Draft() *EditDraft {
	return v.draft
}

func (v *ListView) CancelEdit() {
	v.draft = nil
}

// SetDraftPrice applies the edit modal's as-typed price rule.
func (v *ListView) SetDraftPrice(value string) {
	if v.draft == nil {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		v.draft.Price = ""
		return
	}
	if !editPriceInput.MatchString(value) {
		return
	}
	if n, err := strconv.ParseFloat(value, 64); err != nil || n < 0 {
		return
	}
	v.draft.Price = value
}

// SubmitEdit re-validates the draft and sends it to the backend. Uploads map
// to image1..image4 by their position in the input list, not by which stored
// slot the operator meant to replace; this mirrors the page it came from.
// Success closes the editor and resyncs; failure leaves both the draft and
// the collection untouched.
func (v *ListView) SubmitEdit(ctx context.Context, uploads []*backend.ImageUpload) error {
	if v.draft == nil {
		return apperrors.NewValidationError("draft", "no product is being edited")
	}

	price, err := strconv.ParseFloat(v.draft.Price, 64)
	if err != nil || price <= 0 {
		v.notify.Error("Please enter a valid price greater than 0")
		return apperrors.NewValidationError("price", "Please enter a valid price greater than 0")
	}

	form := backend.ProductForm{
		ID:          v.draft.ID,
		Name:        v.draft.Name,
		Description: v.draft.Description,
		Price:       v.draft.Price,
		Category:    v.draft.Category,
		SubCategory: v.draft.SubCategory,
		Sizes:       v.draft.Sizes,
		BestSeller:  v.draft.BestSeller,
	}
	for i, up := range uploads {
		if i >= domain.MaxImages {
			break
		}
		form.Images[i] = up
	}

	msg, err := v.client.EditProduct(ctx, form)
	if err != nil {
		v.logger.Warn("edit product failed",
			zap.String("productId", v.draft.ID),
			zap.Error(err))
		v.notify.Error(messageOr(err, "Error updating product"))
		return err
	}

	if msg == "" {
		msg = "Product updated"
	}
	v.notify.Success(msg)
	v.draft = nil
	return v.Resync(ctx)
}

// Remove hard-deletes a product after interactive confirmation. A declined
// confirmation is a no-op with no network call.
func (v *ListView) Remove(ctx context.Context, id string, confirm func() bool) error {
	if !v.session.Authenticated() {
		v.notify.Error("Authentication required")
		return apperrors.NewUnauthorizedError("Authentication required")
	}

	if !confirm() {
		return nil
	}

	msg, err := v.client.RemoveProduct(ctx, id)
	if err != nil {
		if _, ok := apperrors.IsUnauthorizedError(err); ok {
			v.notify.Error("Session expired. Please login again.")
			return err
		}
		v.logger.Warn("remove product failed", zap.String("productId", id), zap.Error(err))
		v.notify.Error(messageOr(err, "Error removing product"))
		return err
	}

	if msg == "" {
		msg = "Product removed"
	}
	v.notify.Success(msg)
	return v.Resync(ctx)
}
