package product

import (
	"bytes"
	"context"
	"testing"

	"atelier/internal/backend"
	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock implementations

type mockAdder struct {
	AddProductFunc func(ctx context.Context, form backend.ProductForm) (string, error)
	calls          int
}

func (m *mockAdder) AddProduct(ctx context.Context, form backend.ProductForm) (string, error) {
	m.calls++
	if m.AddProductFunc == nil {
		return "", nil
	}
	return m.AddProductFunc(ctx, form)
}

func validImage() backend.ImageUpload {
	return backend.ImageUpload{Filename: "front.jpg", MIME: "image/jpeg", Data: []byte("jpeg")}
}

func filledForm(adder *mockAdder, flash *notify.Flash) *AddForm {
	f := NewAddForm(adder, flash, zap.NewNop())
	f.Name = "Tee"
	f.Description = "Plain cotton tee"
	f.SetPrice("19.99")
	f.ToggleSize("S")
	f.ToggleSize("M")
	_ = f.AttachImage(0, validImage())
	return f
}

// Tests

func TestAddForm_Defaults(t *testing.T) {
	f := NewAddForm(&mockAdder{}, notify.NewFlash(), zap.NewNop())

	assert.Equal(t, domain.CategoryMen, f.Category)
	assert.Equal(t, domain.SubCategoryTopWear, f.SubCategory)
	assert.Equal(t, "", f.Price())
	assert.Empty(t, f.Sizes())
	assert.False(t, f.BestSeller)
	assert.False(t, f.Loading())
}

func TestAddForm_SetPrice_TypedRule(t *testing.T) {
	cases := []struct {
		name  string
		typed string
		want  string
	}{
		{"two decimals accepted", "19.99", "19.99"},
		{"trailing point accepted", "19.", "19."},
		{"three decimals ignored", "19.999", ""},
		{"letters ignored", "abc", ""},
		{"negative ignored", "-5", ""},
		{"zero accepted as typed", "0", "0"},
		{"empty clears", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewAddForm(&mockAdder{}, notify.NewFlash(), zap.NewNop())
			f.SetPrice(tc.typed)
			assert.Equal(t, tc.want, f.Price())
		})
	}
}

func TestAddForm_SetPrice_KeepsPreviousValueOnBadInput(t *testing.T) {
	f := NewAddForm(&mockAdder{}, notify.NewFlash(), zap.NewNop())
	f.SetPrice("19.9")
	f.SetPrice("19.9x")

	assert.Equal(t, "19.9", f.Price())
}

func TestAddForm_ToggleSize(t *testing.T) {
	f := NewAddForm(&mockAdder{}, notify.NewFlash(), zap.NewNop())

	f.ToggleSize("M")
	f.ToggleSize("S")
	assert.Equal(t, []string{"M", "S"}, f.Sizes(), "selection order preserved")
	assert.True(t, f.HasSize("M"))

	f.ToggleSize("M")
	assert.Equal(t, []string{"S"}, f.Sizes())

	f.ToggleSize("XXL")
	assert.Equal(t, []string{"S"}, f.Sizes(), "unknown sizes ignored")
}

func TestAddForm_AttachImage_RejectsOversizedFile(t *testing.T) {
	flash := notify.NewFlash()
	f := NewAddForm(&mockAdder{}, flash, zap.NewNop())

	err := f.AttachImage(0, backend.ImageUpload{
		Filename: "huge.jpg",
		MIME:     "image/jpeg",
		Data:     bytes.Repeat([]byte("x"), maxImageBytes+1),
	})

	require.Error(t, err)
	assert.Nil(t, f.Images()[0])
	toasts := flash.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "File size should be less than 5MB", toasts[0].Message)
}

func TestAddForm_AttachImage_RejectsWrongType(t *testing.T) {
	flash := notify.NewFlash()
	f := NewAddForm(&mockAdder{}, flash, zap.NewNop())

	err := f.AttachImage(1, backend.ImageUpload{Filename: "anim.gif", MIME: "image/gif", Data: []byte("gif")})

	require.Error(t, err)
	assert.Nil(t, f.Images()[1])
	toasts := flash.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Only JPG, JPEG, and PNG files are allowed", toasts[0].Message)
}

func TestAddForm_AttachImage_StoresValidUpload(t *testing.T) {
	f := NewAddForm(&mockAdder{}, notify.NewFlash(), zap.NewNop())

	require.NoError(t, f.AttachImage(2, validImage()))
	require.NotNil(t, f.Images()[2])
	assert.Equal(t, "front.jpg", f.Images()[2].Filename)

	f.RemoveImage(2)
	assert.Nil(t, f.Images()[2])
}

func TestAddForm_Submit_ValidationOrder(t *testing.T) {
	adder := &mockAdder{}
	flash := notify.NewFlash()
	f := NewAddForm(adder, flash, zap.NewNop())
	ctx := context.Background()

	steps := []struct {
		wantMessage string
		fix         func()
	}{
		{"Please enter a product name", func() { f.Name = "  Tee  " }},
		{"Please enter a product description", func() { f.Description = "Plain cotton tee" }},
		{"Please enter a valid price greater than 0", func() { f.SetPrice("19.99") }},
		{"Please select at least one size", func() { f.ToggleSize("S") }},
		{"Please upload at least one image", func() { _ = f.AttachImage(0, validImage()) }},
	}

	for _, step := range steps {
		err := f.Submit(ctx)
		require.Error(t, err)
		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, step.wantMessage, ve.Message)

		toasts := flash.Drain()
		require.Len(t, toasts, 1)
		assert.Equal(t, step.wantMessage, toasts[0].Message)

		step.fix()
	}

	assert.Equal(t, 0, adder.calls, "validation failures must not reach the network")
	require.NoError(t, f.Submit(ctx))
	assert.Equal(t, 1, adder.calls)
}

func TestAddForm_Submit_RejectsBadPricesBeforeNetwork(t *testing.T) {
	for _, typed := range []string{"0", "-5", "abc"} {
		t.Run(typed, func(t *testing.T) {
			adder := &mockAdder{}
			f := filledForm(adder, notify.NewFlash())
			f.price = "" // clear the valid price from the helper
			f.SetPrice(typed)

			err := f.Submit(context.Background())

			require.Error(t, err)
			ve, ok := apperrors.IsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, "Please enter a valid price greater than 0", ve.Message)
			assert.Equal(t, 0, adder.calls)
		})
	}
}

func TestAddForm_Submit_SuccessSendsPayloadAndResets(t *testing.T) {
	var sent backend.ProductForm
	adder := &mockAdder{
		AddProductFunc: func(ctx context.Context, form backend.ProductForm) (string, error) {
			sent = form
			return "Product added", nil
		},
	}
	flash := notify.NewFlash()
	f := filledForm(adder, flash)
	f.Name = "  Tee  "
	f.BestSeller = true

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, "Tee", sent.Name, "name trimmed")
	assert.Equal(t, "19.99", sent.Price, "price formatted to 2 decimals")
	assert.Equal(t, []string{"S", "M"}, sent.Sizes)
	assert.True(t, sent.BestSeller)
	assert.NotNil(t, sent.Images[0])
	assert.Equal(t, "", sent.ID)

	// Form reset to defaults, previews cleared.
	assert.Equal(t, "", f.Name)
	assert.Equal(t, "", f.Price())
	assert.Equal(t, domain.CategoryMen, f.Category)
	assert.Equal(t, domain.SubCategoryTopWear, f.SubCategory)
	assert.Empty(t, f.Sizes())
	assert.False(t, f.BestSeller)
	assert.Nil(t, f.Images()[0])

	toasts := flash.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelSuccess, toasts[0].Level)
	assert.Equal(t, "Product added successfully!", toasts[0].Message)
}

func TestAddForm_Submit_PriceNormalizedToTwoDecimals(t *testing.T) {
	var sent backend.ProductForm
	adder := &mockAdder{
		AddProductFunc: func(ctx context.Context, form backend.ProductForm) (string, error) {
			sent = form
			return "", nil
		},
	}
	f := filledForm(adder, notify.NewFlash())
	f.price = ""
	f.SetPrice("20")

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "20.00", sent.Price)
}

func TestAddForm_Submit_FailurePreservesState(t *testing.T) {
	adder := &mockAdder{
		AddProductFunc: func(ctx context.Context, form backend.ProductForm) (string, error) {
			return "", apperrors.NewRemoteError("duplicate product name")
		},
	}
	flash := notify.NewFlash()
	f := filledForm(adder, flash)

	err := f.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Tee", f.Name, "form not reset on failure")
	assert.Equal(t, "19.99", f.Price())
	assert.Equal(t, []string{"S", "M"}, f.Sizes())
	assert.NotNil(t, f.Images()[0])

	toasts := flash.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "duplicate product name", toasts[0].Message)
}

func TestAddForm_Submit_TransportFailureFallbackMessage(t *testing.T) {
	adder := &mockAdder{
		AddProductFunc: func(ctx context.Context, form backend.ProductForm) (string, error) {
			return "", apperrors.NewTransportError("request failed", nil)
		},
	}
	flash := notify.NewFlash()
	f := filledForm(adder, flash)

	require.Error(t, f.Submit(context.Background()))

	toasts := flash.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Error adding product", toasts[0].Message)
}

func TestAddForm_Submit_GuardsAgainstDoubleSubmit(t *testing.T) {
	f := filledForm(&mockAdder{}, notify.NewFlash())
	adder := &mockAdder{}
	adder.AddProductFunc = func(ctx context.Context, form backend.ProductForm) (string, error) {
		// A second trigger while the first is in flight must be a no-op.
		require.NoError(t, f.Submit(ctx))
		return "", nil
	}
	f.client = adder

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, 1, adder.calls)
	assert.False(t, f.Loading())
}
