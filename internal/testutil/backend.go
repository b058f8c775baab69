package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"atelier/internal/domain"
)

// FakeBackend is an in-memory stand-in for the storefront admin API, served
// over httptest. Tests seed Products and Orders directly and point the real
// HTTP client at URL().
type FakeBackend struct {
	srv *httptest.Server

	Token    string
	Email    string
	Password string

	Products []domain.Product
	Orders   []domain.Order

	// FailWith, when non-empty, makes every mutation answer success=false
	// with this message.
	FailWith string

	nextID int
}

func NewFakeBackend(t *testing.T) *FakeBackend {
	f := &FakeBackend{
		Token:    "test-token",
		Email:    "admin@example.com",
		Password: "admin123",
		nextID:   1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/admin", f.login)
	mux.HandleFunc("GET /api/product/list", f.authed(f.listProducts))
	mux.HandleFunc("POST /api/product/add", f.authed(f.addProduct))
	mux.HandleFunc("POST /api/product/edit", f.authed(f.editProduct))
	mux.HandleFunc("POST /api/product/remove", f.authed(f.removeProduct))
	mux.HandleFunc("GET /api/order/list", f.authed(f.listOrders))
	mux.HandleFunc("POST /api/order/status", f.authed(f.updateStatus))

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *FakeBackend) URL() string {
	return f.srv.URL
}

func (f *FakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.Token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (f *FakeBackend) reply(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func (f *FakeBackend) fail(w http.ResponseWriter, message string) {
	f.reply(w, map[string]any{"success": false, "message": message})
}

func (f *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&creds)

	if creds.Email != f.Email || creds.Password != f.Password {
		f.fail(w, "Invalid credentials")
		return
	}
	f.reply(w, map[string]any{"success": true, "token": f.Token})
}

func (f *FakeBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	f.reply(w, map[string]any{"success": true, "products": f.Products})
}

func (f *FakeBackend) addProduct(w http.ResponseWriter, r *http.Request) {
	if f.FailWith != "" {
		f.fail(w, f.FailWith)
		return
	}
	p, err := f.productFromForm(r)
	if err != nil {
		f.fail(w, err.Error())
		return
	}
	p.ID = "prod-" + strconv.Itoa(f.nextID)
	f.nextID++
	f.Products = append(f.Products, p)
	f.reply(w, map[string]any{"success": true, "message": "Product Added"})
}

func (f *FakeBackend) editProduct(w http.ResponseWriter, r *http.Request) {
	if f.FailWith != "" {
		f.fail(w, f.FailWith)
		return
	}
	p, err := f.productFromForm(r)
	if err != nil {
		f.fail(w, err.Error())
		return
	}
	id := r.FormValue("id")
	for i := range f.Products {
		if f.Products[i].ID == id {
			p.ID = id
			p.Images = f.Products[i].Images
			f.Products[i] = p
			f.reply(w, map[string]any{"success": true, "message": "Product Updated"})
			return
		}
	}
	f.fail(w, "Product not found")
}

func (f *FakeBackend) removeProduct(w http.ResponseWriter, r *http.Request) {
	if f.FailWith != "" {
		f.fail(w, f.FailWith)
		return
	}
	var body struct {
		ID string `json:"id"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	for i := range f.Products {
		if f.Products[i].ID == body.ID {
			f.Products = append(f.Products[:i], f.Products[i+1:]...)
			f.reply(w, map[string]any{"success": true, "message": "Product Removed"})
			return
		}
	}
	f.fail(w, "Product not found")
}

func (f *FakeBackend) listOrders(w http.ResponseWriter, r *http.Request) {
	f.reply(w, map[string]any{"success": true, "orders": f.Orders})
}

func (f *FakeBackend) updateStatus(w http.ResponseWriter, r *http.Request) {
	if f.FailWith != "" {
		f.fail(w, f.FailWith)
		return
	}
	var body struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	for i := range f.Orders {
		if f.Orders[i].ID == body.OrderID {
			f.Orders[i].Status = body.Status
			f.reply(w, map[string]any{"success": true, "message": "Status Updated"})
			return
		}
	}
	f.fail(w, "Order not found")
}

func (f *FakeBackend) productFromForm(r *http.Request) (domain.Product, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return domain.Product{}, err
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	var sizes []string
	json.Unmarshal([]byte(r.FormValue("sizes")), &sizes)

	var images []string
	for i := 1; i <= domain.MaxImages; i++ {
		if _, fh, err := r.FormFile("image" + strconv.Itoa(i)); err == nil {
			images = append(images, "https://cdn.example.com/"+fh.Filename)
		}
	}

	return domain.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
		SubCategory: r.FormValue("subCategory"),
		Sizes:       sizes,
		BestSeller:  r.FormValue("bestSeller") == "true",
		Images:      images,
	}, nil
}
