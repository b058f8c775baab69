package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"atelier/internal/backend"
	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/notify"
	"atelier/internal/order"
	"atelier/internal/product"
	"atelier/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Currency is the display tag used across the dashboard.
const Currency = "₹"

const maxUploadBytes = 32 << 20

//go:embed templates/*.html
var templateFS embed.FS

// Handler is the presentation shell: it translates form posts into controller
// calls and renders the result. It holds no business logic. The dashboard is
// a single-operator tool, so one controller set serves every request,
// serialized by the handler mutex.
type Handler struct {
	mu      sync.Mutex
	sess    *session.Session
	client  *backend.Client
	addForm *product.AddForm
	list    *product.ListView
	board   *order.Board
	flash   *notify.Flash
	logger  *zap.Logger
	tmpl    *template.Template
}

func NewHandler(
	sess *session.Session,
	client *backend.Client,
	addForm *product.AddForm,
	list *product.ListView,
	board *order.Board,
	flash *notify.Flash,
	logger *zap.Logger,
) (*Handler, error) {
	funcs := template.FuncMap{
		"has": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
		"add1": func(i int) int { return i + 1 },
		"date": func(millis int64) string {
			if millis == 0 {
				return ""
			}
			return time.UnixMilli(millis).Format("02 Jan 2006")
		},
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Handler{
		sess:    sess,
		client:  client,
		addForm: addForm,
		list:    list,
		board:   board,
		flash:   flash,
		logger:  logger,
		tmpl:    tmpl,
	}, nil
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.doLogin)
	r.Post("/logout", h.doLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/add", http.StatusFound)
		})
		r.Get("/add", h.showAdd)
		r.Post("/add", h.submitAdd)
		r.Get("/list", h.showList)
		r.Post("/list/edit", h.submitEdit)
		r.Post("/list/delete", h.deleteProduct)
		r.Get("/orders", h.showOrders)
		r.Post("/orders/status", h.updateStatus)
		r.Post("/orders/expand", h.toggleExpand)
	})
}

// requireAuth gates the dashboard pages on the session being present and,
// when the token is a JWT with an exp claim, not yet expired. The backend's
// 401 still wins for anything the local probe cannot see.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sess.Valid() {
			if h.sess.Authenticated() {
				h.flash.Error("Session expired. Please login again.")
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type pageData struct {
	Title  string
	Toasts []notify.Toast
}

func (h *Handler) page(title string) pageData {
	return pageData{Title: title, Toasts: h.flash.Drain()}
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("rendering template", zap.String("template", name), zap.Error(err))
	}
}

// Login

type loginData struct {
	pageData
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if h.sess.Valid() {
		http.Redirect(w, r, "/add", http.StatusFound)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.render(w, "login.html", loginData{pageData: h.page("Login")})
}

func (h *Handler) doLogin(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	token, err := h.client.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if re, ok := apperrors.IsRemoteError(err); ok {
			h.flash.Error(re.Message)
		} else {
			h.flash.Error("Login failed")
		}
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := h.sess.SetToken(token); err != nil {
		h.logger.Warn("persisting session failed", zap.Error(err))
	}
	http.Redirect(w, r, "/add", http.StatusFound)
}

func (h *Handler) doLogout(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sess.Clear(); err != nil {
		h.logger.Warn("clearing session failed", zap.Error(err))
	}
	h.flash.Success("Logged out successfully!")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Add page

type addData struct {
	pageData
	Form          *product.AddForm
	Categories    []string
	SubCategories []string
	AllSizes      []string
	Currency      string
}

func (h *Handler) showAdd(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renderAdd(w)
}

func (h *Handler) renderAdd(w http.ResponseWriter) {
	h.render(w, "add.html", addData{
		pageData:      h.page("Add Product"),
		Form:          h.addForm,
		Categories:    domain.Categories,
		SubCategories: domain.SubCategories,
		AllSizes:      domain.Sizes,
		Currency:      Currency,
	})
}

func (h *Handler) submitAdd(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.flash.Error("Invalid form submission")
		http.Redirect(w, r, "/add", http.StatusFound)
		return
	}

	h.addForm.Name = r.FormValue("name")
	h.addForm.Description = r.FormValue("description")
	h.addForm.SetPrice(r.FormValue("price"))
	if cat := r.FormValue("category"); cat != "" {
		h.addForm.Category = cat
	}
	if sub := r.FormValue("subCategory"); sub != "" {
		h.addForm.SubCategory = sub
	}
	h.addForm.BestSeller = r.FormValue("bestSeller") != ""

	// Reconcile the size toggles with the posted checkboxes.
	posted := map[string]bool{}
	for _, s := range r.Form["sizes"] {
		posted[s] = true
	}
	for _, s := range domain.Sizes {
		if posted[s] != h.addForm.HasSize(s) {
			h.addForm.ToggleSize(s)
		}
	}

	rejected := false
	for i := 0; i < domain.MaxImages; i++ {
		upload, ok, err := readUpload(r, "image"+strconv.Itoa(i+1))
		if err != nil {
			h.flash.Error("Invalid form submission")
			rejected = true
			continue
		}
		if !ok {
			continue
		}
		if err := h.addForm.AttachImage(i, upload); err != nil {
			rejected = true
		}
	}
	if rejected {
		// A rejected file already raised its toast; let the operator fix
		// the selection before anything is sent.
		http.Redirect(w, r, "/add", http.StatusFound)
		return
	}

	_ = h.addForm.Submit(r.Context())
	http.Redirect(w, r, "/add", http.StatusFound)
}

// List page

type listData struct {
	pageData
	Loading  bool
	Filtered []domain.Product
	Facets   []string
	Total    int
	Search   string
	Category string
	Draft    *product.EditDraft
	AllSizes []string

	Categories    []string
	SubCategories []string
	Currency      string
}

func (h *Handler) showList(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	q := r.URL.Query()
	h.list.SetSearch(q.Get("q"))
	h.list.SetCategory(q.Get("category"))

	if err := h.list.Resync(r.Context()); err != nil {
		if _, ok := apperrors.IsUnauthorizedError(err); ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
	}

	if editID := q.Get("edit"); editID != "" {
		if err := h.list.BeginEdit(editID); err != nil {
			h.flash.Error("Product not found")
		}
	} else {
		h.list.CancelEdit()
	}

	h.render(w, "list.html", listData{
		pageData: h.page("Products Inventory"),
		Loading:  h.list.Loading(),
		Filtered: h.list.Filtered(),
		Facets:   h.list.Categories(),
		Total:    len(h.list.Products()),
		Search:   h.list.Search(),
		Category: h.list.SelectedCategory(),
		Draft:    h.list.Draft(),
		AllSizes: domain.Sizes,

		Categories:    domain.Categories,
		SubCategories: domain.SubCategories,
		Currency:      Currency,
	})
}

func (h *Handler) submitEdit(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.flash.Error("Invalid form submission")
		http.Redirect(w, r, "/list", http.StatusFound)
		return
	}

	if err := h.list.BeginEdit(r.FormValue("id")); err != nil {
		h.flash.Error("Product not found")
		http.Redirect(w, r, "/list", http.StatusFound)
		return
	}

	draft := h.list.Draft()
	draft.Name = r.FormValue("name")
	draft.Description = r.FormValue("description")
	draft.Category = r.FormValue("category")
	draft.SubCategory = r.FormValue("subCategory")
	draft.Sizes = r.Form["sizes"]
	draft.BestSeller = r.FormValue("bestSeller") != ""
	draft.Price = ""
	h.list.SetDraftPrice(r.FormValue("price"))

	// File inputs travel in input order; position decides the image field.
	uploads := make([]*backend.ImageUpload, domain.MaxImages)
	for i := 0; i < domain.MaxImages; i++ {
		upload, ok, err := readUpload(r, "image"+strconv.Itoa(i+1))
		if err != nil || !ok {
			continue
		}
		uploads[i] = &upload
	}

	if err := h.list.SubmitEdit(r.Context(), uploads); err != nil {
		if _, ok := apperrors.IsValidationError(err); ok {
			// Editor stays open so the draft can be corrected.
			http.Redirect(w, r, "/list?edit="+r.FormValue("id"), http.StatusFound)
			return
		}
	}
	http.Redirect(w, r, "/list", http.StatusFound)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	confirmed := r.FormValue("confirm") == "true"
	_ = h.list.Remove(r.Context(), r.FormValue("id"), func() bool { return confirmed })
	http.Redirect(w, r, "/list", http.StatusFound)
}

// Orders page

type orderRow struct {
	Order    domain.Order
	Progress domain.Progress
	Expanded bool
}

type ordersData struct {
	pageData
	Loading  bool
	Rows     []orderRow
	Statuses []string
	Currency string
}

func (h *Handler) showOrders(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_ = h.board.Resync(r.Context())

	rows := make([]orderRow, 0, len(h.board.Orders()))
	for _, o := range h.board.Orders() {
		rows = append(rows, orderRow{
			Order:    o,
			Progress: domain.StatusProgress(o.Status),
			Expanded: h.board.Expanded(o.ID),
		})
	}

	h.render(w, "orders.html", ordersData{
		pageData: h.page("Orders"),
		Loading:  h.board.Loading(),
		Rows:     rows,
		Statuses: domain.Statuses,
		Currency: Currency,
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_ = h.board.SetStatus(r.Context(), r.FormValue("orderId"), r.FormValue("status"))
	http.Redirect(w, r, "/orders", http.StatusFound)
}

func (h *Handler) toggleExpand(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.board.ToggleExpand(r.FormValue("orderId"))
	http.Redirect(w, r, "/orders", http.StatusFound)
}

// readUpload pulls one optional file field out of the multipart form. The
// second return is false when the input carried no file.
func readUpload(r *http.Request, field string) (backend.ImageUpload, bool, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return backend.ImageUpload{}, false, nil
	}
	if err != nil {
		return backend.ImageUpload{}, false, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return backend.ImageUpload{}, false, err
	}
	if len(data) == 0 {
		return backend.ImageUpload{}, false, nil
	}

	return backend.ImageUpload{
		Filename: header.Filename,
		MIME:     header.Header.Get("Content-Type"),
		Data:     data,
	}, true, nil
}
