package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sakanka/internal/app"
	"sakanka/pkg/domain"
)

type createProductRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Location     string  `json:"location"`
	Language     string  `json:"language"`
	PhoneNumber  string  `json:"phoneNumber"`
	OriginalText string  `json:"originalText"`
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.withUser(s.handleCreateProduct).ServeHTTP(w, r)
	case http.MethodGet:
		s.handleBrowse(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req createProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	product, err := s.listings.Create(r.Context(), user, app.ListingInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Location:     req.Location,
		Language:     domain.ParseLanguage(req.Language),
		PhoneNumber:  req.PhoneNumber,
		OriginalText: req.OriginalText,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotSeller):
			writeError(w, http.StatusForbidden, "User does not have seller role")
		case errors.Is(err, app.ErrInvalidListing):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	if s.metrics != nil {
		s.metrics.ListingsCreated.WithLabelValues(string(product.Language)).Inc()
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"product": product,
	})
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	products, err := s.listings.Browse(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

type searchRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	products, err := s.listings.Search(req.Query, req.Location)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if s.metrics != nil {
		s.metrics.SearchQueries.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
		"query":    req.Query,
		"location": req.Location,
	})
}

// /api/products/{id}, /api/products/{id}/image, /api/products/{id}/status
func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	path := strings.TrimPrefix(r.URL.Path, "/api/products/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "image":
			s.handleProductImage(w, r, user, id)
		case "status":
			s.handleProductStatus(w, r, user, id)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	product, err := s.listings.Get(id)
	if err != nil {
		if errors.Is(err, app.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleProductImage(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is required (field: image)")
		return
	}
	defer file.Close()

	url, err := s.listings.AttachImage(r.Context(), user, id, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, app.ErrNotSeller):
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, app.ErrInvalidListing):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

type productStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleProductStatus(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req productStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status, ok := parseProductStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if err := s.listings.MarkStatus(user, id, status); err != nil {
		switch {
		case errors.Is(err, app.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, app.ErrNotSeller):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func parseProductStatus(status string) (domain.ProductStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case string(domain.ProductActive):
		return domain.ProductActive, true
	case string(domain.ProductSold):
		return domain.ProductSold, true
	case string(domain.ProductInactive):
		return domain.ProductInactive, true
	default:
		return "", false
	}
}
