package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/gigamart/commerce-engine/internal/domain/catalog"
	"github.com/gigamart/commerce-engine/internal/domain/product"
)

// productDTO is the JSON shape of a catalog product.
type productDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Thumbnail   string          `json:"thumbnail"`
	Featured    bool            `json:"featured"`
}

func (h *Handler) toProductDTO(p product.Product) productDTO {
	thumb := p.Thumbnail
	if h.imageBaseURL != "" && thumb != "" && !strings.HasPrefix(thumb, "http") {
		thumb = strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(thumb, "/")
	}
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Thumbnail:   thumb,
		Featured:    p.Featured,
	}
}

// listProducts returns the catalog filtered and sorted per query params:
// search, category, sort, min_price, max_price.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	criteria, err := criteriaFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	visible := catalog.Apply(products, criteria)
	out := make([]productDTO, len(visible))
	for i, p := range visible {
		out[i] = h.toProductDTO(p)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.toProductDTO(*p))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.Categories(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func criteriaFromQuery(r *http.Request) (catalog.Criteria, error) {
	q := r.URL.Query()
	c := catalog.Criteria{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     catalog.ParseSortKey(q.Get("sort")),
	}

	minRaw, maxRaw := q.Get("min_price"), q.Get("max_price")
	if minRaw == "" && maxRaw == "" {
		return c, nil
	}

	pr := catalog.PriceRange{Min: decimal.Zero, Max: decimal.New(1<<31, 0)}
	if minRaw != "" {
		v, err := decimal.NewFromString(minRaw)
		if err != nil {
			return c, errors.New("invalid min_price")
		}
		pr.Min = v
	}
	if maxRaw != "" {
		v, err := decimal.NewFromString(maxRaw)
		if err != nil {
			return c, errors.New("invalid max_price")
		}
		pr.Max = v
	}
	if pr.Min.GreaterThan(pr.Max) {
		return c, errors.New("min_price exceeds max_price")
	}
	c.PriceRange = &pr
	return c, nil
}
