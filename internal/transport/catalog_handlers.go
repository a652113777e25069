package transport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type catalogFilterDTO struct {
	Name         string           `json:"name"`
	MinPrice     *decimal.Decimal `json:"minPrice"`
	MaxPrice     *decimal.Decimal `json:"maxPrice"`
	FreeDelivery *bool            `json:"freeDelivery"`
	Available    bool             `json:"available"`
}

type reviewRequest struct {
	Author string `json:"author"`
	Email  string `json:"email"`
	Text   string `json:"text"`
	Rate   int    `json:"rate"`
}

func (h *handler) converter() converter {
	return converter{loc: h.opts.Location, today: h.svc.Catalog.Today()}
}

func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Catalog.Categories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTOs(categories))
}

func (h *handler) catalog(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCatalogFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	page, err := h.svc.Catalog.Catalog(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageDTO[productDTO]{
		Items:       h.converter().products(page.Items, catalogDateLayout),
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
	})
}

func parseCatalogFilter(r *http.Request) (domain.CatalogFilter, error) {
	q := r.URL.Query()
	filter := domain.CatalogFilter{Desc: q.Get("sortType") != "inc"}

	if raw := q.Get("filter"); raw != "" {
		var dto catalogFilterDTO
		if err := json.Unmarshal([]byte(raw), &dto); err != nil {
			return filter, domain.NewValidationError("Invalid filter format")
		}
		filter.Name = dto.Name
		filter.MinPrice = dto.MinPrice
		filter.MaxPrice = dto.MaxPrice
		filter.FreeDelivery = dto.FreeDelivery
		filter.Available = dto.Available
	}

	switch sort := q.Get("sort"); sort {
	case "date_added", "":
		filter.Sort = domain.CatalogSortDate
	default:
		filter.Sort = domain.CatalogSort(sort)
	}

	var err error
	if filter.Page, err = queryPage(q.Get("currentPage")); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}

	if raw := q.Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, domain.NewValidationError("Invalid category ID")
		}
		filter.CategoryID = &id
	}

	for _, raw := range append(q["tags"], q["tags[]"]...) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, domain.NewValidationError("Invalid tag ID")
		}
		filter.TagIDs = append(filter.TagIDs, id)
	}

	return filter, nil
}

// queryInt returns 0 for an absent parameter, leaving the default to the caller.
func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("Invalid " + name)
	}
	return n, nil
}

func queryPage(raw string) (int, error) {
	page, err := queryInt(raw, "currentPage")
	if err != nil {
		return 0, err
	}
	if err := domain.ValidatePage(page); err != nil {
		return 0, err
	}
	return page, nil
}

func (h *handler) popular(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.Popular(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.converter().products(products, productDateLayout))
}

func (h *handler) limited(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.Limited(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.converter().products(products, productDateLayout))
}

func (h *handler) sales(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r.URL.Query().Get("currentPage"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	sales, err := h.svc.Catalog.Sales(r.Context(), page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTOs(sales))
}

func (h *handler) banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.svc.Catalog.Banners(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	c := h.converter()
	result := make([]productDTO, 0, len(banners))
	for _, b := range banners {
		result = append(result, c.banner(b))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) tags(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}
		categoryID = &id
	}

	tags, err := h.svc.Catalog.Tags(r.Context(), categoryID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagDTOs(tags))
}

func (h *handler) product(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	product, err := h.svc.Catalog.Product(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	reviews, err := h.svc.Catalog.Reviews(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.converter().productDetail(product, reviews))
}

func (h *handler) addReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	reviews, err := h.svc.Catalog.AddReview(r.Context(), domain.Review{
		ProductID: id,
		Author:    req.Author,
		Email:     req.Email,
		Text:      req.Text,
		Rate:      req.Rate,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.converter().reviews(reviews))
}
