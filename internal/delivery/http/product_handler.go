package http

import (
	"net/http"

	"matchmaker/internal/entity"
	"matchmaker/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	productUc usecase.ProductUsecase
}

func NewProductHandler(productUc usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{
		productUc: productUc,
	}
}

// GET /api/products?topic=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productUc.Index(r.Context(), r.URL.Query().Get("topic"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "success", Data: products})
}

// GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productUc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "success", Data: product})
}

// POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decode(w, r, &req) {
		return
	}
	product, err := h.productUc.Create(r.Context(), *claimsFrom(r), req.product(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Message: "product created", Data: product})
}

// PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decode(w, r, &req) {
		return
	}
	product, err := h.productUc.Update(r.Context(), claimsFrom(r).UserId, req.product(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "product updated", Data: product})
}

// DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.productUc.Delete(r.Context(), claimsFrom(r).UserId, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "product deleted"})
}

func (req productRequest) product(id string) entity.Product {
	return entity.Product{
		Id:    id,
		Name:  req.Name,
		Price: req.Price,
		Topic: req.Topic,
		Image: req.Image,
	}
}
