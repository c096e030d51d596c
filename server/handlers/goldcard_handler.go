package handlers

import (
	"errors"
	"net/http"

	"booking-server/api/goldcard"
	services "booking-server/service"
)

const NUMBER_QUERY_ARG = "number"

type GoldCardHandler struct {
	registry    *services.SupplierRegistry
	goldCardAPI goldcard.GoldCardAPI
}

func NewGoldCardHandler(registry *services.SupplierRegistry, goldCardAPI goldcard.GoldCardAPI) *GoldCardHandler {
	return &GoldCardHandler{registry: registry, goldCardAPI: goldCardAPI}
}

// GetGoldCard checks a gold card number against the supplier's page.
func (h *GoldCardHandler) GetGoldCard(w http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	number := vals.Get(NUMBER_QUERY_ARG)
	if number == "" {
		JSONError(w, http.StatusBadRequest, "Missing gold card number", "")
		return
	}

	supplier, err := h.registry.Supplier(vals.Get(SUPPLIER_QUERY_ARG))
	if err != nil {
		writeServiceError(w, "Unknown supplier", err)
		return
	}

	result, err := h.goldCardAPI.Lookup(r.Context(), supplier, number)
	if errors.Is(err, goldcard.ErrNoGoldCardPage) {
		JSONError(w, http.StatusNotFound, "Supplier has no gold card program", supplier.Slug)
		return
	}
	if err != nil {
		JSONError(w, http.StatusBadGateway, "Gold card lookup failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
