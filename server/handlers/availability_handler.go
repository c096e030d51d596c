package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"booking-server/models"
	services "booking-server/service"
	"booking-server/util"
)

const (
	SUPPLIER_QUERY_ARG     = "supplier"
	ACTIVITY_QUERY_ARG     = "activity"
	DATE_QUERY_ARG         = "date"
	MONTH_QUERY_ARG        = "month"
	ACTIVITY_IDS_QUERY_ARG = "activityIds"
	GUEST_COUNTS_QUERY_ARG = "guestCounts"
	DEBUG_QUERY_ARG        = "debug"
	REFRESH_QUERY_ARG      = "refresh"
)

// ProbeRequestBody is the JSON body of POST /api/availability/probe.
type ProbeRequestBody struct {
	Supplier    string                `json:"supplier"`
	Activity    string                `json:"activity"`
	Requests    []models.ProbeRequest `json:"requests"`
	GuestCounts map[string]int        `json:"guestCounts"`
}

type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
}

func NewAvailabilityHandler(availabilityService *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

// GetAvailability serves the calendar, timeslots and metadata for a month.
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	query, err := parseAvailabilityQuery(r.URL.Query())
	if err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid availability query", err.Error())
		return
	}

	payload, err := h.availabilityService.GetAvailability(r.Context(), query)
	if err != nil {
		writeServiceError(w, "Could not load availability", err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// ProbeAvailability classifies requested departures into seat tiers.
func (h *AvailabilityHandler) ProbeAvailability(w http.ResponseWriter, r *http.Request) {
	var body ProbeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid probe request", err.Error())
		return
	}

	resp, err := h.availabilityService.Probe(r.Context(), body.Supplier, body.Activity, body.Requests, body.GuestCounts)
	if err != nil {
		writeServiceError(w, "Could not probe seat availability", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBootstrap serves the booking page configuration.
func (h *AvailabilityHandler) GetBootstrap(w http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	cfg, err := h.availabilityService.Bootstrap(vals.Get(SUPPLIER_QUERY_ARG), vals.Get(ACTIVITY_QUERY_ARG))
	if err != nil {
		writeServiceError(w, "Could not load booking configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// GetCalendarChart renders the month's calendar as an HTML chart.
func (h *AvailabilityHandler) GetCalendarChart(w http.ResponseWriter, r *http.Request) {
	query, err := parseAvailabilityQuery(r.URL.Query())
	if err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid availability query", err.Error())
		return
	}
	query.ActivityIDs = nil

	payload, err := h.availabilityService.GetAvailability(r.Context(), query)
	if err != nil {
		writeServiceError(w, "Could not load availability", err)
		return
	}

	title := strings.TrimSpace(query.Supplier + " " + query.Activity)
	if title == "" {
		title = "Availability"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := util.PlotAvailabilityCalendar(w, title, payload); err != nil {
		JSONError(w, http.StatusInternalServerError, "Could not render chart", err.Error())
	}
}

func parseAvailabilityQuery(vals url.Values) (services.AvailabilityQuery, error) {
	q := services.AvailabilityQuery{
		Supplier:  vals.Get(SUPPLIER_QUERY_ARG),
		Activity:  vals.Get(ACTIVITY_QUERY_ARG),
		Date:      vals.Get(DATE_QUERY_ARG),
		Month:     vals.Get(MONTH_QUERY_ARG),
		Debug:     parseFlag(vals.Get(DEBUG_QUERY_ARG)),
		SkipCache: parseFlag(vals.Get(REFRESH_QUERY_ARG)),
	}

	if q.Date != "" {
		if _, err := util.ParseDate(q.Date); err != nil {
			return q, fmt.Errorf("%s: %w", DATE_QUERY_ARG, err)
		}
	}

	ids, err := parseActivityIDs(vals.Get(ACTIVITY_IDS_QUERY_ARG))
	if err != nil {
		return q, err
	}
	q.ActivityIDs = ids

	if raw := strings.TrimSpace(vals.Get(GUEST_COUNTS_QUERY_ARG)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &q.GuestCounts); err != nil {
			return q, fmt.Errorf("%s must be a JSON object of counts: %w", GUEST_COUNTS_QUERY_ARG, err)
		}
	}
	return q, nil
}

// parseActivityIDs accepts a JSON array or a comma separated list.
func parseActivityIDs(raw string) ([]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var ids []any
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, fmt.Errorf("%s must be a JSON array: %w", ACTIVITY_IDS_QUERY_ARG, err)
		}
		return ids, nil
	}
	var ids []any
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids, nil
}

func parseFlag(raw string) bool {
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}
