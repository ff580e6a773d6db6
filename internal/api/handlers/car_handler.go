package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/carhive/carhive-be/internal/auth"
	"github.com/carhive/carhive-be/internal/models"
	"github.com/carhive/carhive-be/internal/services"
)

// CarHandler handles HTTP requests for car records.
type CarHandler struct {
	service services.CarServiceProvider
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(service services.CarServiceProvider) *CarHandler {
	return &CarHandler{service: service}
}

// CarPayload defines the structure for create and update requests. A
// non-array images or tags value fails decoding and is rejected as invalid
// input.
type CarPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
}

func (p CarPayload) toInput() services.CarInput {
	return services.CarInput{
		Title:       p.Title,
		Description: p.Description,
		Images:      p.Images,
		Tags:        p.Tags,
	}
}

// requesterID extracts the verified user identity placed in the context by
// the token middleware.
func requesterID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeErrorMessage(w, http.StatusInternalServerError, "Something went wrong")
		return "", false
	}
	return claims.UserID, true
}

// Create handles the request to create a new car owned by the requester.
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	var payload CarPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	car, err := h.service.Create(userID, payload.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Car created successfully",
		"car":     car,
	})
}

// GetAll handles the request to list the requester's cars, newest first.
func (h *CarHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	cars, err := h.service.ListByOwner(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.Car{"cars": cars})
}

// Get handles the request to get a single car by its ID.
func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	car, err := h.service.Get(chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, car)
}

// Update handles the request to replace a car's mutable fields.
func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	var payload CarPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	car, err := h.service.Update(chi.URLParam(r, "id"), userID, payload.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, car)
}

// Delete handles the request to delete a car.
func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Car deleted successfully"})
}
