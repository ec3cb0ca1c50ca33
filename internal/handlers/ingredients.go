package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "larder/internal/log"
	"larder/internal/store"
	"larder/internal/validation"
	"larder/models"
)

type ingredientRequest struct {
	Name string `json:"name" validate:"required"`
}

type ingredientResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:        ingredient.ID,
		Name:      ingredient.Name,
		CreatedAt: ingredient.CreatedAt,
		UpdatedAt: ingredient.UpdatedAt,
	}
}

// listOptionsFromQuery maps the shared q/sort/order query parameters onto
// store.ListOptions.
func listOptionsFromQuery(r *http.Request) store.ListOptions {
	query := r.URL.Query()
	return store.ListOptions{
		NameContains: strings.TrimSpace(query.Get("q")),
		SortField:    strings.TrimSpace(query.Get("sort")),
		SortDesc:     strings.EqualFold(strings.TrimSpace(query.Get("order")), "desc"),
	}
}

// IngredientResource handles CRUD interactions for ingredient records.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if dataStore == nil {
		applog.Debug(r.Context(), "ingredient request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "ingredient request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodPut:
		updateIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	results, err := dataStore.Ingredients(ctx, listOptionsFromQuery(r))
	if err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	ingredient, err := dataStore.IngredientByID(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Name = models.NormalizeName(payload.Name)
	if err := validate.Struct(payload); err != nil {
		applog.Debug(ctx, "ingredient validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := names.CheckName(ctx, validation.EntityIngredient, payload.Name, 0); err != nil {
		respondNameCheck(w, r, err)
		return
	}

	ingredient := models.Ingredient{Name: payload.Name}
	if err := dataStore.CreateIngredient(ctx, &ingredient); err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(ingredient))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	existing, err := dataStore.IngredientByID(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Name = models.NormalizeName(payload.Name)
	if err := validate.Struct(payload); err != nil {
		applog.Debug(ctx, "ingredient update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := names.CheckName(ctx, validation.EntityIngredient, payload.Name, ingredientID); err != nil {
		respondNameCheck(w, r, err)
		return
	}

	if err := dataStore.UpdateIngredient(ctx, existing, map[string]any{"name": payload.Name}); err != nil {
		applog.Error(ctx, "failed to update ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update ingredient")
		return
	}

	reloaded, err := dataStore.IngredientByID(ctx, ingredientID)
	if err != nil {
		applog.Error(ctx, "failed to reload updated ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(*reloaded))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	if err := dataStore.DeleteIngredient(ctx, ingredientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to delete ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondNameCheck turns a CheckName failure into the right HTTP response: a
// duplicate name is a 409 carrying the entity-specific message, anything else
// is a store failure.
func respondNameCheck(w http.ResponseWriter, r *http.Request, err error) {
	var dup *validation.DuplicateNameError
	if errors.As(err, &dup) {
		applog.Debug(r.Context(), "duplicate name rejected", "entity", string(dup.Entity))
		writeJSONError(w, http.StatusConflict, dup.Error())
		return
	}
	applog.Error(r.Context(), "failed to check name", "error", err)
	writeJSONError(w, http.StatusInternalServerError, "unable to validate name")
}
