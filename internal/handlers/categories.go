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
	"larder/internal/validation"
	"larder/models"
)

type categoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type categoryResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func projectCategory(category models.Category) categoryResponse {
	return categoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

// CategoryResource handles CRUD interactions for category records. Deleting
// a category keeps its recipes; they simply lose the reference.
func CategoryResource(w http.ResponseWriter, r *http.Request) {
	if dataStore == nil {
		applog.Debug(r.Context(), "category request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "category request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/categories")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listCategories(w, r)
		case http.MethodPost:
			createCategory(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid category identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	categoryID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showCategory(w, r, categoryID)
	case http.MethodPut:
		updateCategory(w, r, categoryID)
	case http.MethodDelete:
		deleteCategory(w, r, categoryID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	results, err := dataStore.Categories(ctx, listOptionsFromQuery(r))
	if err != nil {
		applog.Error(ctx, "failed to list categories", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load categories")
		return
	}

	responses := make([]categoryResponse, 0, len(results))
	for _, category := range results {
		responses = append(responses, projectCategory(category))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showCategory(w http.ResponseWriter, r *http.Request, categoryID uint) {
	ctx := r.Context()
	category, err := dataStore.CategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load category", "error", err, "id", categoryID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load category")
		return
	}
	writeJSON(w, http.StatusOK, projectCategory(*category))
}

func createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid category create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Name = models.NormalizeName(payload.Name)
	if err := validate.Struct(payload); err != nil {
		applog.Debug(ctx, "category validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := names.CheckName(ctx, validation.EntityCategory, payload.Name, 0); err != nil {
		respondNameCheck(w, r, err)
		return
	}

	category := models.Category{Name: payload.Name}
	if err := dataStore.CreateCategory(ctx, &category); err != nil {
		applog.Error(ctx, "failed to create category", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create category")
		return
	}

	writeJSON(w, http.StatusCreated, projectCategory(category))
}

func updateCategory(w http.ResponseWriter, r *http.Request, categoryID uint) {
	ctx := r.Context()
	existing, err := dataStore.CategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load category for update", "error", err, "id", categoryID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load category")
		return
	}

	var payload categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid category update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Name = models.NormalizeName(payload.Name)
	if err := validate.Struct(payload); err != nil {
		applog.Debug(ctx, "category update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := names.CheckName(ctx, validation.EntityCategory, payload.Name, categoryID); err != nil {
		respondNameCheck(w, r, err)
		return
	}

	if err := dataStore.UpdateCategory(ctx, existing, map[string]any{"name": payload.Name}); err != nil {
		applog.Error(ctx, "failed to update category", "error", err, "id", categoryID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update category")
		return
	}

	reloaded, err := dataStore.CategoryByID(ctx, categoryID)
	if err != nil {
		applog.Error(ctx, "failed to reload updated category", "error", err, "id", categoryID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load category")
		return
	}
	writeJSON(w, http.StatusOK, projectCategory(*reloaded))
}

func deleteCategory(w http.ResponseWriter, r *http.Request, categoryID uint) {
	ctx := r.Context()
	if err := dataStore.DeleteCategory(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to delete category", "error", err, "id", categoryID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
