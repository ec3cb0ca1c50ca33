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
	"larder/models"
)

type recipeIngredientRequest struct {
	RecipeID     uint   `json:"recipe_id" validate:"required"`
	IngredientID uint   `json:"ingredient_id" validate:"required"`
	Quantity     string `json:"quantity" validate:"required"`
}

type recipeIngredientResponse struct {
	ID           uint      `json:"id"`
	RecipeID     *uint     `json:"recipe_id,omitempty"`
	IngredientID *uint     `json:"ingredient_id,omitempty"`
	Ingredient   string    `json:"ingredient,omitempty"`
	Quantity     string    `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func projectRecipeIngredient(item models.RecipeIngredient) recipeIngredientResponse {
	response := recipeIngredientResponse{
		ID:           item.ID,
		RecipeID:     item.RecipeID,
		IngredientID: item.IngredientID,
		Quantity:     item.Quantity,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
	if item.Ingredient != nil {
		response.Ingredient = item.Ingredient.Name
	}
	return response
}

// RecipeIngredientResource handles interactions with single junction rows.
// Rows are normally replaced wholesale through a recipe save; this resource
// covers listing a recipe's rows and removing one explicitly.
func RecipeIngredientResource(w http.ResponseWriter, r *http.Request) {
	if dataStore == nil {
		applog.Debug(r.Context(), "recipe ingredient request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "recipe ingredient request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/recipe-ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipeIngredients(w, r)
		case http.MethodPost:
			createRecipeIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe ingredient identifier", "identifier", path, "error", err)
		http.NotFound(w, r)
		return
	}
	itemID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showRecipeIngredient(w, r, itemID)
	case http.MethodDelete:
		deleteRecipeIngredient(w, r, itemID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipeIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recipeParam := strings.TrimSpace(r.URL.Query().Get("recipe_id"))
	recipeID, err := strconv.ParseUint(recipeParam, 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "recipe_id is required")
		return
	}

	results, err := dataStore.RecipeIngredients(ctx, uint(recipeID))
	if err != nil {
		applog.Error(ctx, "failed to list recipe ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe ingredients")
		return
	}

	responses := make([]recipeIngredientResponse, 0, len(results))
	for _, item := range results {
		responses = append(responses, projectRecipeIngredient(item))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipeIngredient(w http.ResponseWriter, r *http.Request, itemID uint) {
	ctx := r.Context()
	item, err := dataStore.RecipeIngredientByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe ingredient", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipeIngredient(*item))
}

func createRecipeIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Quantity = strings.TrimSpace(payload.Quantity)
	if err := validate.Struct(payload); err != nil {
		applog.Debug(ctx, "recipe ingredient validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, "recipe_id, ingredient_id, and quantity are required")
		return
	}

	if _, err := dataStore.RecipeByID(ctx, payload.RecipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusBadRequest, "unknown recipe")
			return
		}
		applog.Error(ctx, "failed to resolve recipe", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to resolve recipe")
		return
	}
	if _, err := dataStore.IngredientByID(ctx, payload.IngredientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusBadRequest, "unknown ingredient")
			return
		}
		applog.Error(ctx, "failed to resolve ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to resolve ingredient")
		return
	}

	item := models.RecipeIngredient{
		Quantity:     payload.Quantity,
		RecipeID:     &payload.RecipeID,
		IngredientID: &payload.IngredientID,
	}
	if err := dataStore.CreateRecipeIngredient(ctx, &item); err != nil {
		applog.Error(ctx, "failed to create recipe ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create recipe ingredient")
		return
	}

	reloaded, err := dataStore.RecipeIngredientByID(ctx, item.ID)
	if err != nil {
		applog.Error(ctx, "failed to reload created recipe ingredient", "error", err, "id", item.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, projectRecipeIngredient(*reloaded))
}

func deleteRecipeIngredient(w http.ResponseWriter, r *http.Request, itemID uint) {
	ctx := r.Context()
	if err := dataStore.DeleteRecipeIngredient(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to delete recipe ingredient", "error", err, "id", itemID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe ingredient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
