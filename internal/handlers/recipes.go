package handlers

import (
	"encoding/base64"
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

type recipeIngredientInput struct {
	IngredientID uint   `json:"ingredient_id" validate:"required"`
	Quantity     string `json:"quantity" validate:"required"`
}

type recipeRequest struct {
	Name         string                  `json:"name" validate:"required"`
	Summary      string                  `json:"summary"`
	Servings     int                     `json:"servings" validate:"gt=0"`
	TimeMinutes  int                     `json:"time_minutes" validate:"gt=0"`
	Instructions string                  `json:"instructions"`
	CategoryID   *uint                   `json:"category_id"`
	Image        *string                 `json:"image"`
	Ingredients  []recipeIngredientInput `json:"ingredients" validate:"dive"`
}

type recipeIngredientSummary struct {
	ID           uint   `json:"id"`
	IngredientID *uint  `json:"ingredient_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Quantity     string `json:"quantity"`
}

type recipeCategorySummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type recipeResponse struct {
	ID           uint                      `json:"id"`
	Name         string                    `json:"name"`
	Summary      string                    `json:"summary"`
	Servings     int                       `json:"servings"`
	TimeMinutes  int                       `json:"time_minutes"`
	Instructions string                    `json:"instructions"`
	HasImage     bool                      `json:"has_image"`
	CategoryID   *uint                     `json:"category_id,omitempty"`
	Category     *recipeCategorySummary    `json:"category,omitempty"`
	Ingredients  []recipeIngredientSummary `json:"ingredients"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

func projectRecipe(recipe models.Recipe) recipeResponse {
	response := recipeResponse{
		ID:           recipe.ID,
		Name:         recipe.Name,
		Summary:      recipe.Summary,
		Servings:     recipe.Servings,
		TimeMinutes:  recipe.TimeMinutes,
		Instructions: recipe.Instructions,
		HasImage:     len(recipe.Image) > 0,
		CategoryID:   recipe.CategoryID,
		Ingredients:  make([]recipeIngredientSummary, 0, len(recipe.Ingredients)),
		CreatedAt:    recipe.CreatedAt,
		UpdatedAt:    recipe.UpdatedAt,
	}

	if recipe.Category != nil {
		response.Category = &recipeCategorySummary{
			ID:   recipe.Category.ID,
			Name: recipe.Category.Name,
		}
	}

	for _, item := range recipe.Ingredients {
		summary := recipeIngredientSummary{
			ID:           item.ID,
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
		}
		if item.Ingredient != nil {
			summary.Name = item.Ingredient.Name
		}
		response.Ingredients = append(response.Ingredients, summary)
	}

	return response
}

// RecipeResource handles CRUD interactions for recipe records. Saving a
// recipe replaces its ingredient list wholesale.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if dataStore == nil {
		applog.Debug(r.Context(), "recipe request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "recipe request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/recipes")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segments := strings.Split(path, "/")
	idValue, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", segments[0], "error", err)
		http.NotFound(w, r)
		return
	}
	recipeID := uint(idValue)

	if len(segments) > 1 && segments[1] == "image" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		showRecipeImage(w, r, recipeID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, recipeID)
	case http.MethodPut:
		updateRecipe(w, r, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	results, err := dataStore.Recipes(ctx, listOptionsFromQuery(r))
	if err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	responses := make([]recipeResponse, 0, len(results))
	for _, recipe := range results {
		responses = append(responses, projectRecipe(recipe))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	recipe, err := dataStore.RecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(*recipe))
}

func showRecipeImage(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	recipe, err := dataStore.RecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe image", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}
	if len(recipe.Image) == 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(recipe.Image))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(recipe.Image); err != nil {
		applog.Error(ctx, "failed to write recipe image", "error", err, "id", recipeID)
	}
}

// resolveRecipePayload validates the request, checks the duplicate-name gate,
// and resolves references. It writes the error response itself and reports
// success through the bool.
func resolveRecipePayload(w http.ResponseWriter, r *http.Request, payload *recipeRequest, excludingID uint) ([]models.RecipeIngredient, bool) {
	ctx := r.Context()

	payload.Name = models.NormalizeName(payload.Name)
	if err := validate.Struct(payload); err != nil {
		applog.Debug(ctx, "recipe validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, "name is required and servings and time must be positive")
		return nil, false
	}

	if err := names.CheckName(ctx, validation.EntityRecipe, payload.Name, excludingID); err != nil {
		respondNameCheck(w, r, err)
		return nil, false
	}

	if payload.CategoryID != nil {
		if _, err := dataStore.CategoryByID(ctx, *payload.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeJSONError(w, http.StatusBadRequest, "unknown category")
				return nil, false
			}
			applog.Error(ctx, "failed to resolve recipe category", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to resolve category")
			return nil, false
		}
	}

	items := make([]models.RecipeIngredient, 0, len(payload.Ingredients))
	for _, input := range payload.Ingredients {
		if _, err := dataStore.IngredientByID(ctx, input.IngredientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeJSONError(w, http.StatusBadRequest, "unknown ingredient")
				return nil, false
			}
			applog.Error(ctx, "failed to resolve recipe ingredient", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to resolve ingredient")
			return nil, false
		}
		ingredientID := input.IngredientID
		items = append(items, models.RecipeIngredient{
			Quantity:     strings.TrimSpace(input.Quantity),
			IngredientID: &ingredientID,
		})
	}

	return items, true
}

func decodeRecipeImage(w http.ResponseWriter, r *http.Request, encoded string) ([]byte, bool) {
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe image payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "image must be base64 encoded")
		return nil, false
	}
	return image, true
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	items, ok := resolveRecipePayload(w, r, &payload, 0)
	if !ok {
		return
	}

	recipe := models.Recipe{
		Name:         payload.Name,
		Summary:      strings.TrimSpace(payload.Summary),
		Servings:     payload.Servings,
		TimeMinutes:  payload.TimeMinutes,
		Instructions: payload.Instructions,
		CategoryID:   payload.CategoryID,
	}

	if payload.Image != nil && *payload.Image != "" {
		image, ok := decodeRecipeImage(w, r, *payload.Image)
		if !ok {
			return
		}
		recipe.Image = image
	}

	if err := dataStore.SaveRecipe(ctx, &recipe, items); err != nil {
		applog.Error(ctx, "failed to create recipe", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create recipe")
		return
	}

	reloaded, err := dataStore.RecipeByID(ctx, recipe.ID)
	if err != nil {
		applog.Error(ctx, "failed to reload created recipe", "error", err, "id", recipe.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}
	writeJSON(w, http.StatusCreated, projectRecipe(*reloaded))
}

func updateRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	existing, err := dataStore.RecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load recipe for update", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	items, ok := resolveRecipePayload(w, r, &payload, recipeID)
	if !ok {
		return
	}

	existing.Name = payload.Name
	existing.Summary = strings.TrimSpace(payload.Summary)
	existing.Servings = payload.Servings
	existing.TimeMinutes = payload.TimeMinutes
	existing.Instructions = payload.Instructions
	existing.CategoryID = payload.CategoryID

	// A missing image field leaves the stored image untouched; an empty
	// string clears it.
	if payload.Image != nil {
		if *payload.Image == "" {
			existing.Image = nil
		} else {
			image, ok := decodeRecipeImage(w, r, *payload.Image)
			if !ok {
				return
			}
			existing.Image = image
		}
	}

	if err := dataStore.SaveRecipe(ctx, existing, items); err != nil {
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update recipe")
		return
	}

	reloaded, err := dataStore.RecipeByID(ctx, recipeID)
	if err != nil {
		applog.Error(ctx, "failed to reload updated recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(*reloaded))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	if err := dataStore.DeleteRecipe(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
