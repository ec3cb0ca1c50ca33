package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"larder/models"
)

func TestIngredientResourceRequiresSession(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	req := httptest.NewRequest(http.MethodGet, "/api/ingredients", nil)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestIngredientCRUD(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	user := models.User{Email: "cook@example.com", PasswordHash: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	// Create
	body, _ := json.Marshal(map[string]any{"name": "  Sea   Salt "})
	req := httptest.NewRequest(http.MethodPost, "/api/ingredients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.Name != "Sea Salt" {
		t.Fatalf("expected normalized name, got %q", created.Name)
	}

	// Show
	showReq := authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/ingredients/%d", created.ID), nil), user.ID)
	showW := httptest.NewRecorder()
	IngredientResource(showW, showReq)
	if showW.Code != http.StatusOK {
		t.Fatalf("expected status 200 for show, got %d", showW.Code)
	}

	// Update
	updateBody, _ := json.Marshal(map[string]any{"name": "Flaky Sea Salt"})
	updateReq := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/ingredients/%d", created.ID), bytes.NewReader(updateBody))
	updateReq.Header.Set("Content-Type", "application/json")
	updateReq = authenticateRequest(t, sm, updateReq, user.ID)
	updateW := httptest.NewRecorder()
	IngredientResource(updateW, updateReq)
	if updateW.Code != http.StatusOK {
		t.Fatalf("expected status 200 for update, got %d: %s", updateW.Code, updateW.Body.String())
	}
	var updated ingredientResponse
	if err := json.Unmarshal(updateW.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode update response: %v", err)
	}
	if updated.Name != "Flaky Sea Salt" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}

	// Delete
	deleteReq := authenticateRequest(t, sm, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/ingredients/%d", created.ID), nil), user.ID)
	deleteW := httptest.NewRecorder()
	IngredientResource(deleteW, deleteReq)
	if deleteW.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 for delete, got %d", deleteW.Code)
	}

	var count int64
	if err := db.Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count ingredients: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected ingredient to be deleted, count=%d", count)
	}
}

func TestIngredientDuplicateNameRejected(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	user := models.User{Email: "cook@example.com", PasswordHash: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	post := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]any{"name": "Salt"})
		req := httptest.NewRequest(http.MethodPost, "/api/ingredients", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = authenticateRequest(t, sm, req, user.ID)
		w := httptest.NewRecorder()
		IngredientResource(w, req)
		return w
	}

	if w := post(); w.Code != http.StatusCreated {
		t.Fatalf("expected first insert to succeed, got %d", w.Code)
	}
	w := post()
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate, got %d", w.Code)
	}
	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if response["error"] != "Ingredient with the same name exists" {
		t.Fatalf("unexpected error message: %q", response["error"])
	}

	var count int64
	if err := db.Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count ingredients: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one Salt, got %d", count)
	}
}

func TestIngredientListSearchAndSort(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	user := models.User{Email: "cook@example.com", PasswordHash: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	for _, name := range []string{"Rock Salt", "Sugar", "Sea Salt"} {
		if err := db.Create(&models.Ingredient{Name: name}).Error; err != nil {
			t.Fatalf("failed to create ingredient: %v", err)
		}
	}

	req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/ingredients?q=salt&sort=name&order=desc", nil), user.ID)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var listed []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected two matches, got %d", len(listed))
	}
	if listed[0].Name != "Sea Salt" || listed[1].Name != "Rock Salt" {
		t.Fatalf("expected descending order, got %q then %q", listed[0].Name, listed[1].Name)
	}
}

func TestIngredientUpdateAllowsOwnName(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	user := models.User{Email: "cook@example.com", PasswordHash: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	ingredient := models.Ingredient{Name: "Salt"}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}

	body, _ := json.Marshal(map[string]any{"name": "salt"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/ingredients/%d", ingredient.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, user.ID)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected renaming to own name to pass, got %d: %s", w.Code, w.Body.String())
	}
}

func TestIngredientDeleteMissingReturnsNotFound(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	user := createTestUser(t)

	req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodDelete, "/api/ingredients/99999", nil), user.ID)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for missing ingredient, got %d", w.Code)
	}
}
