package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"larder/internal/config"
	"larder/internal/db"
	"larder/internal/store"
	"larder/models"

	"gorm.io/gorm"
)

var numberPattern = regexp.MustCompile(`\d+`)

func main() {
	csvPath := "recipes.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	ctx := context.Background()
	dataStore := store.New(database)

	imported := 0
	for idx, record := range records {
		if err := importRecord(ctx, database, dataStore, record); err != nil {
			return fmt.Errorf("record %d (%s): %w", idx+1, record["name"], err)
		}
		imported++
	}

	fmt.Fprintf(os.Stdout, "Imported %d recipes from %s\n", imported, filepath.Base(csvPath))
	return nil
}

func importRecord(ctx context.Context, database *gorm.DB, dataStore *store.Store, record map[string]string) error {
	name := models.NormalizeName(record["name"])
	if name == "" {
		return errors.New("recipe name must not be empty")
	}

	servings := parseCount(record["servings"], 1)
	if servings <= 0 {
		return fmt.Errorf("servings %q is not a positive number", record["servings"])
	}
	timeMinutes := parseCount(record["time_minutes"], 0)
	if timeMinutes <= 0 {
		return fmt.Errorf("time_minutes %q is not a positive number", record["time_minutes"])
	}

	recipe := models.Recipe{
		Name:         name,
		Summary:      strings.TrimSpace(record["summary"]),
		Servings:     servings,
		TimeMinutes:  timeMinutes,
		Instructions: strings.TrimSpace(record["instructions"]),
	}

	var existing models.Recipe
	err := database.WithContext(ctx).Where("name_lower = ?", models.FoldName(name)).First(&existing).Error
	if err == nil {
		recipe.ID = existing.ID
		recipe.CreatedAt = existing.CreatedAt
		recipe.Image = existing.Image
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find recipe by name %q: %w", name, err)
	}

	if categoryName := models.NormalizeName(record["category"]); categoryName != "" {
		category, err := findOrCreateCategory(ctx, database, categoryName)
		if err != nil {
			return err
		}
		recipe.CategoryID = &category.ID
	}

	items, err := parseIngredients(ctx, database, record["ingredients"])
	if err != nil {
		return err
	}

	if err := dataStore.SaveRecipe(ctx, &recipe, items); err != nil {
		return fmt.Errorf("save recipe %q: %w", name, err)
	}

	return nil
}

// parseIngredients decodes the ingredients column, a semicolon-separated list
// of "quantity|ingredient name" pairs, creating ingredient records as needed.
func parseIngredients(ctx context.Context, database *gorm.DB, value string) ([]models.RecipeIngredient, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	entries := strings.Split(value, ";")
	items := make([]models.RecipeIngredient, 0, len(entries))
	seen := map[string]struct{}{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		quantity := ""
		ingredientName := entry
		if pipe := strings.Index(entry, "|"); pipe >= 0 {
			quantity = strings.TrimSpace(entry[:pipe])
			ingredientName = entry[pipe+1:]
		}

		ingredientName = models.NormalizeName(ingredientName)
		if ingredientName == "" {
			continue
		}
		key := strings.ToLower(ingredientName)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		ingredient, err := findOrCreateIngredient(ctx, database, ingredientName)
		if err != nil {
			return nil, err
		}
		ingredientID := ingredient.ID
		items = append(items, models.RecipeIngredient{
			Quantity:     quantity,
			IngredientID: &ingredientID,
		})
	}

	return items, nil
}

func findOrCreateCategory(ctx context.Context, database *gorm.DB, name string) (*models.Category, error) {
	var category models.Category
	err := database.WithContext(ctx).Where("name_lower = ?", models.FoldName(name)).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find category %q: %w", name, err)
	}

	category = models.Category{Name: name}
	if err := database.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	return &category, nil
}

func findOrCreateIngredient(ctx context.Context, database *gorm.DB, name string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := database.WithContext(ctx).Where("name_lower = ?", models.FoldName(name)).First(&ingredient).Error
	if err == nil {
		return &ingredient, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find ingredient %q: %w", name, err)
	}

	ingredient = models.Ingredient{Name: name}
	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, fmt.Errorf("create ingredient %q: %w", name, err)
	}
	return &ingredient, nil
}

func parseCount(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	match := numberPattern.FindString(value)
	if match == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(match)
	if err != nil {
		return fallback
	}
	return parsed
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}
