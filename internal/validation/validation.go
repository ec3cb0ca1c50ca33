// Package validation implements the duplicate-name checks that guard every
// ingredient, category, and recipe mutation. The store itself does not
// enforce name uniqueness; callers are expected to consult this service and
// abort before reaching the store.
package validation

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"larder/models"
)

// Entity names one of the uniquely named record types.
type Entity string

const (
	EntityIngredient Entity = "Ingredient"
	EntityCategory   Entity = "Category"
	EntityRecipe     Entity = "Recipe"
)

// DuplicateNameError reports that a name is already taken by another record
// of the same entity type. Its message is shown verbatim to the user.
type DuplicateNameError struct {
	Entity Entity
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s with the same name exists", e.Entity)
}

var entityModels = map[Entity]any{
	EntityIngredient: &models.Ingredient{},
	EntityCategory:   &models.Category{},
	EntityRecipe:     &models.Recipe{},
}

// Service answers name-existence queries against the persisted records.
type Service struct {
	db *gorm.DB
}

// NewService builds a Service on top of an open database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Exists reports whether a record of the given entity already carries name.
// The comparison is case-insensitive on the normalized name. When excludingID
// is non-zero, the record with that identity is ignored, so an edit does not
// collide with itself.
//
// The check is a plain read; it is not atomic against a concurrent writer
// inserting the same name between Exists and the caller's commit.
func (s *Service) Exists(ctx context.Context, entity Entity, name string, excludingID uint) (bool, error) {
	model, ok := entityModels[entity]
	if !ok {
		return false, fmt.Errorf("unknown entity %q", entity)
	}

	query := s.db.WithContext(ctx).
		Model(model).
		Where("name_lower = ?", models.FoldName(name))
	if excludingID != 0 {
		query = query.Where("id <> ?", excludingID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s name: %w", entity, err)
	}
	return count > 0, nil
}

// CheckName is the gate handlers call before a create or update: it returns
// a *DuplicateNameError when the name is taken by another record, nil when
// the name is free.
func (s *Service) CheckName(ctx context.Context, entity Entity, name string, excludingID uint) error {
	taken, err := s.Exists(ctx, entity, name, excludingID)
	if err != nil {
		return err
	}
	if taken {
		return &DuplicateNameError{Entity: entity}
	}
	return nil
}
