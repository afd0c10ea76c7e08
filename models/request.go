package models

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// categoryNamePattern allows latin letters, Hangul syllables, digits and whitespace
var categoryNamePattern = regexp.MustCompile(`^[a-zA-Z가-힣0-9\s]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the category rules registered
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		if err := validate.RegisterValidation("categoryname", validCategoryName); err != nil {
			panic(fmt.Sprintf("register categoryname validation: %v", err))
		}
	})
	return validate
}

// validCategoryName rejects names that are blank once surrounding
// whitespace is trimmed
func validCategoryName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return strings.TrimSpace(name) != "" && categoryNamePattern.MatchString(name)
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100,categoryname"`
	ParentID  *int64 `json:"parentId,omitempty" validate:"omitempty,gt=0"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

// UpdateCategoryRequest represents the request body for updating a category
type UpdateCategoryRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100,categoryname"`
	ParentID  *int64 `json:"parentId,omitempty" validate:"omitempty,gt=0"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

// Validate validates the create category request
func (r *CreateCategoryRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the update category request
func (r *UpdateCategoryRequest) Validate() error {
	return Validator().Struct(r)
}
