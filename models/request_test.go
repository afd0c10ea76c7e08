package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRequestValidate(t *testing.T) {
	parent := int64(1)

	testCases := []struct {
		name    string
		request CreateCategoryRequest
		valid   bool
	}{
		{"latin name", CreateCategoryRequest{Name: "Tops", SortOrder: 1}, true},
		{"hangul name with inner space", CreateCategoryRequest{Name: "여성 의류", ParentID: &parent}, true},
		{"blank name", CreateCategoryRequest{Name: "   "}, false},
		{"tab name", CreateCategoryRequest{Name: "\t"}, false},
		{"newlines only", CreateCategoryRequest{Name: "\n\n"}, false},
		{"punctuation", CreateCategoryRequest{Name: "Tops!"}, false},
		{"negative sort order", CreateCategoryRequest{Name: "Tops", SortOrder: -1}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.request.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}

			update := UpdateCategoryRequest(tc.request)
			assert.Equal(t, err == nil, update.Validate() == nil)
		})
	}
}

func TestValidatorIsShared(t *testing.T) {
	assert.NotPanics(t, func() { Validator() })
	assert.Same(t, Validator(), Validator())
}
