package service

import (
	"context"

	"github.com/pageza/kaintayo/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	upstream   RecipeSource
	normalizer *Normalizer
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(upstream RecipeSource, normalizer *Normalizer) *RecipeService {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &RecipeService{
		upstream:   upstream,
		normalizer: normalizer,
	}
}

// ListRecipes lists recipes with the given paging and filter parameters
func (s *RecipeService) ListRecipes(ctx context.Context, q types.ListQuery) (*RecipeResult, error) {
	resp, err := s.upstream.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.normalizer.Normalize(resp)
}

// SearchRecipes searches for recipes by keyword
func (s *RecipeService) SearchRecipes(ctx context.Context, keyword string) (*RecipeResult, error) {
	resp, err := s.upstream.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return s.normalizer.Normalize(resp)
}
