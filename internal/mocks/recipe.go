package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/kaintayo/backend/internal/service"
	"github.com/pageza/kaintayo/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// ListRecipes mocks the ListRecipes method
func (m *MockRecipeService) ListRecipes(ctx context.Context, q types.ListQuery) (*service.RecipeResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeResult), args.Error(1)
}

// SearchRecipes mocks the SearchRecipes method
func (m *MockRecipeService) SearchRecipes(ctx context.Context, keyword string) (*service.RecipeResult, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipeResult), args.Error(1)
}

// MockRecipeSource is a mock implementation of the upstream recipe service
type MockRecipeSource struct {
	mock.Mock
}

// List mocks the List method
func (m *MockRecipeSource) List(ctx context.Context, q types.ListQuery) (*service.UpstreamResponse, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpstreamResponse), args.Error(1)
}

// Search mocks the Search method
func (m *MockRecipeSource) Search(ctx context.Context, keyword string) (*service.UpstreamResponse, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpstreamResponse), args.Error(1)
}
