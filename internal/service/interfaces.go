package service

import (
	"context"

	"github.com/pageza/kaintayo/backend/internal/types"
)

// RecipeSource is the upstream recipe service
type RecipeSource interface {
	List(ctx context.Context, q types.ListQuery) (*UpstreamResponse, error)
	Search(ctx context.Context, keyword string) (*UpstreamResponse, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, q types.ListQuery) (*RecipeResult, error)
	SearchRecipes(ctx context.Context, keyword string) (*RecipeResult, error)
}

// IAuthService defines the interface for session token operations
type IAuthService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
}
