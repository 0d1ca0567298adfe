package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/kaintayo/backend/internal/types"
)

func jsonResponse(status int, body string) *UpstreamResponse {
	return &UpstreamResponse{
		StatusCode:  status,
		ContentType: "application/json; charset=utf-8",
		Body:        []byte(body),
	}
}

func TestNormalize_DataShape(t *testing.T) {
	n := NewNormalizer(nil)
	body := `{"data":[{"id":1,"title":"Adobo","ingredients":"pork, soy sauce, vinegar","prepTime":10,"cookTime":40,"servings":4,"imageUrl":"x.jpg","description":"d","instructions":"i"}]}`

	result, err := n.Normalize(jsonResponse(http.StatusOK, body))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.False(t, result.Passthrough)
	assert.Equal(t, ShapeData, result.Shape)
	require.Len(t, result.Recipes, 1)

	recipe := result.Recipes[0]
	assert.Equal(t, "1", recipe.ID)
	assert.Equal(t, "Adobo", recipe.Title)
	assert.Equal(t, "d", recipe.Description)
	assert.Equal(t, "i", recipe.Instructions)
	assert.Equal(t, []string{"pork", "soy sauce", "vinegar"}, recipe.Ingredients)
	assert.Equal(t, types.Quantity(10), recipe.PrepTime)
	assert.Equal(t, types.Quantity(40), recipe.CookTime)
	assert.Equal(t, types.Quantity(4), recipe.Servings)
	assert.Equal(t, "x.jpg", recipe.ImageURL)
	assert.Nil(t, recipe.Category)

	out, err := json.Marshal(recipe)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"1","title":"Adobo","description":"d","instructions":"i",
		"prep_time":10,"cook_time":40,"servings":4,
		"ingredients":["pork","soy sauce","vinegar"],"image_url":"x.jpg"
	}`, string(out))
}

func TestNormalize_IngredientsRoundTrip(t *testing.T) {
	n := NewNormalizer(nil)
	cases := []string{
		"pork, soy sauce, vinegar",
		"rice",
		"",
		"a,b, c",
		"garlic, , onion",
		"salt,  pepper",
		"line\nbreak, tab\tbed",
	}

	records := make([]string, 0, len(cases))
	for i, ingredients := range cases {
		encoded, err := json.Marshal(ingredients)
		require.NoError(t, err)
		records = append(records, fmt.Sprintf(`{"id":%d,"ingredients":%s}`, i, encoded))
	}
	body := `{"data":[` + strings.Join(records, ",") + `]}`

	result, err := n.Normalize(jsonResponse(http.StatusOK, body))
	require.NoError(t, err)
	require.Len(t, result.Recipes, len(cases))

	for i, recipe := range result.Recipes {
		assert.Equal(t, cases[i], strings.Join(recipe.Ingredients, IngredientSeparator))
		assert.NotNil(t, recipe.Ingredients)
	}
}

func TestNormalize_RecipeShape(t *testing.T) {
	n := NewNormalizer(nil)
	body := `{"ok":true,"recipe":{"id":7,"title":"Sinigang","ingredients":"pork, tamarind","prepTime":"15","cookTime":60,"servings":"6","category":"Soup"}}`

	result, err := n.Normalize(jsonResponse(http.StatusOK, body))
	require.NoError(t, err)

	assert.Equal(t, ShapeRecipe, result.Shape)
	require.Len(t, result.Recipes, 1)
	assert.Equal(t, "7", result.Recipes[0].ID)
	assert.Equal(t, types.Quantity(15), result.Recipes[0].PrepTime)
	assert.Equal(t, types.Quantity(6), result.Recipes[0].Servings)
	require.NotNil(t, result.Recipes[0].Category)
	assert.Equal(t, "Soup", *result.Recipes[0].Category)
}

func TestNormalize_RecipesShape(t *testing.T) {
	n := NewNormalizer(nil)

	t.Run("single object", func(t *testing.T) {
		body := `{"ok":true,"recipes":{"id":8,"title":"Pancit","ingredients":"noodles, cabbage"}}`

		result, err := n.Normalize(jsonResponse(http.StatusOK, body))
		require.NoError(t, err)
		assert.Equal(t, ShapeRecipes, result.Shape)
		require.Len(t, result.Recipes, 1)
		assert.Equal(t, "8", result.Recipes[0].ID)
		assert.Equal(t, []string{"noodles", "cabbage"}, result.Recipes[0].Ingredients)
	})

	t.Run("sequence", func(t *testing.T) {
		body := `{"ok":1,"recipes":[{"id":"a1","ingredients":"egg"},{"id":9,"ingredients":"fish, salt"}]}`

		result, err := n.Normalize(jsonResponse(http.StatusOK, body))
		require.NoError(t, err)
		assert.Equal(t, ShapeRecipes, result.Shape)
		require.Len(t, result.Recipes, 2)
		assert.Equal(t, "a1", result.Recipes[0].ID)
		assert.Equal(t, "9", result.Recipes[1].ID)
	})
}

func TestNormalize_ShapeDetectionOrder(t *testing.T) {
	n := NewNormalizer(nil)
	body := `{
		"ok": true,
		"data": [{"id":1,"ingredients":"a"},{"id":2,"ingredients":"b"}],
		"recipe": {"id":3,"ingredients":"c"},
		"recipes": [{"id":4,"ingredients":"d"}]
	}`

	result, err := n.Normalize(jsonResponse(http.StatusOK, body))
	require.NoError(t, err)
	assert.Equal(t, ShapeData, result.Shape)
	require.Len(t, result.Recipes, 2)
	assert.Equal(t, "1", result.Recipes[0].ID)

	body = `{"ok":true,"recipe":{"id":3,"ingredients":"c"},"recipes":[{"id":4,"ingredients":"d"}]}`
	result, err = n.Normalize(jsonResponse(http.StatusOK, body))
	require.NoError(t, err)
	assert.Equal(t, ShapeRecipe, result.Shape)
	assert.Equal(t, "3", result.Recipes[0].ID)
}

func TestNormalize_UnrecognizedShapeIsEmpty(t *testing.T) {
	n := NewNormalizer(nil)
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "no known fields", status: http.StatusOK, body: `{"message":"hello"}`},
		{name: "recipe without ok", status: http.StatusOK, body: `{"recipe":{"id":1,"ingredients":"a"}}`},
		{name: "recipe with falsy ok", status: http.StatusOK, body: `{"ok":false,"recipe":{"id":1,"ingredients":"a"}}`},
		{name: "recipes with zero ok", status: http.StatusOK, body: `{"ok":0,"recipes":[{"id":1,"ingredients":"a"}]}`},
		{name: "recipes with empty string ok", status: http.StatusOK, body: `{"ok":"","recipes":{"id":1,"ingredients":"a"}}`},
		{name: "data not a sequence", status: http.StatusOK, body: `{"data":{"id":1}}`},
		{name: "data null", status: http.StatusOK, body: `{"data":null}`},
		{name: "recipe not an object", status: http.StatusOK, body: `{"ok":true,"recipe":"adobo"}`},
		{name: "top-level array", status: http.StatusOK, body: `[{"id":1,"ingredients":"a"}]`},
		{name: "top-level null", status: http.StatusOK, body: `null`},
		{name: "error status keeps code", status: http.StatusNotFound, body: `{"error":"not found"}`},
		{name: "server error keeps code", status: http.StatusServiceUnavailable, body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := n.Normalize(jsonResponse(tt.status, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.status, result.StatusCode)
			assert.Equal(t, ShapeEmpty, result.Shape)
			assert.NotNil(t, result.Recipes)
			assert.Empty(t, result.Recipes)
			assert.Equal(t, types.Quantity(0), result.Total)
		})
	}
}

func TestNormalize_NonJSONPassthrough(t *testing.T) {
	n := NewNormalizer(nil)
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
	}{
		{name: "html error page", status: http.StatusInternalServerError, contentType: "text/html; charset=utf-8", body: "<html><body>Internal Server Error</body></html>"},
		{name: "missing content type", status: http.StatusBadGateway, contentType: "", body: `{"data":[]}`},
		{name: "plain text success", status: http.StatusOK, contentType: "text/plain", body: "Unauthorized key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := n.Normalize(&UpstreamResponse{
				StatusCode:  tt.status,
				ContentType: tt.contentType,
				Body:        []byte(tt.body),
			})
			require.NoError(t, err)
			assert.True(t, result.Passthrough)
			assert.Equal(t, tt.status, result.StatusCode)
			assert.Equal(t, tt.contentType, result.ContentType)
			assert.Equal(t, tt.body, string(result.Raw))
			assert.Nil(t, result.Recipes)
		})
	}
}

func TestNormalize_StatusMirroredOnSuccessPath(t *testing.T) {
	n := NewNormalizer(nil)
	body := `{"data":[{"id":1,"ingredients":"a"}]}`

	result, err := n.Normalize(jsonResponse(http.StatusAccepted, body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, result.StatusCode)
	assert.Len(t, result.Recipes, 1)
}

func TestNormalize_IDAlwaysString(t *testing.T) {
	n := NewNormalizer(nil)
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `42`, want: "42"},
		{raw: `"42"`, want: "42"},
		{raw: `0`, want: "0"},
		{raw: `-3`, want: "-3"},
		{raw: `1.5`, want: "1.5"},
		{raw: `12345678901`, want: "12345678901"},
		{raw: `"abc-123"`, want: "abc-123"},
		{raw: `true`, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			body := fmt.Sprintf(`{"data":[{"id":%s,"ingredients":"a"}]}`, tt.raw)
			result, err := n.Normalize(jsonResponse(http.StatusOK, body))
			require.NoError(t, err)
			require.Len(t, result.Recipes, 1)
			assert.Equal(t, tt.want, result.Recipes[0].ID)
		})
	}
}

func TestNormalize_ListMetadata(t *testing.T) {
	n := NewNormalizer(nil)

	t.Run("pagination and total passed through", func(t *testing.T) {
		body := `{"data":[{"id":1,"ingredients":"a"}],"pagination":{"page":2,"limit":1,"pages":5},"total":5}`
		result, err := n.Normalize(jsonResponse(http.StatusOK, body))
		require.NoError(t, err)
		assert.JSONEq(t, `{"page":2,"limit":1,"pages":5}`, string(result.Pagination))
		assert.Equal(t, types.Quantity(5), result.Total)
	})

	t.Run("count and null when absent", func(t *testing.T) {
		body := `{"data":[{"id":1,"ingredients":"a"},{"id":2,"ingredients":"b"}]}`
		result, err := n.Normalize(jsonResponse(http.StatusOK, body))
		require.NoError(t, err)
		assert.Equal(t, "null", string(result.Pagination))
		assert.Equal(t, types.Quantity(2), result.Total)
	})

	t.Run("total as string", func(t *testing.T) {
		body := `{"data":[],"total":"12"}`
		result, err := n.Normalize(jsonResponse(http.StatusOK, body))
		require.NoError(t, err)
		assert.Equal(t, types.Quantity(12), result.Total)
	})
}

func TestNormalize_MalformedInputFailsRequest(t *testing.T) {
	n := NewNormalizer(nil)
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "missing id", body: `{"data":[{"ingredients":"a"}]}`, wantErr: ErrMalformedRecipe},
		{name: "null id", body: `{"data":[{"id":null,"ingredients":"a"}]}`, wantErr: ErrMalformedRecipe},
		{name: "missing ingredients", body: `{"data":[{"id":1}]}`, wantErr: ErrMalformedRecipe},
		{name: "ingredients as array", body: `{"data":[{"id":1,"ingredients":["a","b"]}]}`, wantErr: ErrMalformedRecipe},
		{name: "record not an object", body: `{"data":["adobo"]}`, wantErr: ErrMalformedRecipe},
		{name: "bad servings", body: `{"ok":true,"recipe":{"id":1,"ingredients":"a","servings":"many"}}`, wantErr: ErrMalformedRecipe},
		{name: "one bad record fails all", body: `{"data":[{"id":1,"ingredients":"a"},{"id":2}]}`, wantErr: ErrMalformedRecipe},
		{name: "invalid JSON", body: `{"data":[`, wantErr: ErrMalformedResponse},
		{name: "bad total", body: `{"data":[],"total":{"n":1}}`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := n.Normalize(jsonResponse(http.StatusOK, tt.body))
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalize_MissingDelimiterIsSingleIngredient(t *testing.T) {
	n := NewNormalizer(nil)
	body := `{"data":[{"id":1,"ingredients":"pork;garlic;vinegar"}]}`

	result, err := n.Normalize(jsonResponse(http.StatusOK, body))
	require.NoError(t, err)
	assert.Equal(t, []string{"pork;garlic;vinegar"}, result.Recipes[0].Ingredients)
}

func TestTruthy(t *testing.T) {
	truthyValues := []string{`true`, `1`, `-1`, `0.5`, `"yes"`, `"false"`, `{}`, `[]`}
	falsyValues := []string{``, `false`, `0`, `0.0`, `""`, `null`}

	for _, v := range truthyValues {
		assert.True(t, truthy(json.RawMessage(v)), v)
	}
	for _, v := range falsyValues {
		assert.False(t, truthy(json.RawMessage(v)), v)
	}
}
