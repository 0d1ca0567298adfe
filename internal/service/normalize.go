package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pageza/kaintayo/backend/internal/types"
)

// IngredientSeparator delimits ingredients in the upstream's flat string
const IngredientSeparator = ", "

// ShapeKind names a recognized upstream payload structure
type ShapeKind string

const (
	ShapeData    ShapeKind = "data"
	ShapeRecipe  ShapeKind = "recipe"
	ShapeRecipes ShapeKind = "recipes"
	ShapeEmpty   ShapeKind = "empty"
)

// Shape is one variant of the upstream payload union. Each variant knows
// which raw records it carries.
type Shape interface {
	Kind() ShapeKind
	Records() []json.RawMessage
}

// DataShape is `{"data": [...]}`
type DataShape struct{ Items []json.RawMessage }

// RecipeShape is `{"ok": true, "recipe": {...}}`
type RecipeShape struct{ Item json.RawMessage }

// RecipesShape is `{"ok": true, "recipes": {...} | [...]}`
type RecipesShape struct{ Items []json.RawMessage }

// EmptyShape is any payload with no recognized structure
type EmptyShape struct{}

func (DataShape) Kind() ShapeKind    { return ShapeData }
func (RecipeShape) Kind() ShapeKind  { return ShapeRecipe }
func (RecipesShape) Kind() ShapeKind { return ShapeRecipes }
func (EmptyShape) Kind() ShapeKind   { return ShapeEmpty }

func (s DataShape) Records() []json.RawMessage    { return s.Items }
func (s RecipeShape) Records() []json.RawMessage  { return []json.RawMessage{s.Item} }
func (s RecipesShape) Records() []json.RawMessage { return s.Items }
func (EmptyShape) Records() []json.RawMessage     { return nil }

type envelope map[string]json.RawMessage

type shapeDetector func(envelope) (Shape, bool)

// shapeDetectors are probed in order; the first match wins
var shapeDetectors = []shapeDetector{
	detectData,
	detectRecipe,
	detectRecipes,
}

func detectData(env envelope) (Shape, bool) {
	items, ok := asArray(env["data"])
	if !ok {
		return nil, false
	}
	return DataShape{Items: items}, true
}

func detectRecipe(env envelope) (Shape, bool) {
	if !truthy(env["ok"]) || !isObject(env["recipe"]) {
		return nil, false
	}
	return RecipeShape{Item: env["recipe"]}, true
}

func detectRecipes(env envelope) (Shape, bool) {
	if !truthy(env["ok"]) {
		return nil, false
	}
	raw := env["recipes"]
	if isObject(raw) {
		return RecipesShape{Items: []json.RawMessage{raw}}, true
	}
	if items, ok := asArray(raw); ok {
		return RecipesShape{Items: items}, true
	}
	return nil, false
}

// DetectShape classifies a parsed upstream payload
func DetectShape(env map[string]json.RawMessage) Shape {
	for _, detect := range shapeDetectors {
		if shape, ok := detect(env); ok {
			return shape
		}
	}
	return EmptyShape{}
}

// upstreamRecipe is a recipe record as the upstream service names its fields
type upstreamRecipe struct {
	ID           json.RawMessage `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Instructions string          `json:"instructions"`
	Category     *string         `json:"category"`
	PrepTime     types.Quantity  `json:"prepTime"`
	CookTime     types.Quantity  `json:"cookTime"`
	Servings     types.Quantity  `json:"servings"`
	Ingredients  *string         `json:"ingredients"`
	ImageURL     string          `json:"imageUrl"`
}

// RecipeResult is the outcome of normalizing one upstream response. When
// Passthrough is set, Raw holds the untouched upstream body and the recipe
// fields are empty.
type RecipeResult struct {
	StatusCode  int
	Passthrough bool
	ContentType string
	Raw         []byte

	Shape      ShapeKind
	Recipes    []types.Recipe
	Pagination json.RawMessage
	Total      types.Quantity
}

// Normalizer maps upstream payloads onto the stable Recipe representation
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a new Normalizer instance
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize turns an upstream response into a RecipeResult. Non-JSON
// responses are passed through unchanged; a malformed record fails the
// whole response.
func (n *Normalizer) Normalize(resp *UpstreamResponse) (*RecipeResult, error) {
	if !strings.Contains(resp.ContentType, "application/json") {
		n.logger.Error("upstream returned non-JSON response",
			"status", resp.StatusCode,
			"content_type", resp.ContentType,
			"body", string(resp.Body))
		return &RecipeResult{
			StatusCode:  resp.StatusCode,
			Passthrough: true,
			ContentType: resp.ContentType,
			Raw:         resp.Body,
		}, nil
	}

	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("%w: invalid JSON body", ErrMalformedResponse)
	}

	env := envelope{}
	if isObject(resp.Body) {
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
	}

	shape := DetectShape(env)
	records := shape.Records()
	recipes := make([]types.Recipe, 0, len(records))
	for i, raw := range records {
		recipe, err := normalizeRecipe(raw)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", shape.Kind(), i, err)
		}
		recipes = append(recipes, recipe)
	}

	result := &RecipeResult{
		StatusCode: resp.StatusCode,
		Shape:      shape.Kind(),
		Recipes:    recipes,
		Pagination: json.RawMessage("null"),
		Total:      types.Quantity(len(recipes)),
	}
	if raw, ok := env["pagination"]; ok {
		result.Pagination = raw
	}
	if raw, ok := env["total"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &result.Total); err != nil {
			return nil, fmt.Errorf("%w: total: %w", ErrMalformedResponse, err)
		}
	}

	return result, nil
}

func normalizeRecipe(raw json.RawMessage) (types.Recipe, error) {
	var src upstreamRecipe
	if err := json.Unmarshal(raw, &src); err != nil {
		return types.Recipe{}, fmt.Errorf("%w: %w", ErrMalformedRecipe, err)
	}

	id, err := stringifyID(src.ID)
	if err != nil {
		return types.Recipe{}, err
	}
	if src.Ingredients == nil {
		return types.Recipe{}, fmt.Errorf("%w: missing ingredients", ErrMalformedRecipe)
	}

	return types.Recipe{
		ID:           id,
		Title:        src.Title,
		Description:  src.Description,
		Instructions: src.Instructions,
		Category:     src.Category,
		PrepTime:     src.PrepTime,
		CookTime:     src.CookTime,
		Servings:     src.Servings,
		Ingredients:  strings.Split(*src.Ingredients, IngredientSeparator),
		ImageURL:     src.ImageURL,
	}, nil
}

// stringifyID renders the upstream id as a string whether it arrived as a
// JSON string, number or boolean.
func stringifyID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || isNull(raw) {
		return "", fmt.Errorf("%w: missing id", ErrMalformedRecipe)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b), nil
	}

	return "", fmt.Errorf("%w: unsupported id %s", ErrMalformedRecipe, string(raw))
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isObject(raw []byte) bool { return firstByte(raw) == '{' }

func isNull(raw []byte) bool { return string(bytes.TrimSpace(raw)) == "null" }

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if firstByte(raw) != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// truthy reports whether a JSON value would pass a loose boolean check:
// false, 0, "", null and absent values are falsy, everything else is truthy.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	switch firstByte(raw) {
	case '{', '[':
		return true
	case 't':
		return true
	case 'f', 'n':
		return false
	case '"':
		var s string
		return json.Unmarshal(raw, &s) == nil && s != ""
	default:
		var f float64
		return json.Unmarshal(raw, &f) == nil && f != 0
	}
}
