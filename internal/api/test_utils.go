package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/pageza/kaintayo/backend/internal/mocks"
	"github.com/pageza/kaintayo/backend/internal/service"
)

// SetupTestRouter builds a router backed by a mock recipe service. A nil
// authService leaves the recipe routes open.
func SetupTestRouter(authService service.IAuthService) (*gin.Engine, *mocks.MockRecipeService) {
	gin.SetMode(gin.TestMode)
	recipeService := &mocks.MockRecipeService{}

	router := gin.New()
	router.Use(gin.Recovery())
	RegisterRoutes(router, recipeService, authService, nil)

	return router, recipeService
}

// PerformRequest is a helper function to make HTTP requests in tests
func PerformRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	return PerformRequestWithToken(router, method, path, body, "")
}

// PerformRequestWithToken performs an HTTP request with a bearer token
func PerformRequestWithToken(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	router.ServeHTTP(w, req)
	return w
}
