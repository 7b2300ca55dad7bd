package products

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmart/mini-commerce/apperrors"
	"github.com/openmart/mini-commerce/services"
)

func TestHandleGetByID(t *testing.T) {
	testCases := []struct {
		name               string
		pathID             string
		svc                *mockProductService
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:   "Found",
			pathID: "1",
			svc: func() *mockProductService {
				v := newTestView(1, "Laptop", 999.99)
				return &mockProductService{view: &v}
			}(),
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var view services.ProductView
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
				assert.Equal(t, "Laptop", view.Name)
			},
		},
		{
			name:               "Not found",
			pathID:             "99",
			svc:                &mockProductService{},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "Product not found", errResp["error"])
			},
		},
		{
			name:               "Non-numeric id",
			pathID:             "abc",
			svc:                &mockProductService{},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Zero id",
			pathID:             "0",
			svc:                &mockProductService{},
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewProductsHandler(tc.svc)
			req := httptest.NewRequest("GET", "/api/products/"+tc.pathID, nil)
			req.SetPathValue("id", tc.pathID)
			rec := httptest.NewRecorder()

			handler.HandleGetByID(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		svc                *mockProductService
		expectedStatusCode int
		checkCalls         func(t *testing.T, svc *mockProductService)
	}{
		{
			name: "Created",
			body: `{"name":"Laptop","price":999.99,"categoryId":1}`,
			svc: func() *mockProductService {
				v := newTestView(7, "Laptop", 999.99)
				return &mockProductService{view: &v}
			}(),
			expectedStatusCode: http.StatusCreated,
			checkCalls: func(t *testing.T, svc *mockProductService) {
				assert.Equal(t, "Laptop", svc.lastDraft.Name)
				assert.Equal(t, uint(1), svc.lastDraft.CategoryID)
			},
		},
		{
			name:               "Malformed body",
			body:               `{not json`,
			svc:                &mockProductService{},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Validation failure surfaces the reason",
			body:               `{"name":"Laptop","price":10,"categoryId":42}`,
			svc:                &mockProductService{err: apperrors.Validation("categoryId", "category 42 does not exist")},
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewProductsHandler(tc.svc)
			req := httptest.NewRequest("POST", "/api/products", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			handler.HandleCreate(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkCalls != nil {
				tc.checkCalls(t, tc.svc)
			}
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		svcErr             error
		expectedStatusCode int
		expectedError      string
	}{
		{
			name:               "Updated",
			body:               `{"name":"Workstation"}`,
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "Not found",
			body:               `{"name":"Workstation"}`,
			svcErr:             apperrors.NotFoundf("product 1"),
			expectedStatusCode: http.StatusNotFound,
			expectedError:      "Product not found",
		},
		{
			name:               "Concurrent modification",
			body:               `{"name":"Workstation"}`,
			svcErr:             apperrors.Conflictf("product 1 was modified concurrently"),
			expectedStatusCode: http.StatusConflict,
			expectedError:      "Product was modified concurrently",
		},
		{
			name:               "Validation failure",
			body:               `{"categoryId":42}`,
			svcErr:             apperrors.Validation("categoryId", "category 42 does not exist"),
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Malformed body",
			body:               `{not json`,
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockProductService{err: tc.svcErr}
			if tc.svcErr == nil {
				v := newTestView(1, "Workstation", 999.99)
				svc.view = &v
			}
			handler := NewProductsHandler(svc)
			req := httptest.NewRequest("PUT", "/api/products/1", strings.NewReader(tc.body))
			req.SetPathValue("id", "1")
			rec := httptest.NewRecorder()

			handler.HandleUpdate(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedError != "" {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, tc.expectedError, errResp["error"])
			}
		})
	}
}

func TestHandleDelete(t *testing.T) {
	t.Run("Deleted", func(t *testing.T) {
		svc := &mockProductService{}
		handler := NewProductsHandler(svc)
		req := httptest.NewRequest("DELETE", "/api/products/1", nil)
		req.SetPathValue("id", "1")
		rec := httptest.NewRecorder()

		handler.HandleDelete(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, svc.deleteCalled)
		assert.Equal(t, uint(1), svc.lastID)
	})

	t.Run("Not found", func(t *testing.T) {
		svc := &mockProductService{err: apperrors.NotFoundf("product 99")}
		handler := NewProductsHandler(svc)
		req := httptest.NewRequest("DELETE", "/api/products/99", nil)
		req.SetPathValue("id", "99")
		rec := httptest.NewRecorder()

		handler.HandleDelete(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		svc := &mockProductService{}
		handler := NewProductsHandler(svc)
		req := httptest.NewRequest("DELETE", "/api/products/abc", nil)
		req.SetPathValue("id", "abc")
		rec := httptest.NewRecorder()

		handler.HandleDelete(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, svc.deleteCalled, "Service must not be called")
	})
}
