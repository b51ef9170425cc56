package city

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-city-registry/internal/api"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

// MockCityService is a mock implementation of the Service interface
type MockCityService struct {
	mock.Mock
}

func (m *MockCityService) ListCities(ctx context.Context) []types.City {
	args := m.Called(ctx)
	return args.Get(0).([]types.City)
}

func (m *MockCityService) GetCity(ctx context.Context, id int) (types.City, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.City), args.Error(1)
}

func (m *MockCityService) CreateCity(ctx context.Context, input types.CityInput) (types.City, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(types.City), args.Error(1)
}

func (m *MockCityService) UpdateCity(ctx context.Context, id int, input types.CityInput) (types.City, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(types.City), args.Error(1)
}

func (m *MockCityService) DeleteCity(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestRouter(h Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/cities", h.GetAllCities)
	r.Get("/cities/{cityID}", h.GetCity)
	r.Post("/cities", h.CreateCity)
	r.Put("/cities/{cityID}", h.UpdateCity)
	r.Delete("/cities/{cityID}", h.DeleteCity)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) api.Response {
	t.Helper()
	var resp api.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetAllCitiesHandler(t *testing.T) {
	mockService := new(MockCityService)
	r := newTestRouter(NewCityHandler(mockService, discardLogger()))

	cities := []types.City{
		{ID: 1, Name: "Paris", Population: 2160000},
		{ID: 2, Name: "Lyon", Population: 515000},
	}
	mockService.On("ListCities", mock.Anything).Return(cities).Once()

	w := doRequest(t, r, http.MethodGet, "/cities", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []types.City
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, cities, got)
	mockService.AssertExpectations(t)
}

func TestGetCityHandler(t *testing.T) {
	mockService := new(MockCityService)
	r := newTestRouter(NewCityHandler(mockService, discardLogger()))

	t.Run("Success", func(t *testing.T) {
		city := types.City{ID: 1, Name: "Paris", Population: 2160000}
		mockService.On("GetCity", mock.Anything, 1).Return(city, nil).Once()

		w := doRequest(t, r, http.MethodGet, "/cities/1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got types.City
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, city, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService.On("GetCity", mock.Anything, 42).
			Return(types.City{}, fmt.Errorf("city 42: %w", api.ErrNotFound)).Once()

		w := doRequest(t, r, http.MethodGet, "/cities/42", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, MsgNotFound, decodeResponse(t, w).Error)
	})

	t.Run("InvalidID", func(t *testing.T) {
		w := doRequest(t, r, http.MethodGet, "/cities/abc", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgInvalidID, decodeResponse(t, w).Error)
	})

	mockService.AssertExpectations(t)
}

func TestCreateCityHandler(t *testing.T) {
	mockService := new(MockCityService)
	r := newTestRouter(NewCityHandler(mockService, discardLogger()))

	t.Run("Success", func(t *testing.T) {
		input := types.CityInput{Name: "Nice", Population: 340000}
		created := types.City{ID: 4, Name: "Nice", Population: 340000}
		mockService.On("CreateCity", mock.Anything, input).Return(created, nil).Once()

		w := doRequest(t, r, http.MethodPost, "/cities", input)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, MsgCreated, resp.Message)
	})

	t.Run("Duplicate", func(t *testing.T) {
		input := types.CityInput{Name: "paris", Population: 100}
		mockService.On("CreateCity", mock.Anything, input).
			Return(types.City{}, fmt.Errorf("city %q: %w", "paris", api.ErrDuplicateName)).Once()

		w := doRequest(t, r, http.MethodPost, "/cities", input)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgAlreadyExists, decodeResponse(t, w).Error)
	})

	t.Run("ValidationReportsEveryViolation", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/cities", map[string]any{"name": "X", "population": 0})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		msg := decodeResponse(t, w).Error
		assert.Contains(t, msg, "name must contain between 2 and 255 characters")
		assert.Contains(t, msg, "population must be greater than or equal to 1")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/cities", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, decodeResponse(t, w).Success)
	})

	t.Run("UnknownField", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, "/cities", `{"name":"Nice","population":1,"country":"FR"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeResponse(t, w).Error, "country")
	})

	mockService.AssertExpectations(t)
	mockService.AssertNumberOfCalls(t, "CreateCity", 2)
}

func TestUpdateCityHandler(t *testing.T) {
	mockService := new(MockCityService)
	r := newTestRouter(NewCityHandler(mockService, discardLogger()))

	t.Run("PathIDOverridesBody", func(t *testing.T) {
		updated := types.City{ID: 2, Name: "Lyon", Population: 520000}
		mockService.On("UpdateCity", mock.Anything, 2, mock.MatchedBy(func(in types.CityInput) bool {
			return in.ID != nil && *in.ID == 2 && in.Name == "Lyon" && in.Population == 520000
		})).Return(updated, nil).Once()

		w := doRequest(t, r, http.MethodPut, "/cities/2", map[string]any{"id": 99, "name": "Lyon", "population": 520000})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, MsgUpdated, decodeResponse(t, w).Message)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService.On("UpdateCity", mock.Anything, 77, mock.Anything).
			Return(types.City{}, fmt.Errorf("city 77: %w", api.ErrNotFound)).Once()

		w := doRequest(t, r, http.MethodPut, "/cities/77", types.CityInput{Name: "Brest", Population: 1})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgNotFound, decodeResponse(t, w).Error)
	})

	t.Run("ValidationFailsBeforeService", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPut, "/cities/2", types.CityInput{Name: " ", Population: 5})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeResponse(t, w).Error, "name is required")
	})

	mockService.AssertExpectations(t)
	mockService.AssertNumberOfCalls(t, "UpdateCity", 2)
}

func TestDeleteCityHandler(t *testing.T) {
	mockService := new(MockCityService)
	r := newTestRouter(NewCityHandler(mockService, discardLogger()))

	mockService.On("DeleteCity", mock.Anything, 3).Return(nil).Once()
	mockService.On("DeleteCity", mock.Anything, 3).Return(fmt.Errorf("city 3: %w", api.ErrNotFound)).Once()

	w := doRequest(t, r, http.MethodDelete, "/cities/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgDeleted, decodeResponse(t, w).Message)

	w = doRequest(t, r, http.MethodDelete, "/cities/3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgNotFound, decodeResponse(t, w).Error)

	mockService.AssertExpectations(t)
}
