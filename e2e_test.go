package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/FACorreiaa/go-city-registry/config"
	"github.com/FACorreiaa/go-city-registry/internal/api"
	"github.com/FACorreiaa/go-city-registry/internal/container"
	"github.com/FACorreiaa/go-city-registry/internal/router"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

func newTestServerHandler(logger *slog.Logger) (http.Handler, error) {
	var cfg config.Config
	cfg.Server.Greeting = "Hello from the city registry"
	cfg.Seeds = []types.CitySeed{
		{Name: "Paris", Population: 2160000},
		{Name: "Lyon", Population: 515000},
		{Name: "Marseille", Population: 861000},
	}

	c, err := container.NewContainer(&cfg, logger)
	if err != nil {
		return nil, err
	}
	return newHTTPHandler(logger, 5*time.Second, router.SetupRouter(c.RouterConfig())), nil
}

// E2ETestSuite exercises complete workflows against a real server instance.
type E2ETestSuite struct {
	suite.Suite
	server  *httptest.Server
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// SetupTest starts a fresh server so every test sees the seeded store.
func (suite *E2ETestSuite) SetupTest() {
	suite.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	h, err := newTestServerHandler(suite.logger)
	suite.Require().NoError(err)

	suite.server = httptest.NewServer(h)
	suite.baseURL = suite.server.URL
	suite.client = &http.Client{Timeout: 10 * time.Second}
}

func (suite *E2ETestSuite) TearDownTest() {
	if suite.server != nil {
		suite.server.Close()
	}
}

func (suite *E2ETestSuite) makeRequest(method, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, suite.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return suite.client.Do(req)
}

func (suite *E2ETestSuite) decode(resp *http.Response, dst any) {
	defer resp.Body.Close()
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(dst))
}

func (suite *E2ETestSuite) TestCityLifecycle() {
	t := suite.T()

	// Step 1: create
	resp, err := suite.makeRequest(http.MethodPost, "/cities", map[string]any{"name": "Nice", "population": 340000})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	var created struct {
		api.Response
		Data types.City `json:"data"`
	}
	suite.decode(resp, &created)
	assert.Equal(t, 4, created.Data.ID)

	// Step 2: read back
	resp, err = suite.makeRequest(http.MethodGet, fmt.Sprintf("/cities/%d", created.Data.ID), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched types.City
	suite.decode(resp, &fetched)
	assert.Equal(t, created.Data, fetched)

	// Step 3: update
	resp, err = suite.makeRequest(http.MethodPut, "/cities/4", map[string]any{"name": "Nice", "population": 350000})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Step 4: delete twice
	resp, err = suite.makeRequest(http.MethodDelete, "/cities/4", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = suite.makeRequest(http.MethodDelete, "/cities/4", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var missing api.Response
	suite.decode(resp, &missing)
	assert.Equal(t, "record not found", missing.Error)
	assert.NotEmpty(t, missing.RequestID)

	resp, err = suite.makeRequest(http.MethodGet, "/cities/4", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Step 5: a new city never reuses id 4
	resp, err = suite.makeRequest(http.MethodPost, "/cities", map[string]any{"name": "Lille", "population": 236000})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	suite.decode(resp, &created)
	assert.Equal(t, 5, created.Data.ID)
}

func (suite *E2ETestSuite) TestTrailingSlashIsStripped() {
	resp, err := suite.makeRequest(http.MethodGet, "/cities/", nil)
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)

	var cities []types.City
	suite.decode(resp, &cities)
	suite.Len(cities, 3)
}

func (suite *E2ETestSuite) TestConcurrentDuplicateCreates() {
	const clients = 20

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = map[int]int{}
	)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := suite.makeRequest(http.MethodPost, "/cities", map[string]any{"name": "Toulouse", "population": 500000})
			if err != nil {
				return
			}
			resp.Body.Close()
			mu.Lock()
			results[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	suite.Equal(1, results[http.StatusOK])
	suite.Equal(clients-1, results[http.StatusBadRequest])
}

func TestE2ETestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}
