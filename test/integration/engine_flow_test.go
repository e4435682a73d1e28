package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grachmannico95/payment-engine/internal/config"
	"github.com/grachmannico95/payment-engine/internal/dispatch"
	"github.com/grachmannico95/payment-engine/internal/handler"
	"github.com/grachmannico95/payment-engine/internal/server"
	"github.com/grachmannico95/payment-engine/internal/service"
	"github.com/grachmannico95/payment-engine/internal/storage"
	"github.com/grachmannico95/payment-engine/pkg/logger"
)

const canonicalCSV = `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
dispute, 1, 4
resolve, 1, 4
dispute, 1, 3
withdrawal, 2, 5, 3.0
chargeback, 1, 3`

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.NewNop()
	repo := storage.NewMemoryStore()

	processor := service.NewProcessor(log)
	engineService := service.NewEngineService(repo, processor, log, &dispatch.Config{
		ShardCount:    2,
		ChannelBuffer: 100,
	})

	ledgerHandler := handler.NewLedgerHandler(engineService, log)
	healthHandler := handler.NewHealthHandler()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
	}

	srv := server.New(cfg, log, ledgerHandler, healthHandler)

	testServer := httptest.NewServer(srv.Handler())
	t.Cleanup(testServer.Close)

	return testServer
}

func uploadCSV(t *testing.T, url, content string) string {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "transactions.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(url+"/transactions", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result["upload_id"])

	return result["upload_id"]
}

func waitForCompletion(t *testing.T, url, uploadID string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/uploads?upload_id=" + uploadID)
		require.NoError(t, err)

		var upload map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&upload))
		resp.Body.Close()

		if upload["status"] == "completed" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("upload did not complete in time")
}

func getAccounts(t *testing.T, url, uploadID string) []map[string]interface{} {
	t.Helper()

	resp, err := http.Get(url + "/accounts?upload_id=" + uploadID)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		UploadID string                   `json:"upload_id"`
		Accounts []map[string]interface{} `json:"accounts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, uploadID, result.UploadID)

	return result.Accounts
}

func amountOf(t *testing.T, account map[string]interface{}, field string) decimal.Decimal {
	t.Helper()

	raw, ok := account[field].(string)
	require.Truef(t, ok, "field %s missing or not a string: %v", field, account[field])

	return decimal.RequireFromString(raw)
}

func TestTransactionUploadFlow(t *testing.T) {
	srv := setupTestServer(t)

	uploadID := uploadCSV(t, srv.URL, canonicalCSV)
	waitForCompletion(t, srv.URL, uploadID)

	accounts := getAccounts(t, srv.URL, uploadID)
	require.Len(t, accounts, 2)

	client1 := accounts[0]
	assert.Equal(t, float64(1), client1["client"])
	assert.True(t, amountOf(t, client1, "available").Equal(decimal.RequireFromString("1.0")))
	assert.True(t, amountOf(t, client1, "held").IsZero())
	assert.True(t, amountOf(t, client1, "total").Equal(decimal.RequireFromString("1.0")))
	assert.Equal(t, true, client1["locked"])

	client2 := accounts[1]
	assert.Equal(t, float64(2), client2["client"])
	assert.True(t, amountOf(t, client2, "available").Equal(decimal.RequireFromString("-1")))
	assert.True(t, amountOf(t, client2, "held").IsZero())
	assert.True(t, amountOf(t, client2, "total").Equal(decimal.RequireFromString("-1")))
	assert.Equal(t, false, client2["locked"])
}

func TestUploadStatusLifecycle(t *testing.T) {
	srv := setupTestServer(t)

	uploadID := uploadCSV(t, srv.URL, canonicalCSV)
	waitForCompletion(t, srv.URL, uploadID)

	resp, err := http.Get(srv.URL + "/uploads?upload_id=" + uploadID)
	require.NoError(t, err)
	defer resp.Body.Close()

	var upload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upload))

	assert.Equal(t, "completed", upload["status"])
	assert.Equal(t, float64(9), upload["processed_rows"])
	assert.Equal(t, float64(0), upload["skipped_rows"])
	assert.NotEmpty(t, upload["completed_at"])
}

func TestAccountsForUnknownUpload(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/accounts?upload_id=nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadRequiresFile(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Post(srv.URL+"/transactions", "application/json", bytes.NewReader(nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	srv := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, "ok", result["status"])
	assert.NotEmpty(t, result["timestamp"])
}
