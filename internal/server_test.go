package internal

import (
	"context"
	"duitku/config"
	"duitku/entity"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestServer(t *testing.T, gateway http.Handler) http.Handler {
	t.Helper()
	server := NewServer(&config.Config{}, NewMetrics())
	server.SetLogger(nopLogger())
	server.SetPaymentsService(newTestPayments(t, gateway))
	return server.httpServer.Handler
}

func doRequest(handler http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestServer_ServiceInfo(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	w := doRequest(handler, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "running", resp["status"])
	assert.Contains(t, resp["endpoints"], "POST /callback")

	_, err := uuid.Parse(w.Header().Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestServer_RequestIdPropagated(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", id)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get("X-Request-Id"))
}

func TestServer_CreateInvoice(t *testing.T) {
	gateway := &fakeGateway{
		status:   http.StatusOK,
		response: `{"merchantCode":"D1234","reference":"D1234ABCD","paymentUrl":"https://sandbox.example.com/pay/D1234ABCD","statusCode":"00"}`,
	}
	handler := newTestServer(t, gateway)

	w := doRequest(handler, http.MethodPost, "/api/create-invoice", "application/json",
		`{"merchantOrderId":"ORDER001","paymentAmount":50000,"customerEmail":"buyer@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Invoice created successfully", resp["message"])
	assert.Equal(t, "https://sandbox.example.com/pay/D1234ABCD", resp["paymentUrl"])
	assert.Equal(t, "D1234ABCD", resp["reference"])
	assert.Equal(t, "https://shop.example.com/callback", resp["callbackUrl"])
	assert.Equal(t, "D1234", resp["data"].(map[string]interface{})["merchantCode"])
}

func TestServer_CreateInvoiceForm(t *testing.T) {
	gateway := &fakeGateway{status: http.StatusOK, response: `{"reference":"D1234ABCD","paymentUrl":"https://sandbox.example.com/pay/D1234ABCD"}`}
	handler := newTestServer(t, gateway)

	form := url.Values{}
	form.Set("merchantOrderId", "ORDER001")
	form.Set("paymentAmount", "50000")
	form.Set("customerEmail", "buyer@example.com")

	w := doRequest(handler, http.MethodPost, "/api/create-invoice", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "D1234ABCD", decodeBody(t, w)["reference"])

	path, body := gateway.last()
	assert.Equal(t, "/v2/inquiry", path)
	assert.Equal(t, "37d0d715b9ab8f8c5d808380745cc144", body["signature"])
}

func TestServer_CreateInvoiceMissingFields(t *testing.T) {
	gateway := &fakeGateway{status: http.StatusOK, response: `{}`}
	handler := newTestServer(t, gateway)

	w := doRequest(handler, http.MethodPost, "/api/create-invoice", "application/json",
		`{"merchantOrderId":"ORDER001","paymentAmount":50000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "merchantOrderId, paymentAmount, dan customerEmail wajib diisi", decodeBody(t, w)["error"])

	path, _ := gateway.last()
	assert.Empty(t, path)
}

func TestServer_CreateInvoiceInvalidJSON(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	w := doRequest(handler, http.MethodPost, "/api/create-invoice", "application/json", `{"merchantOrderId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_CreateInvoiceRelaysGatewayStatus(t *testing.T) {
	gateway := &fakeGateway{status: http.StatusUnauthorized, response: `{"Message":"Wrong signature"}`}
	handler := newTestServer(t, gateway)

	w := doRequest(handler, http.MethodPost, "/api/create-invoice", "application/json",
		`{"merchantOrderId":"ORDER001","paymentAmount":"50000","customerEmail":"buyer@example.com"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, map[string]interface{}{"Message": "Wrong signature"}, decodeBody(t, w)["error"])
}

func TestServer_CallbackJSON(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	for _, code := range []string{"00", "01", "02"} {
		notification := signedNotification(t, code)
		body, err := json.Marshal(notification)
		require.NoError(t, err)

		w := doRequest(handler, http.MethodPost, "/callback", "application/json", string(body))
		require.Equal(t, http.StatusOK, w.Code, "result code %s", code)
		assert.Equal(t, map[string]interface{}{
			"status":  "success",
			"message": "Callback received and processed",
		}, decodeBody(t, w))
	}
}

func TestServer_CallbackForm(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	notification := signedNotification(t, "00")
	form := url.Values{}
	form.Set("merchantCode", notification.MerchantCode)
	form.Set("amount", notification.Amount.String())
	form.Set("merchantOrderId", notification.MerchantOrderId)
	form.Set("resultCode", notification.ResultCode.String())
	form.Set("reference", notification.Reference)
	form.Set("signature", notification.Signature)

	w := doRequest(handler, http.MethodPost, "/callback", "application/x-www-form-urlencoded; charset=utf-8", form.Encode())
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestServer_CallbackNumericFields(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	notification := signedNotification(t, "00")
	body := `{"merchantCode":"D1234","amount":50000.0,"merchantOrderId":"ORDER001","resultCode":2,"signature":"` + notification.Signature + `"}`

	w := doRequest(handler, http.MethodPost, "/callback", "application/json", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "success", decodeBody(t, w)["status"])
}

func TestServer_CallbackInvalidSignature(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	notification := signedNotification(t, "00")
	notification.Signature = "0123456789abcdef0123456789abcdef"
	body, err := json.Marshal(notification)
	require.NoError(t, err)

	w := doRequest(handler, http.MethodPost, "/callback", "application/json", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]interface{}{"status": "error", "message": "Invalid signature"}, decodeBody(t, w))
}

func TestServer_CallbackMissingParameter(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	for _, body := range []string{`{"merchantCode":"D1234","amount":"50000"}`, ``} {
		w := doRequest(handler, http.MethodPost, "/callback", "application/json", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]interface{}{"status": "error", "message": "Parameter tidak lengkap"}, decodeBody(t, w))
	}
}

func TestServer_CheckTransaction(t *testing.T) {
	gateway := &fakeGateway{status: http.StatusOK, response: `{"merchantOrderId":"ORDER001","statusCode":"00"}`}
	handler := newTestServer(t, gateway)

	w := doRequest(handler, http.MethodPost, "/api/check-transaction", "application/json", `{"merchantOrderId":"ORDER001"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "00", resp["data"].(map[string]interface{})["statusCode"])
}

func TestServer_CheckTransactionForm(t *testing.T) {
	gateway := &fakeGateway{status: http.StatusOK, response: `{"merchantOrderId":"ORDER001","statusCode":"00"}`}
	handler := newTestServer(t, gateway)

	w := doRequest(handler, http.MethodPost, "/api/check-transaction", "application/x-www-form-urlencoded", "merchantOrderId=ORDER001")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeBody(t, w)["success"])

	_, body := gateway.last()
	assert.Equal(t, "061deed40aafb4462c0f307149792fc7", body["signature"])
}

func TestServer_CheckTransactionErrors(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusBadRequest, response: `{"Message":"not found"}`})

	w := doRequest(handler, http.MethodPost, "/api/check-transaction", "application/json", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "merchantOrderId wajib diisi", decodeBody(t, w)["error"])

	w = doRequest(handler, http.MethodPost, "/api/check-transaction", "application/json", `{"merchantOrderId":"ORDER404"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "gateway responded 400")
}

func TestServer_Metrics(t *testing.T) {
	handler := newTestServer(t, &fakeGateway{status: http.StatusOK})

	doRequest(handler, http.MethodGet, "/", "", "")
	w := doRequest(handler, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `duitku_relay_requests_total{route="/",status="success"} 1`)
}

// failingPayments panics on every call.
type failingPayments struct{}

func (failingPayments) CreateInvoice(context.Context, *entity.InvoiceOrder) (*entity.InvoiceResult, error) {
	panic("invoice builder crashed")
}

func (failingPayments) Notify(context.Context, *entity.Notification) *entity.Outcome {
	panic("verifier crashed")
}

func (failingPayments) CheckTransaction(context.Context, string) (json.RawMessage, error) {
	panic("status query crashed")
}

func TestServer_HandlerPanic(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	server := NewServer(&config.Config{}, NewMetrics())
	server.SetLogger(newLoggerWithCore("server", false, zap.New(core), nil))
	server.SetPaymentsService(failingPayments{})
	handler := server.httpServer.Handler

	w := doRequest(handler, http.MethodPost, "/callback", "application/json", `{"merchantCode":"D1234"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]interface{}{"status": "error", "message": "internal server error"}, decodeBody(t, w))

	w = doRequest(handler, http.MethodPost, "/api/check-transaction", "application/json", `{"merchantOrderId":"ORDER001"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody(t, w)["error"])

	errorLogs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errorLogs, 2)
	assert.Equal(t, "panic: verifier crashed", errorLogs[0].ContextMap()["error"])
}
