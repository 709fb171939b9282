package internal

import (
	"bytes"
	"context"
	"duitku/config"
	"duitku/entity"
	"duitku/services"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/julienschmidt/httprouter"
)

const (
	serviceInfo      = "/"
	createInvoice    = "/api/create-invoice"
	paymentCallback  = "/callback"
	checkTransaction = "/api/check-transaction"
	metricsRoute     = "/metrics"

	maxBodySize = 1 << 20
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	payments   services.Payments
	logger     services.LogHandler
	metrics    *Metrics
}

func NewServer(conf *config.Config, metrics *Metrics) *Server {

	server := Server{
		conf:    conf,
		metrics: metrics,
		logger:  NewLogger("server", false, nil),
	}

	// register itself as a router for httpServer handler
	router := httprouter.New()
	router.PanicHandler = server.panicHandler
	server.Register(router)
	server.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &server
}

func (s *Server) Register(router *httprouter.Router) {
	router.GET(serviceInfo, s.observe(serviceInfo, s.serviceInfo))
	router.POST(createInvoice, s.observe(createInvoice, s.createInvoice))
	router.POST(paymentCallback, s.observe(paymentCallback, s.paymentCallback))
	router.POST(checkTransaction, s.observe(checkTransaction, s.checkTransaction))
	if s.metrics != nil {
		router.Handler(http.MethodGet, metricsRoute, s.metrics.Handler())
	}
}

func (s *Server) SetPaymentsService(payments services.Payments) {
	s.payments = payments
}

func (s *Server) SetLogger(logger services.LogHandler) {
	s.logger = logger
}

func (s *Server) Start() error {
	if s.conf == nil {
		return fmt.Errorf("configuration not loaded")
	}

	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	if s.conf.Listen.TLS {
		s.logger.Info(fmt.Sprintf("starting https TLS on %s", serverAddress))
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Info(fmt.Sprintf("starting http on %s", serverAddress))
		err = s.httpServer.Serve(listener)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observe attaches a request id and records request metrics.
func (s *Server) observe(route string, handle httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()

		var ctx context.Context
		if id := r.Header.Get(requestIDHeader); id != "" {
			ctx = ContextWithRequestID(r.Context(), id)
		} else {
			ctx = WithRequestID(r.Context())
		}
		w.Header().Set(requestIDHeader, GetRequestID(ctx))

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handle(recorder, r.WithContext(ctx), ps)

		s.metrics.RecordRequest(route, recorder.status, time.Since(start))
		s.logger.Debug(fmt.Sprintf("[%s] %s %s: %d in %s", GetRequestID(ctx), r.Method, route, recorder.status, time.Since(start)))
	}
}

func (s *Server) serviceInfo(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "running",
		"message": "Duitku Payment Sandbox Test Server",
		"endpoints": map[string]string{
			"POST " + createInvoice:    "Membuat invoice/transaksi",
			"POST " + paymentCallback:  "Menerima callback dari Duitku",
			"POST " + checkTransaction: "Check status transaksi",
		},
		"note": "Gunakan Postman atau cURL untuk test",
	})
}

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	reqID := GetRequestID(ctx)

	var order entity.InvoiceOrder
	err := s.readRequest(r, &order, func(values url.Values) {
		order = *entity.InvoiceOrderFromForm(values)
	})
	if err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] create invoice: %v", reqID, err))
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
		return
	}
	s.logger.Info(fmt.Sprintf("[%s] create invoice: order %s; amount %s", reqID, order.MerchantOrderId, order.PaymentAmount))

	result, err := s.payments.CreateInvoice(ctx, &order)
	if err != nil {
		s.writeError(w, reqID, "create invoice", err, true)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) paymentCallback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	reqID := GetRequestID(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.logger.Error(fmt.Sprintf("[%s] payment callback: get body", reqID), err)
		s.writeJSON(w, http.StatusInternalServerError, callbackResponse("error", err.Error()))
		return
	}

	notification, err := parseNotification(r.Header.Get("Content-Type"), body)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] payment callback: %v", reqID, err))
		s.writeJSON(w, http.StatusBadRequest, callbackResponse("error", "Invalid request body"))
		return
	}

	outcome := s.payments.Notify(ctx, notification)
	if !outcome.Accepted {
		message := "Parameter tidak lengkap"
		if outcome.Reason == entity.ReasonInvalidSignature {
			message = "Invalid signature"
		}
		s.logger.Warn(fmt.Sprintf("[%s] payment callback rejected: %s", reqID, outcome.Reason))
		s.writeJSON(w, http.StatusBadRequest, callbackResponse("error", message))
		return
	}

	// the gateway expects this acknowledgement for every authentic notification
	s.writeJSON(w, http.StatusOK, callbackResponse("success", "Callback received and processed"))
}

func (s *Server) checkTransaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	reqID := GetRequestID(ctx)

	var request entity.StatusRequest
	err := s.readRequest(r, &request, func(values url.Values) {
		request = *entity.StatusRequestFromForm(values)
	})
	if err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] check transaction: %v", reqID, err))
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
		return
	}

	data, err := s.payments.CheckTransaction(ctx, request.MerchantOrderId)
	if err != nil {
		s.writeError(w, reqID, "check transaction", err, false)
		return
	}

	s.writeJSON(w, http.StatusOK, entity.StatusResult{Success: true, Data: data})
}

// panicHandler answers a request whose handler panicked. The callback route
// keeps its own response shape.
func (s *Server) panicHandler(w http.ResponseWriter, r *http.Request, rcv interface{}) {
	reqID := GetRequestID(r.Context())
	if reqID == "" {
		reqID = w.Header().Get(requestIDHeader)
	}
	s.logger.Error(fmt.Sprintf("[%s] %s %s", reqID, r.Method, r.URL.Path), fmt.Errorf("panic: %v", rcv))
	s.metrics.RecordRequest(r.URL.Path, http.StatusInternalServerError, 0)

	if r.URL.Path == paymentCallback {
		s.writeJSON(w, http.StatusInternalServerError, callbackResponse("error", "internal server error"))
		return
	}
	s.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal server error"})
}

// writeError maps service errors to responses. With relayStatus set, a
// gateway error response is passed on with the gateway's own status code.
func (s *Server) writeError(w http.ResponseWriter, reqID, operation string, err error, relayStatus bool) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		s.logger.Warn(fmt.Sprintf("[%s] %s: %v", reqID, operation, err))
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": validation.Error()})
		return
	}

	s.logger.Error(fmt.Sprintf("[%s] %s", reqID, operation), err)

	var upstream *UpstreamError
	if relayStatus && errors.As(err, &upstream) && upstream.StatusCode > 0 {
		s.writeJSON(w, upstream.StatusCode, map[string]interface{}{"error": rawJSON(upstream.Body)})
		return
	}
	s.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
}

// readRequest decodes a JSON body into v, or hands a form-encoded body to fromForm.
func (s *Server) readRequest(r *http.Request, v interface{}, fromForm func(values url.Values)) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if isFormEncoded(r.Header.Get("Content-Type")) {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return fmt.Errorf("parse form body: %w", err)
		}
		fromForm(values)
		return nil
	}
	if err = json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", err)
	}
}

// parseNotification accepts the gateway's form-encoded callback as well as JSON.
func parseNotification(contentType string, body []byte) (*entity.Notification, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return &entity.Notification{}, nil
	}
	if isFormEncoded(contentType) {
		params, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse query: %w", err)
		}
		return entity.NotificationFromForm(params), nil
	}

	var notification entity.Notification
	if err := json.Unmarshal(body, &notification); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return &notification, nil
}

func isFormEncoded(contentType string) bool {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	return mediaType == "application/x-www-form-urlencoded"
}

func callbackResponse(status, message string) map[string]string {
	return map[string]string{
		"status":  status,
		"message": message,
	}
}
