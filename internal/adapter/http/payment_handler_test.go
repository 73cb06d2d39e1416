package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grigobio237-eng/Youniqle-sub001/configs"
	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/gateway"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/logging"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

type cbOrderStore struct {
	order *domain.Order
}

func (s *cbOrderStore) Create(context.Context, *domain.Order) error { return nil }

func (s *cbOrderStore) FindByOrderNumber(_ context.Context, num string) (*domain.Order, error) {
	if s.order == nil || s.order.OrderNumber != num {
		return nil, usecase.ErrOrderNotFound
	}
	cp := *s.order
	return &cp, nil
}

func (s *cbOrderStore) ConfirmPaymentIf(_ context.Context, num string) (bool, error) {
	if s.order.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	s.order.PaymentStatus = domain.PaymentCompleted
	s.order.Status = domain.OrderConfirmed
	return true, nil
}

func (s *cbOrderStore) FailPaymentIf(_ context.Context, num string) (bool, error) {
	if s.order.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	s.order.PaymentStatus = domain.PaymentFailed
	return true, nil
}

func (s *cbOrderStore) AdvanceStatusIf(context.Context, string, domain.OrderStatus, domain.OrderStatus) (bool, error) {
	return false, nil
}

type cbCartStore struct{}

func (cbCartStore) FindByBuyer(context.Context, string) (*domain.Cart, error) { return nil, nil }
func (cbCartStore) Save(context.Context, *domain.Cart) error                  { return nil }

type cbGateway struct {
	code string
}

func (g cbGateway) Approve(context.Context, gateway.ApprovalRequest) (gateway.ApprovalReply, error) {
	return gateway.ApprovalReply{
		Kind:   gateway.ReplyStructured,
		Fields: map[string]string{"ResultCode": g.code, "ResultMsg": "msg"},
	}, nil
}

func callbackRouter(t *testing.T, store *cbOrderStore, gwCode string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg configs.Config
	cfg.Gateway.CallbackTimeout = 5 * time.Second
	cfg.Gateway.RedirectDelay = 2 * time.Second
	cfg.Gateway.SuccessPath = "/payment/success"
	cfg.Gateway.FailPath = "/payment/fail"
	cfg.Gateway.CancelPath = "/payment/cancel"

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	settle := usecase.NewSettlePayment(store, cbCartStore{}, cbGateway{code: gwCode}, nil, nil, log)
	h := NewPaymentHandler(settle, cfg)

	r := gin.New()
	r.Use(func(c *gin.Context) { logging.With(c, log) })
	r.POST("/payments/gateway/callback", h.GatewayCallback)
	return r
}

func pendingCallbackOrder(t *testing.T) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder("oid", "ORD-3001", "buyer-1",
		[]domain.LineItem{{ProductID: "P", PartnerID: "partner-a", Name: "x", UnitPrice: 50000, Quantity: 1}},
		map[string]int64{"partner-a": 1000}, time.Now())
	require.NoError(t, err)
	return o
}

func postCallback(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/gateway/callback",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func baseForm() url.Values {
	return url.Values{
		"AuthResultCode": {"0000"},
		"AuthToken":      {"tok"},
		"PayMethod":      {"CARD"},
		"MID":            {"mid001"},
		"Moid":           {"ORD-3001"},
		"Amt":            {"50000"},
		"TxTid":          {"tid-9"},
		"NextAppURL":     {"https://gw.example/approve"},
	}
}

func TestCallbackSuccessPage(t *testing.T) {
	store := &cbOrderStore{order: pendingCallbackOrder(t)}
	r := callbackRouter(t, store, "3001")

	w := postCallback(r, baseForm())

	// always 200 with an HTML page, never an HTTP redirect status
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "/payment/success")
	assert.Contains(t, body, "orderId=ORD-3001")
	assert.Contains(t, body, "amount=50000")
	assert.Contains(t, body, "tid=tid-9")
	assert.Equal(t, domain.PaymentCompleted, store.order.PaymentStatus)
}

func TestCallbackCancelledPage(t *testing.T) {
	store := &cbOrderStore{order: pendingCallbackOrder(t)}
	r := callbackRouter(t, store, "3001")

	form := baseForm()
	form.Set("AuthResultCode", "9999")
	form.Set("AuthResultMsg", "cancelled by user")
	w := postCallback(r, form)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/payment/cancel")
	assert.Equal(t, domain.PaymentPending, store.order.PaymentStatus)
}

func TestCallbackDeclinedPage(t *testing.T) {
	store := &cbOrderStore{order: pendingCallbackOrder(t)}
	r := callbackRouter(t, store, "3099")

	w := postCallback(r, baseForm())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/payment/fail")
	assert.Equal(t, domain.PaymentFailed, store.order.PaymentStatus)
}

func TestCallbackUnknownOrderIsGeneric(t *testing.T) {
	store := &cbOrderStore{order: pendingCallbackOrder(t)}
	r := callbackRouter(t, store, "3001")

	form := baseForm()
	form.Set("Moid", "ORD-PROBE")
	w := postCallback(r, form)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "/payment/fail")
	// the page must not reveal whether the probed order number exists
	assert.NotContains(t, body, "not found")
	assert.NotContains(t, body, "ORD-PROBE\" exists")
	assert.Contains(t, body, "payment+could+not+be+processed")
}
