package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/grigobio237-eng/Youniqle-sub001/configs"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/adapter/http/middleware"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/logging"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

// resultPage is the fixed 200-with-HTML response the gateway protocol
// requires instead of an HTTP redirect status: a minimal self-contained page
// with a short client-side redirect timer.
var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.DelaySec}};url={{.URL}}">
<title>Payment result</title>
</head>
<body>
<p>{{.Message}}</p>
<p>You will be redirected shortly.</p>
<script>setTimeout(function () { window.location.replace({{.URL}}); }, {{.DelayMS}});</script>
</body>
</html>
`))

type PaymentHandler struct {
	settle *usecase.SettlePayment
	cfg    configs.Config
}

func NewPaymentHandler(settle *usecase.SettlePayment, cfg configs.Config) *PaymentHandler {
	return &PaymentHandler{settle: settle, cfg: cfg}
}

// GatewayCallback handles the browser-borne first-phase callback. Every
// branch, including every error, ends in a 200 HTML page: the payer's bank
// may already hold captured funds, so nothing here is allowed to surface an
// unhandled error.
func (h *PaymentHandler) GatewayCallback(c *gin.Context) {
	in := usecase.CallbackInput{
		AuthResultCode: c.PostForm("AuthResultCode"),
		AuthResultMsg:  c.PostForm("AuthResultMsg"),
		AuthToken:      c.PostForm("AuthToken"),
		PayMethod:      c.PostForm("PayMethod"),
		MerchantID:     c.PostForm("MID"),
		OrderNumber:    c.PostForm("Moid"),
		Amount:         c.PostForm("Amt"),
		TID:            c.PostForm("TxTid"),
		ApprovalURL:    c.PostForm("NextAppURL"),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.Gateway.CallbackTimeout)
	defer cancel()

	res, err := h.settle.Execute(ctx, in)
	middleware.CallbackOutcomes.WithLabelValues(outcomeLabel(err)).Inc()

	log := logging.From(c).With("order_number", in.OrderNumber, "tid", in.TID)
	switch {
	case err == nil:
		log.Info("payment settled", "replayed", res.Replayed, "amount", res.Amount)
		h.render(c, h.successURL(res), "Payment completed.")
	case errors.Is(err, usecase.ErrAuthenticationDeclined):
		log.Info("payment cancelled before approval")
		h.render(c, h.cancelURL(res), "Payment was cancelled.")
	case errors.Is(err, usecase.ErrOrderNotFound):
		// Generic failure: never confirm or deny that the order exists.
		log.Warn("callback rejected", "reason", "order_not_found")
		h.render(c, h.failURL(usecase.SettleResult{Message: "payment could not be processed"}), "Payment failed.")
	default:
		log.Warn("payment failed", "reason", err.Error())
		h.render(c, h.failURL(res), "Payment failed.")
	}
}

func (h *PaymentHandler) render(c *gin.Context, target, message string) {
	delay := h.cfg.Gateway.RedirectDelay
	data := map[string]any{
		"URL":      target,
		"Message":  message,
		"DelayMS":  delay.Milliseconds(),
		"DelaySec": int(delay.Seconds()) + 1,
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	_ = resultPage.Execute(c.Writer, data)
}

func (h *PaymentHandler) successURL(res usecase.SettleResult) string {
	q := url.Values{}
	q.Set("orderId", res.OrderNumber)
	q.Set("amount", strconv.FormatInt(res.Amount, 10))
	q.Set("tid", res.TID)
	return h.cfg.Gateway.SuccessPath + "?" + q.Encode()
}

func (h *PaymentHandler) failURL(res usecase.SettleResult) string {
	q := url.Values{}
	q.Set("orderId", res.OrderNumber)
	q.Set("message", res.Message)
	return h.cfg.Gateway.FailPath + "?" + q.Encode()
}

func (h *PaymentHandler) cancelURL(res usecase.SettleResult) string {
	q := url.Values{}
	q.Set("orderId", res.OrderNumber)
	q.Set("message", res.Message)
	return h.cfg.Gateway.CancelPath + "?" + q.Encode()
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, usecase.ErrAuthenticationDeclined):
		return "cancelled"
	case errors.Is(err, usecase.ErrApprovalUnreachable):
		return "unreachable"
	case errors.Is(err, usecase.ErrOrderNotFound):
		return "not_found"
	default:
		return "declined"
	}
}

