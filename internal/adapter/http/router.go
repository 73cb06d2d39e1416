package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grigobio237-eng/Youniqle-sub001/internal/adapter/http/middleware"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/logging"
)

func NewRouter(ph *PaymentHandler, oh *OrderHandler, sh *SettlementHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	// The gateway posts the callback through the payer's browser: no bearer
	// token, the signed approval handshake is the authentication.
	r.POST("/payments/gateway/callback", ph.GatewayCallback)

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", authz.Require("orders.write"), oh.CreateOrder)
		v1.GET("/orders/:orderNumber", authz.Require("orders.read"), oh.GetOrder)
		v1.GET("/partners/:partnerId/settlement", authz.Require("settlement.read"), sh.PartnerSettlement)
	}

	return r
}
