package main

import (
	"encoding/json"
	"io"
	"kumpul/src/lib"
	"kumpul/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

func paymentWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/payments", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		gw := lib.GetGatewayClient()
		if !gw.VerifyWebhookSignature(payload, ctx.GetHeader("X-Callback-Signature")) {
			log.Printf("[GatewayEvent] rejected callback with bad signature for reference [%s]\n", gjson.GetBytes(payload, "data.reference_id").String())
			ctx.Status(http.StatusUnauthorized)
			return
		}
		var event lib.WebhookPayload
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Printf("[GatewayEvent] error parsing callback body: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[GatewayEvent] %s (reference=%s)\n", event.Event, event.Data.ReferenceID)
		// Unknown events and unknown references are acked so the gateway
		// stops retrying; only storage errors ask for a redelivery.
		if err := utils.ReconcileWebhook(&event); err != nil {
			log.Printf("[GatewayEvent] error reconciling [%s]: %s\n", event.Event, err.Error())
			ctx.Status(http.StatusInternalServerError)
			return
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
