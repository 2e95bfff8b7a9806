package main

import (
	"kumpul/src/types"
	"kumpul/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/payments", func(ctx *gin.Context) {
			var body types.CreatePaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res, err := utils.CreatePayment(ctx, &body)
			if err != nil {
				log.Printf("Error creating payment: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, res)
		}).
		POST("/payments/preview", func(ctx *gin.Context) {
			var body types.PreviewFeeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			country := ctx.GetString("country")
			breakdown, err := utils.PreviewFee(body.Amount, body.PaymentMethodID, country)
			if err != nil {
				log.Printf("Error previewing fee: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, breakdown)
		}).
		GET("/payment_methods", func(ctx *gin.Context) {
			country := ctx.GetString("country")
			methods, err := utils.ListPaymentMethods(country)
			if err != nil {
				log.Printf("Error listing payment methods: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"payment_methods": methods})
		})
	return g
}
