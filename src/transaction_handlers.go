package main

import (
	"fmt"
	"kumpul/src/db"
	"kumpul/src/models"
	"kumpul/src/types"
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeqown/go-qrcode"
)

func transactionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/transactions", func(ctx *gin.Context) {
			var filters types.TransactionQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			query := db.
				Model(&models.Transaction{}).
				Preload("PaymentMethod").
				Preload("Event").
				Preload("Actions").
				Where("transactions.user_id = ?", userId)
			if filters.Status != "" {
				query = query.Where("transactions.status = ?", filters.Status)
			}
			if filters.EventID > 0 {
				query = query.Where("transactions.event_id = ?", filters.EventID)
			}
			if filters.Search != "" {
				query = query.
					Joins("LEFT JOIN events ON events.id = transactions.event_id").
					Where("transactions.external_id ILIKE ? OR events.title ILIKE ?", "%"+filters.Search+"%", "%"+filters.Search+"%")
			}
			var total int64
			if err := query.Count(&total).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var txns []models.Transaction
			if err := query.
				Order("transactions.created_at desc").
				Offset((filters.Page - 1) * filters.Limit).
				Limit(filters.Limit).
				Find(&txns).
				Error; err != nil {
				log.Printf("Error listing transactions: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"transactions": txns,
				"total":        total,
				"page":         filters.Page,
				"limit":        filters.Limit,
			})
		}).
		GET("/transactions/:id", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			id, err := uuid.Parse(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var txn models.Transaction
			if err := db.
				Model(&models.Transaction{}).
				Preload("PaymentMethod").
				Preload("Event").
				Preload("Actions").
				Where(&models.Transaction{ID: id, UserID: userId}).
				First(&txn).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Could not find transaction"})
				return
			}
			ctx.JSON(http.StatusOK, txn)
		}).
		GET("/transactions/:id/qr", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			id, err := uuid.Parse(idParam)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var txn models.Transaction
			if err := db.
				Model(&models.Transaction{}).
				Preload("Actions").
				Where(&models.Transaction{ID: id, UserID: userId}).
				First(&txn).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Could not find transaction"})
				return
			}
			var qrString string
			for _, action := range txn.Actions {
				if action.Descriptor == types.ACTION_QR_STRING {
					qrString = action.Value
					break
				}
			}
			if qrString == "" {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Transaction has no QR code"})
				return
			}
			qrc, err := qrcode.New(qrString)
			if err != nil {
				log.Printf("Error generating QR code for transaction [%s]: %s\n", txn.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			tmp := os.Getenv("TEMP_DIR")
			filePath := path.Join(tmp, fmt.Sprintf("%s.jpeg", txn.ID))
			if err := qrc.Save(filePath); err != nil {
				log.Printf("Error saving QR code for transaction [%s]: %s\n", txn.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.FileAttachment(filePath, fmt.Sprintf("%s.jpeg", txn.ExternalID))
		})
	return g
}
