package main

import (
	"errors"
	"kumpul/src/db"
	"kumpul/src/models"
	"kumpul/src/realtime"
	"kumpul/src/types"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	engineiotypes "github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

func verifySocketToken(token string) (*models.User, error) {
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, err
	}
	gdb := db.GetDb()
	var user models.User
	gdb.Model(&models.User{}).Where(&models.User{ID: uint(uid)}).Find(&user)
	if uint(uid) != user.ID || user.ID < 1 || !user.Active {
		return nil, errors.New("account is not active")
	}
	return &user, nil
}

// tokenFromHandshake resolves the bearer credential in priority order: the
// handshake auth field, then the Authorization header, then a token cookie.
func tokenFromHandshake(auth any, headers map[string][]string) string {
	if fields, ok := auth.(map[string]any); ok {
		if token, ok := fields["token"].(string); ok && token != "" {
			return token
		}
	}
	header := http.Header(headers)
	if bearer := header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
		return strings.TrimPrefix(bearer, "Bearer ")
	}
	req := http.Request{Header: header}
	if cookie, err := req.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

func socketToken(client *socket.Socket) string {
	hs := client.Handshake()
	return tokenFromHandshake(hs.Auth, hs.Headers)
}

func connectedPayload(user *models.User, socketId string) types.JSONB {
	return types.JSONB{
		"sid":    socketId,
		"userId": user.ID,
	}
}

func setupSocketServer(r *gin.Engine) *socket.Server {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	c.SetPingInterval(time.Second)
	c.SetPingTimeout(200 * time.Millisecond)
	c.SetMaxHttpBufferSize(1_000_000)
	c.SetConnectTimeout(time.Second)
	c.SetCors(&engineiotypes.Cors{
		Origin:      "*",
		Credentials: true,
	})

	wss := socket.NewServer(nil, nil)
	hub := realtime.GetHub()
	hub.SetEmitter(&realtime.SocketEmitter{Server: wss})

	wss.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		socketId := string(client.Id())

		token := socketToken(client)
		if token == "" {
			client.Emit("auth_error", "missing token")
			client.Disconnect(true)
			return
		}
		user, err := verifySocketToken(token)
		if err != nil {
			log.Printf("[WS] rejected connection [%s]: %s\n", socketId, err.Error())
			client.Emit("auth_error", "unauthorized")
			client.Disconnect(true)
			return
		}
		log.Printf("[WS] user [%d] connected on [%s]\n", user.ID, socketId)
		hub.Register(user.ID, socketId)
		client.Join(socket.Room(realtime.UserRoom(user.ID)))
		client.Emit("connected", connectedPayload(user, socketId))

		client.On("subscribe:payment", func(args ...any) {
			if len(args) == 0 {
				return
			}
			idParam, ok := args[0].(string)
			if !ok {
				return
			}
			txnId, err := uuid.Parse(idParam)
			if err != nil {
				client.Emit("subscribe_error", "invalid transaction id")
				return
			}
			gdb := db.GetDb()
			var count int64
			if err := gdb.
				Model(&models.Transaction{}).
				Where(&models.Transaction{ID: txnId, UserID: user.ID}).
				Count(&count).
				Error; err != nil || count == 0 {
				client.Emit("subscribe_error", "transaction not found")
				return
			}
			client.Join(socket.Room(realtime.TransactionRoom(txnId.String())))
		})
		client.On("unsubscribe:payment", func(args ...any) {
			if len(args) == 0 {
				return
			}
			idParam, ok := args[0].(string)
			if !ok {
				return
			}
			client.Leave(socket.Room(realtime.TransactionRoom(idParam)))
		})
		client.On("disconnect", func(...any) {
			if userId, ok := hub.Unregister(socketId); ok {
				log.Printf("[WS] user [%d] disconnected from [%s]\n", userId, socketId)
			}
		})
	})

	r.GET("/socket.io/*any", gin.WrapH(wss.ServeHandler(c)))
	r.POST("/socket.io/*any", gin.WrapH(wss.ServeHandler(c)))
	return wss
}
