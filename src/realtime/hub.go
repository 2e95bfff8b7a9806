package realtime

import (
	"fmt"
	"kumpul/src/lib"
	"kumpul/src/types"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zishang520/socket.io/v2/socket"
)

// Emitter sends an event to every connection joined to a room.
type Emitter interface {
	Emit(room string, event string, data ...any)
}

type SocketEmitter struct {
	Server *socket.Server
}

func (s *SocketEmitter) Emit(room string, event string, data ...any) {
	s.Server.To(socket.Room(room)).Emit(event, data...)
}

func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func TransactionRoom(txnID string) string {
	return fmt.Sprintf("transaction:%s", txnID)
}

// Hub tracks which socket belongs to which user and owns the countdown jobs
// for pending transactions. Connect, disconnect and subscribe churn are
// independent short critical sections, so membership lives in sync.Maps keyed
// by socket id rather than behind one global lock.
type Hub struct {
	emitter Emitter

	conns      sync.Map // socket id -> user id
	users      sync.Map // user id -> *sync.Map of socket ids
	countdowns sync.Map // transaction id -> gocron job id
}

var hub *Hub

func GetHub() *Hub {
	if hub != nil {
		return hub
	}
	hub = &Hub{}
	return hub
}

// NewHub Replace hub instance with custom emitter implementation
func NewHub(emitter Emitter) *Hub {
	hub = &Hub{emitter: emitter}
	return hub
}

func (h *Hub) SetEmitter(emitter Emitter) {
	h.emitter = emitter
}

func (h *Hub) Register(userID uint, socketID string) {
	h.conns.Store(socketID, userID)
	set, _ := h.users.LoadOrStore(userID, &sync.Map{})
	set.(*sync.Map).Store(socketID, struct{}{})
}

// Unregister removes the socket from the registry. When it was the user's
// last connection the user entry is dropped entirely.
func (h *Hub) Unregister(socketID string) (uint, bool) {
	v, ok := h.conns.LoadAndDelete(socketID)
	if !ok {
		return 0, false
	}
	userID := v.(uint)
	if set, ok := h.users.Load(userID); ok {
		s := set.(*sync.Map)
		s.Delete(socketID)
		empty := true
		s.Range(func(_, _ any) bool {
			empty = false
			return false
		})
		if empty {
			h.users.Delete(userID)
		}
	}
	return userID, true
}

func (h *Hub) UserOf(socketID string) (uint, bool) {
	v, ok := h.conns.Load(socketID)
	if !ok {
		return 0, false
	}
	return v.(uint), true
}

func (h *Hub) ConnectionCount(userID uint) int {
	set, ok := h.users.Load(userID)
	if !ok {
		return 0
	}
	count := 0
	set.(*sync.Map).Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (h *Hub) emit(room string, event string, data ...any) {
	if h.emitter == nil {
		return
	}
	h.emitter.Emit(room, event, data...)
}

// EmitStatusUpdate goes to the transaction room only.
func (h *Hub) EmitStatusUpdate(txnID string, status string) {
	h.emit(TransactionRoom(txnID), "payment:status-update", types.JSONB{
		"transactionId": txnID,
		"status":        status,
	})
}

// EmitSuccess goes to both the transaction room and the user room: the
// client may have navigated away from the transaction view.
func (h *Hub) EmitSuccess(txnID string, userID uint, payload types.JSONB) {
	data := types.JSONB{"transactionId": txnID}
	for k, v := range payload {
		data[k] = v
	}
	h.emit(TransactionRoom(txnID), "payment:success", data)
	h.emit(UserRoom(userID), "payment:success", data)
}

func (h *Hub) EmitFailed(txnID string, userID uint, payload types.JSONB) {
	data := types.JSONB{"transactionId": txnID}
	for k, v := range payload {
		data[k] = v
	}
	h.emit(TransactionRoom(txnID), "payment:failed", data)
	h.emit(UserRoom(userID), "payment:failed", data)
}

func (h *Hub) EmitExpired(txnID string, userID uint) {
	data := types.JSONB{"transactionId": txnID}
	h.emit(TransactionRoom(txnID), "payment:expired", data)
	h.emit(UserRoom(userID), "payment:expired", data)
}

func (h *Hub) EmitCountdown(txnID string, remainingSeconds int64) {
	h.emit(TransactionRoom(txnID), "payment:countdown", types.JSONB{
		"transactionId": txnID,
		"remaining":     remainingSeconds,
	})
}

// StartCountdown emits the remaining payment window to the transaction room
// every interval until expiry or StopCountdown.
func (h *Hub) StartCountdown(txnID string, expiresAt time.Time, interval time.Duration) {
	j, err := lib.CreateIntervalJob(func() {
		remaining := time.Until(expiresAt)
		if remaining <= 0 {
			h.StopCountdown(txnID)
			return
		}
		h.EmitCountdown(txnID, int64(remaining.Seconds()))
	}, interval)
	if err != nil {
		log.Printf("[Countdown] error scheduling job for [%s]: %s\n", txnID, err.Error())
		return
	}
	h.countdowns.Store(txnID, (*j).ID())
}

func (h *Hub) StopCountdown(txnID string) {
	v, ok := h.countdowns.LoadAndDelete(txnID)
	if !ok {
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	if err := sched.RemoveJob(v.(uuid.UUID)); err != nil {
		log.Printf("[Countdown] error removing job for [%s]: %s\n", txnID, err.Error())
	}
}
