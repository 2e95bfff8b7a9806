package realtime

import (
	"kumpul/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordedEmit struct {
	Room  string
	Event string
	Data  []any
}

type fakeEmitter struct {
	emits []recordedEmit
}

func (f *fakeEmitter) Emit(room string, event string, data ...any) {
	f.emits = append(f.emits, recordedEmit{Room: room, Event: event, Data: data})
}

func (f *fakeEmitter) rooms(event string) []string {
	var rooms []string
	for _, e := range f.emits {
		if e.Event == event {
			rooms = append(rooms, e.Room)
		}
	}
	return rooms
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "user:42", UserRoom(42))
	assert.Equal(t, "transaction:b6f7", TransactionRoom("b6f7"))
}

func TestRegisterAndUnregister(t *testing.T) {
	h := NewHub(&fakeEmitter{})

	h.Register(42, "sock-1")
	h.Register(42, "sock-2")
	h.Register(7, "sock-3")

	userId, ok := h.UserOf("sock-1")
	assert.True(t, ok)
	assert.Equal(t, uint(42), userId)
	assert.Equal(t, 2, h.ConnectionCount(42))
	assert.Equal(t, 1, h.ConnectionCount(7))

	userId, ok = h.Unregister("sock-1")
	assert.True(t, ok)
	assert.Equal(t, uint(42), userId)
	assert.Equal(t, 1, h.ConnectionCount(42))

	_, ok = h.UserOf("sock-1")
	assert.False(t, ok)
}

func TestUnregisterLastConnectionDropsUser(t *testing.T) {
	h := NewHub(&fakeEmitter{})
	h.Register(42, "sock-1")

	_, ok := h.Unregister("sock-1")
	assert.True(t, ok)
	assert.Equal(t, 0, h.ConnectionCount(42))

	_, ok = h.Unregister("sock-1")
	assert.False(t, ok)
}

func TestEmitStatusUpdateTargetsTransactionRoom(t *testing.T) {
	emitter := &fakeEmitter{}
	h := NewHub(emitter)

	h.EmitStatusUpdate("txn-1", "paid")

	assert.Len(t, emitter.emits, 1)
	assert.Equal(t, "transaction:txn-1", emitter.emits[0].Room)
	assert.Equal(t, "payment:status-update", emitter.emits[0].Event)
	data := emitter.emits[0].Data[0].(types.JSONB)
	assert.Equal(t, "txn-1", data["transactionId"])
	assert.Equal(t, "paid", data["status"])
}

func TestEmitSuccessTargetsBothRooms(t *testing.T) {
	emitter := &fakeEmitter{}
	h := NewHub(emitter)

	h.EmitSuccess("txn-1", 42, types.JSONB{"amount": "151050"})

	rooms := emitter.rooms("payment:success")
	assert.ElementsMatch(t, []string{"transaction:txn-1", "user:42"}, rooms)
	data := emitter.emits[0].Data[0].(types.JSONB)
	assert.Equal(t, "txn-1", data["transactionId"])
	assert.Equal(t, "151050", data["amount"])
}

func TestEmitFailedAndExpiredTargetBothRooms(t *testing.T) {
	emitter := &fakeEmitter{}
	h := NewHub(emitter)

	h.EmitFailed("txn-1", 42, types.JSONB{"failure_code": "INSUFFICIENT_BALANCE"})
	h.EmitExpired("txn-2", 42)

	assert.ElementsMatch(t, []string{"transaction:txn-1", "user:42"}, emitter.rooms("payment:failed"))
	assert.ElementsMatch(t, []string{"transaction:txn-2", "user:42"}, emitter.rooms("payment:expired"))
}

func TestEmitCountdown(t *testing.T) {
	emitter := &fakeEmitter{}
	h := NewHub(emitter)

	h.EmitCountdown("txn-1", 840)

	assert.Len(t, emitter.emits, 1)
	assert.Equal(t, "transaction:txn-1", emitter.emits[0].Room)
	data := emitter.emits[0].Data[0].(types.JSONB)
	assert.Equal(t, int64(840), data["remaining"])
}

func TestEmitWithoutEmitterIsNoop(t *testing.T) {
	h := NewHub(nil)
	assert.NotPanics(t, func() {
		h.EmitStatusUpdate("txn-1", "paid")
		h.EmitExpired("txn-1", 42)
	})
}
