package domain

type EventType string

const (
	EventQR            EventType = "qr"
	EventAuthenticated EventType = "authenticated"
	EventReady         EventType = "ready"
	EventAuthFailure   EventType = "auth_failure"
	EventDisconnected  EventType = "disconnected"
	EventMessage       EventType = "message"
)

// Event: событие жизненного цикла транспорта или входящее сообщение.
// Payload: QR-код для EventQR, причина для EventAuthFailure/EventDisconnected.
type Event struct {
	Type    EventType
	Payload string
	Message *InboundMessage
}
