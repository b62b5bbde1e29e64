package domain

import "time"

// SessionState: состояние подключения аккаунта к чат-сети
type SessionState string

const (
	StateInitializing  SessionState = "initializing"
	StateAwaitingScan  SessionState = "awaiting_scan"
	StateAuthenticated SessionState = "authenticated"
	StateReady         SessionState = "ready"
	StateFailed        SessionState = "failed"
	StateDisconnected  SessionState = "disconnected"
)

// Session: единственная сессия процесса, принадлежит SessionController
type Session struct {
	State SessionState
	// QR-payload, есть только в StateAwaitingScan
	PendingAuthArtifact string
	LastTransition      time.Time
}

// Status: снимок состояния для внешних вызывающих
type Status struct {
	Ready bool         `json:"ready"`
	HasQR bool         `json:"hasQR"`
	State SessionState `json:"state"`
	Since time.Time    `json:"since"`
}

func (s Session) Status() Status {
	return Status{
		Ready: s.State == StateReady,
		HasQR: s.State == StateAwaitingScan && s.PendingAuthArtifact != "",
		State: s.State,
		Since: s.LastTransition,
	}
}
