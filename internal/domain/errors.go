package domain

import "errors"

var (
	// ErrSessionNotReady: сессия не в состоянии Ready, можно повторить позже
	ErrSessionNotReady = errors.New("session is not ready")
	// ErrTemplateNotFound: неизвестный id шаблона, ошибка вызывающего
	ErrTemplateNotFound = errors.New("template not found")
	// ErrRender: не удалось превратить QR в картинку
	ErrRender = errors.New("failed to generate QR code")
	// ErrDeliveryFailed: транспорт отклонил отправку, причина завёрнута рядом
	ErrDeliveryFailed = errors.New("delivery failed")

	ErrAuthFailure      = errors.New("authentication failed")
	ErrTransportFailure = errors.New("transport failure")
)
