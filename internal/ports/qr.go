package ports

// QRRenderer превращает сырой QR-payload в data URI картинки
type QRRenderer interface {
	DataURI(payload string) (string, error)
}
