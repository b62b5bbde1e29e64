// Package qr превращает строку авторизации в PNG-картинку QR-кода.
package qr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/larriantoniy/wa_gateway/internal/ports"
)

const DefaultSize = 300

var ErrEmptyPayload = errors.New("empty qr payload")

var _ ports.QRRenderer = (*Renderer)(nil)

// Renderer реализует ports.QRRenderer
type Renderer struct {
	size  int
	level qr.ErrorCorrectionLevel
}

func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{size: size, level: qr.M}
}

// PNG кодирует payload в PNG size×size
func (r *Renderer) PNG(payload string) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	code, err := qr.Encode(payload, r.level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	scaled, err := barcode.Scale(code, r.size, r.size)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) DataURI(payload string) (string, error) {
	data, err := r.PNG(payload)
	if err != nil {
		return "", err
	}
	return BuildDataURI(bytes.NewReader(data))
}

// BuildDataURI определяет MIME по содержимому и собирает data URI (RFC 2397)
func BuildDataURI(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read data: %w", err)
	}

	mimeType := http.DetectContentType(data[:min(512, len(data))])
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		mimeType = "image/" + format
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}
