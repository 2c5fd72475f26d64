package qrcode

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// QRService, kripto ödeme adresleri için QR kod üretir
type QRService struct {
	size int
}

func NewQRService() *QRService {
	return &QRService{size: DefaultSize}
}

// PayURI builds a wallet payment URI, e.g. "bitcoin:<addr>?amount=0.1".
// Unknown coins fall back to the bare address.
func PayURI(coin, address, amount string) string {
	scheme := map[string]string{
		"btc":  "bitcoin",
		"ltc":  "litecoin",
		"eth":  "ethereum",
		"doge": "dogecoin",
		"bch":  "bitcoincash",
	}[strings.ToLower(coin)]
	if scheme == "" {
		return address
	}
	if amount == "" {
		return scheme + ":" + address
	}
	return fmt.Sprintf("%s:%s?amount=%s", scheme, address, amount)
}

// GenerateQRCode, verilen içerik için PNG formatında QR kod üretir
func (s *QRService) GenerateQRCode(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}

// DataURI returns the QR code as a base64 PNG data URI ready for an <img>.
func (s *QRService) DataURI(content string) (string, error) {
	png, err := s.GenerateQRCode(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
