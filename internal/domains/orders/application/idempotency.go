package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/ports"
)

type normalizedPlaceOrderInput struct {
	UserID int64 `json:"userId"`
}

// FingerprintPlaceOrder hashes the placement request, excluding the idempotency key.
func FingerprintPlaceOrder(input ports.PlaceOrderInput) (string, error) {
	payload, err := json.Marshal(normalizedPlaceOrderInput{UserID: input.UserID})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
