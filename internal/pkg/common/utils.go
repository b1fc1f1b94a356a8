package common

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// HashBytes SHA-256 十六進位摘要
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON 以 JSON 序列化結果計算摘要；struct 欄位順序固定，可作為快取鍵
func HashJSON(v interface{}) (string, error) {
	data, err := ToJSON(v)
	if err != nil {
		return "", err
	}
	return HashBytes([]byte(data)), nil
}
