package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	occurredAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)
	rowID := "0c9e8b52-3df1-4f76-9f04-1c2a0e1f0a11"

	token := EncodeToken(occurredAt, rowID)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, occurredAt.Equal(decodedAt), "Occurrence time should match after decode")
	assert.Equal(t, rowID, decodedID, "Row id should match after decode")

	// Row ids containing the separator survive a round trip because the
	// decoder splits on the first pipe only.
	pipeID := "id|with|pipes"
	pipeToken := EncodeToken(occurredAt, pipeID)
	_, decodedPipeID, err := DecodeToken(pipeToken)
	assert.NoError(t, err)
	assert.Equal(t, pipeID, decodedPipeID, "Row id with pipes should survive the round trip")
}

func TestDecodeTokenError(t *testing.T) {
	// Invalid base64
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	// Missing separator
	_, _, err = DecodeToken("MjAyMy0wNS0xNVQwMDowMDowMFo=")
	assert.Error(t, err, "Should return an error for a token without a separator")
	assert.Contains(t, err.Error(), "split")

	// Unparseable time: base64 of "notadate|row-1"
	_, _, err = DecodeToken("bm90YWRhdGV8cm93LTE=")
	assert.Error(t, err, "Should return an error for an invalid time")
	assert.Contains(t, err.Error(), "time parse")
}
