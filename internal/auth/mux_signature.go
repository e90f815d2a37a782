package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSignatureTolerance bounds how old a webhook timestamp may be.
// Replayed deliveries older than this are rejected even with a valid
// signature.
const DefaultSignatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks a Mux-Signature header of the form
// "t=<unix>,v1=<hex hmac>" where the HMAC-SHA256 is computed over
// "<timestamp>.<raw body>".
func VerifyWebhookSignature(header string, body []byte, secret string, tolerance time.Duration) error {
	timestamp, signature, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	age := time.Since(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return fmt.Errorf("webhook timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}

func parseSignatureHeader(header string) (int64, string, error) {
	var timestamp int64
	var signature string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("invalid signature timestamp: %w", err)
			}
			timestamp = ts
		case "v1":
			signature = kv[1]
		}
	}

	if timestamp == 0 || signature == "" {
		return 0, "", fmt.Errorf("malformed signature header")
	}
	return timestamp, signature, nil
}
