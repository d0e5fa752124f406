package paystack_test

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"go.uber.org/zap"

	"github.com/amainooti/Zakat-foundation/internal/config"
	"github.com/amainooti/Zakat-foundation/internal/paystack"
)

func newTestClient(t *testing.T, secret string) *paystack.Client {
	t.Helper()

	client, err := paystack.NewClient(config.PaystackConfig{
		SecretKey: secret,
		BaseURL:   "https://api.paystack.co",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAccepts(t *testing.T) {
	client := newTestClient(t, "sk_test_secret")
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref_1","amount":80000}}`)

	if !client.VerifySignature(payload, sign("sk_test_secret", payload)) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifySignatureRejectsTamperedByte(t *testing.T) {
	client := newTestClient(t, "sk_test_secret")
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref_1","amount":80000}}`)
	signature := sign("sk_test_secret", payload)

	tampered := make([]byte, len(payload))
	copy(tampered, payload)
	tampered[len(tampered)-3] = '1'

	if client.VerifySignature(tampered, signature) {
		t.Fatal("expected tampered payload to fail verification")
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	client := newTestClient(t, "sk_test_secret")
	payload := []byte(`{"event":"charge.success"}`)

	if client.VerifySignature(payload, sign("sk_other_secret", payload)) {
		t.Fatal("expected signature from a different secret to fail")
	}
	if client.VerifySignature(payload, "") {
		t.Fatal("expected empty signature to fail")
	}
}

func TestNewClientRequiresSecret(t *testing.T) {
	_, err := paystack.NewClient(config.PaystackConfig{}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing secret key")
	}
}
