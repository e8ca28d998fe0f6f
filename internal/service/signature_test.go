package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify_ValidSignature(t *testing.T) {
	v := NewSignatureVerifier("secret")
	sig := testSignature("secret", "gw_order_1", "pay_1")

	assert.True(t, v.Verify("gw_order_1", "pay_1", sig))
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewSignatureVerifier("secret")
	sig := testSignature("other-secret", "gw_order_1", "pay_1")

	assert.False(t, v.Verify("gw_order_1", "pay_1", sig))
}

func TestVerify_TamperedPaymentID(t *testing.T) {
	v := NewSignatureVerifier("secret")
	sig := testSignature("secret", "gw_order_1", "pay_1")

	assert.False(t, v.Verify("gw_order_1", "pay_2", sig))
}

func TestVerify_FailsClosed(t *testing.T) {
	v := NewSignatureVerifier("secret")
	sig := testSignature("secret", "gw_order_1", "pay_1")

	assert.False(t, v.Verify("", "pay_1", sig))
	assert.False(t, v.Verify("gw_order_1", "", sig))
	assert.False(t, v.Verify("gw_order_1", "pay_1", ""))

	// A missing server secret also verifies false, never open.
	empty := NewSignatureVerifier("")
	assert.False(t, empty.Verify("gw_order_1", "pay_1", sig))
}
