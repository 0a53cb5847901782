package sigs

import (
	"bytes"
	"testing"

	"github.com/iov-one/escrowd/weavetest/assert"
)

func TestEd25519Signing(t *testing.T) {
	private := GenPrivateKey()
	public := private.PublicKey()
	assert.Nil(t, public.Validate())

	msg := []byte("foobar")
	msg2 := []byte("dingbooms")

	sig := private.Sign(msg)
	sig2 := private.Sign(msg2)
	if bytes.Equal(sig, sig2) {
		t.Fatal("different messages produce the same signature")
	}

	if !public.Verify(msg, sig) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if !public.Verify(msg2, sig2) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if public.Verify(msg, sig2) {
		t.Fatal("verified message signature of the wrong message")
	}

	other := GenPrivateKey().PublicKey()
	if other.Verify(msg, sig) {
		t.Fatal("verified message signature with the wrong key")
	}
	if PublicKey("short").Verify(msg, sig) {
		t.Fatal("verified message signature with a malformed key")
	}
}

func TestKeyFromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivateKeyFromSeed(seed).PublicKey()
	b := PrivateKeyFromSeed(seed).PublicKey()
	assert.Equal(t, a, b)
	assert.Equal(t, a.Address(), b.Address())

	ext, typ, data, err := a.Condition().Parse()
	assert.Nil(t, err)
	assert.Equal(t, ExtensionName, ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, []byte(a), data)
}
