package key

import (
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyPairFromPem(t *testing.T) {
	generated, err := GenerateKeyPair()
	assert.Nil(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(generated.PrivateKey),
	})

	keyPair, err := NewKeyPairFromRSAPrivateKeyPem(string(pemBytes))
	assert.Nil(t, err)
	assert.Equal(t, KEY_ID, keyPair.Kid)
	assert.True(t, generated.PublicKey.Equal(keyPair.PublicKey))

	_, err = NewKeyPairFromRSAPrivateKeyPem("not a key")
	assert.NotNil(t, err)
}

func TestJWKS(t *testing.T) {
	keyPair, err := GenerateKeyPair()
	assert.Nil(t, err)

	jwk, err := keyPair.JWK()
	assert.Nil(t, err)

	body, err := json.Marshal(ExportJWKAsJWKS(jwk))
	assert.Nil(t, err)
	assert.Contains(t, string(body), `"kid":"zsadmin-key-id"`)
	assert.Contains(t, string(body), `"kty":"RSA"`)
}
