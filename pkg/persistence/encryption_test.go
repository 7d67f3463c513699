package persistence_test

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/promptflow/pkg/domain"
	"github.com/aretw0/promptflow/pkg/persistence"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func TestEncryptedCodec_Roundtrip(t *testing.T) {
	codec, err := persistence.NewEncryptedCodec(nil, persistence.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	p := domain.NewProfile()
	require.NoError(t, p.Set("Name", domain.TextValue("my-secret-name")))

	data, err := codec.Marshal(p)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "my-secret-name"), "plaintext leaked into stored bytes")
	assert.Contains(t, string(data), "__encrypted__")

	var loaded domain.Profile
	require.NoError(t, codec.Unmarshal(data, &loaded))
	name, _ := loaded.Get("Name")
	assert.Equal(t, "my-secret-name", name.Text)
}

func TestEncryptedCodec_KeyRotation(t *testing.T) {
	oldKey, newKey := generateKey(t), generateKey(t)

	oldCodec, err := persistence.NewEncryptedCodec(nil, persistence.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	data, err := oldCodec.Marshal(&domain.FlowState{LastQuestionAsked: "Q3"})
	require.NoError(t, err)

	rotated, err := persistence.NewEncryptedCodec(nil, persistence.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)

	var state domain.FlowState
	require.NoError(t, rotated.Unmarshal(data, &state))
	assert.Equal(t, domain.Question("Q3"), state.LastQuestionAsked)

	withoutFallback, err := persistence.NewEncryptedCodec(nil, persistence.EncryptionConfig{ActiveKey: newKey})
	require.NoError(t, err)
	assert.Error(t, withoutFallback.Unmarshal(data, &state))
}

func TestEncryptedCodec_RejectsPlainData(t *testing.T) {
	codec, err := persistence.NewEncryptedCodec(nil, persistence.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	plain, err := persistence.JSON.Marshal(domain.NewFlowState())
	require.NoError(t, err)

	var state domain.FlowState
	assert.ErrorIs(t, codec.Unmarshal(plain, &state), persistence.ErrNotEncrypted)
}

func TestNewEncryptedCodec_KeySize(t *testing.T) {
	_, err := persistence.NewEncryptedCodec(nil, persistence.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	_, err = persistence.NewEncryptedCodec(nil, persistence.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	parsed, err := persistence.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = persistence.ParseKey("not base64!")
	assert.Error(t, err)

	_, err = persistence.ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
}
