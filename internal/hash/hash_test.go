package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastHasher() *Hasher {
	return &Hasher{Params: Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h := fastHasher()
	encoded, err := h.HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotContains(t, encoded, "hunter2")
	assert.True(t, h.CheckPassword(encoded, "hunter2"))
	assert.False(t, h.CheckPassword(encoded, "hunter3"))
}

func TestHashPassword_SaltIsRandom(t *testing.T) {
	t.Parallel()

	h := fastHasher()
	a, err := h.HashPassword("same")
	require.NoError(t, err)
	b, err := h.HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, b, len(a))
}

func TestCheckPassword_UsesParamsFromHash(t *testing.T) {
	t.Parallel()

	old := fastHasher()
	encoded, err := old.HashPassword("secret")
	require.NoError(t, err)

	current := &Hasher{Params: Params{Time: 2, Memory: 2048, Threads: 2, KeyLen: 32, SaltLen: 16}}
	assert.True(t, current.CheckPassword(encoded, "secret"))
}

func TestCheckPassword_Malformed(t *testing.T) {
	t.Parallel()

	h := fastHasher()
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "plaintext", encoded: "secret"},
		{name: "bcrypt", encoded: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"},
		{name: "bad version", encoded: "$argon2id$v=x$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{name: "bad params", encoded: "$argon2id$v=19$m=a,t=1,p=1$c2FsdA$a2V5"},
		{name: "zero threads", encoded: "$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$a2V5"},
		{name: "bad salt", encoded: "$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5"},
		{name: "empty key", encoded: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$"},
		{name: "huge memory", encoded: "$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdA$a2V5"},
		{name: "huge time", encoded: "$argon2id$v=19$m=1024,t=4294967295,p=1$c2FsdA$a2V5"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, h.CheckPassword(tt.encoded, "secret"))
		})
	}
}
