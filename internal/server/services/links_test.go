package services

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/logging"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/links"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkService(t *testing.T, rm repomanager.RepositoryManager) *LinkService {
	t.Helper()
	s, err := NewLinkService(rm, testConfig(), testClientKeys, logging.Nop{})
	require.NoError(t, err)
	return s
}

func TestNewLinkService_RejectsBadSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.LookupSecret = "abcd"

	_, err := NewLinkService(repomanager.NewMemoryRepositoryManager(), cfg, testClientKeys, logging.Nop{})
	require.ErrorIs(t, err, cryptox.ErrInvalidSecret)
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"example.com":             "http://example.com",
		"http://example.com":      "http://example.com",
		"https://example.com/a?b": "https://example.com/a?b",
		"magnet:?xt=urn:btih:abc": "magnet:?xt=urn:btih:abc",
		"ftp://example.com":       "http://ftp://example.com",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeURL(in), in)
	}
}

func TestLinkService_ShortenAndResolve(t *testing.T) {
	ctx := context.Background()
	s := newLinkService(t, repomanager.NewMemoryRepositoryManager())

	id, err := s.Shorten(ctx, "example.com/path")
	require.NoError(t, err)
	assert.Len(t, id, cryptox.DefaultIDLength)

	res, err := s.Resolve(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.Equal(t, "http://example.com/path", res.URL)

	_, err = s.Resolve(ctx, id+"x")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Resolve(ctx, "")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLinkService_ShortenStoresNoPlaintext(t *testing.T) {
	ctx := context.Background()
	rm := repomanager.NewMemoryRepositoryManager()
	s := newLinkService(t, rm)

	id, err := s.Shorten(ctx, "https://secret.example/")
	require.NoError(t, err)

	link, err := rm.Links(models.SchemeServer).Get(ctx, s.keys.LookupHash(id))
	require.NoError(t, err)
	assert.Len(t, link.Material.IV, cryptox.IVSize)
	assert.NotContains(t, string(link.Material.Ciphertext), "secret.example")
	assert.NotContains(t, link.LookupHash, id)
}

func TestLinkService_ShortenMissingURL(t *testing.T) {
	s := newLinkService(t, repomanager.NewMemoryRepositoryManager())

	_, err := s.Shorten(context.Background(), "  ")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestLinkService_ShortenExhausted(t *testing.T) {
	s := newLinkService(t, repomanager.NewMemoryRepositoryManager())
	s.allocator.generate = func(string, int) (string, error) { return "SameIdSame", nil }

	_, err := s.Shorten(context.Background(), "a.example")
	require.NoError(t, err)

	_, err = s.Shorten(context.Background(), "b.example")
	require.ErrorIs(t, err, common.ErrorExhausted)
}

// racingRepo never sees the hash as taken but loses every insert.
type racingRepo struct {
	links.Repository
}

func (racingRepo) Exists(context.Context, string) (bool, error) { return false, nil }
func (racingRepo) Create(context.Context, *models.Link) error {
	return common.ErrorAlreadyExists
}

type racingManager struct {
	*repomanager.MemoryRepositoryManager
}

func (racingManager) Links(models.Scheme) links.Repository { return racingRepo{} }

func (m racingManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos repomanager.Repositories) error) error {
	return fn(ctx, m)
}

func TestLinkService_ShortenLostRaceIsConflict(t *testing.T) {
	s := newLinkService(t, racingManager{repomanager.NewMemoryRepositoryManager()})

	_, err := s.Shorten(context.Background(), "a.example")
	require.ErrorIs(t, err, common.ErrorConflict)
}

func clientLink(t *testing.T, id, url string) ClientLink {
	t.Helper()
	hash, err := testClientKeys.LookupHash(id)
	require.NoError(t, err)
	salt := testClientKeys.NewSalt()
	key, err := testClientKeys.EncryptionKey(id, salt)
	require.NoError(t, err)
	iv, ct, err := cryptox.Encrypt(key, url)
	require.NoError(t, err)

	return ClientLink{
		LookupHash: hash,
		Salt:       hex.EncodeToString(salt),
		IV:         hex.EncodeToString(iv),
		Ciphertext: hex.EncodeToString(ct),
	}
}

func TestLinkService_ClientLinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newLinkService(t, repomanager.NewMemoryRepositoryManager())

	in := clientLink(t, testID, "https://client.example")
	require.NoError(t, s.StoreClientLink(ctx, in))
	require.ErrorIs(t, s.StoreClientLink(ctx, in), common.ErrorAlreadyExists)

	m, err := s.GetClientLink(ctx, strings.ToUpper(in.LookupHash))
	require.NoError(t, err)
	assert.Equal(t, in.Salt, hex.EncodeToString(m.Salt))
	assert.Equal(t, in.IV, hex.EncodeToString(m.IV))
	assert.Equal(t, in.Ciphertext, hex.EncodeToString(m.Ciphertext))

	key, err := testClientKeys.EncryptionKey(testID, m.Salt)
	require.NoError(t, err)
	url, err := cryptox.Decrypt(key, m.IV, m.Ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "https://client.example", url)

	_, err = s.GetClientLink(ctx, strings.Repeat("0", 64))
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.GetClientLink(ctx, "")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestLinkService_StoreClientLinkValidation(t *testing.T) {
	valid := clientLink(t, testID, "https://client.example")

	tests := []struct {
		name   string
		mutate func(c *ClientLink)
	}{
		{"hash not hex", func(c *ClientLink) { c.LookupHash = "zz" + c.LookupHash[2:] }},
		{"hash too short", func(c *ClientLink) { c.LookupHash = c.LookupHash[:62] }},
		{"salt wrong size", func(c *ClientLink) { c.Salt = c.Salt[:30] }},
		{"iv not hex", func(c *ClientLink) { c.IV = "nothex" }},
		{"iv wrong size", func(c *ClientLink) { c.IV = c.IV + "00" }},
		{"empty ciphertext", func(c *ClientLink) { c.Ciphertext = "" }},
		{"ciphertext not block aligned", func(c *ClientLink) { c.Ciphertext = c.Ciphertext + "00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLinkService(t, repomanager.NewMemoryRepositoryManager())
			in := valid
			tt.mutate(&in)
			require.ErrorIs(t, s.StoreClientLink(context.Background(), in), common.ErrorValidation)
		})
	}
}

func TestLinkService_Takedown(t *testing.T) {
	ctx := context.Background()
	rm := repomanager.NewMemoryRepositoryManager()
	s := newLinkService(t, rm)

	serverID, err := s.Shorten(ctx, "https://bad.example")
	require.NoError(t, err)

	in := clientLink(t, testID, "https://also-bad.example")
	require.NoError(t, s.StoreClientLink(ctx, in))

	t.Run("wrong token", func(t *testing.T) {
		_, err := s.Takedown(ctx, serverID, "guess")
		require.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := s.Takedown(ctx, "", "let-me-delete")
		require.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Takedown(ctx, "nothing", "let-me-delete")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("server link", func(t *testing.T) {
		scheme, err := s.Takedown(ctx, serverID, "let-me-delete")
		require.NoError(t, err)
		assert.Equal(t, models.SchemeServer, scheme)

		res, err := s.Resolve(ctx, serverID)
		require.NoError(t, err)
		assert.True(t, res.Removed)
		assert.Empty(t, res.URL)
	})

	t.Run("client link", func(t *testing.T) {
		scheme, err := s.Takedown(ctx, testID, "let-me-delete")
		require.NoError(t, err)
		assert.Equal(t, models.SchemeClient, scheme)

		m, err := s.GetClientLink(ctx, in.LookupHash)
		require.NoError(t, err)
		assert.NotEqual(t, in.Salt, hex.EncodeToString(m.Salt))

		key, err := testClientKeys.EncryptionKey(testID, m.Salt)
		require.NoError(t, err)
		plain, err := cryptox.Decrypt(key, m.IV, m.Ciphertext)
		require.NoError(t, err)
		assert.Equal(t, common.RemovedMarker, plain)
	})
}

func TestLinkService_TakedownDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.DeletionToken = ""
	s, err := NewLinkService(repomanager.NewMemoryRepositoryManager(), cfg, testClientKeys, logging.Nop{})
	require.NoError(t, err)

	_, err = s.Takedown(context.Background(), "any", "")
	require.ErrorIs(t, err, common.ErrorDeletionDisabled)
}

func TestLinkService_ResolveCorruptRecord(t *testing.T) {
	ctx := context.Background()
	rm := repomanager.NewMemoryRepositoryManager()
	s := newLinkService(t, rm)

	id, err := s.Shorten(ctx, "https://example.com")
	require.NoError(t, err)

	hash := s.keys.LookupHash(id)
	require.NoError(t, rm.Links(models.SchemeServer).Replace(ctx, &models.Link{
		LookupHash: hash,
		Material:   models.Material{IV: make([]byte, 16), Ciphertext: make([]byte, 15)},
	}))

	_, err = s.Resolve(ctx, id)
	require.True(t, errors.Is(err, cryptox.ErrDecryptionFailed))
}
