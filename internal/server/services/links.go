// Package services holds the server's link operations: shortening under
// the server scheme, storing and fetching client-encrypted links,
// resolving identifiers and takedown.
package services

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/logging"
	"github.com/dmitrijs2005/tnyr/internal/server/config"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/repomanager"
)

// ClientLink is a client-encrypted link as received over the wire, every
// field hex-encoded.
type ClientLink struct {
	LookupHash string
	Salt       string
	IV         string
	Ciphertext string
}

// Resolution is the outcome of resolving a server-scheme identifier.
// Removed is set when the link was taken down; URL is then empty.
type Resolution struct {
	URL     string
	Removed bool
}

type LinkService struct {
	repomanager   repomanager.RepositoryManager
	keys          *cryptox.ServerKeys
	allocator     *Allocator
	reconciler    *Reconciler
	deletionToken []byte
	logger        logging.Logger
}

// NewLinkService wires the service from cfg. client is normally
// cryptox.NewClientKeys().
func NewLinkService(m repomanager.RepositoryManager, cfg *config.Config, client cryptox.ClientKeys, logger logging.Logger) (*LinkService, error) {
	keys, err := cfg.Keys()
	if err != nil {
		return nil, err
	}

	alloc, err := NewAllocator(cfg.IDAlphabet, cfg.IDLength, cfg.MaxAttempts, keys)
	if err != nil {
		return nil, err
	}

	return &LinkService{
		repomanager:   m,
		keys:          keys,
		allocator:     alloc,
		reconciler:    NewReconciler(keys, client),
		deletionToken: []byte(cfg.DeletionToken),
		logger:        logger.With("module", "links"),
	}, nil
}

// NormalizeURL prefixes http:// unless rawURL already carries an http,
// https or magnet scheme.
func NormalizeURL(rawURL string) string {
	for _, p := range []string{"https://", "http://", "magnet:"} {
		if strings.HasPrefix(rawURL, p) {
			return rawURL
		}
	}
	return "http://" + rawURL
}

// Shorten stores rawURL under a freshly allocated identifier and returns
// the identifier. Allocation and insert share one unit of work; losing an
// insert race yields common.ErrorConflict.
func (s *LinkService) Shorten(ctx context.Context, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("%w: missing url", common.ErrorValidation)
	}
	target := NormalizeURL(rawURL)
	scheme := serverScheme{keys: s.keys}

	var id string
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		repo := scheme.Repository(repos)

		var hash string
		var err error
		id, hash, err = s.allocator.Allocate(ctx, repo.Exists)
		if err != nil {
			return err
		}

		m, err := scheme.Seal(id, target)
		if err != nil {
			return err
		}

		err = repo.Create(ctx, &models.Link{LookupHash: hash, Material: m})
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrorConflict
		}
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "link created", "scheme", models.SchemeServer.String())
	return id, nil
}

// StoreClientLink validates and stores a client-encrypted link verbatim.
func (s *LinkService) StoreClientLink(ctx context.Context, in ClientLink) error {
	hash, err := decodeHexField("lookup hash", in.LookupHash, func(n int) bool { return n == cryptox.KeySize })
	if err != nil {
		return err
	}
	salt, err := decodeHexField("salt", in.Salt, func(n int) bool { return n == cryptox.ClientSaltSize })
	if err != nil {
		return err
	}
	iv, err := decodeHexField("iv", in.IV, func(n int) bool { return n == cryptox.IVSize })
	if err != nil {
		return err
	}
	ct, err := decodeHexField("encrypted url", in.Ciphertext, func(n int) bool { return n > 0 && n%cryptox.IVSize == 0 })
	if err != nil {
		return err
	}

	link := &models.Link{
		LookupHash: hex.EncodeToString(hash),
		Material:   models.Material{Salt: salt, IV: iv, Ciphertext: ct},
	}
	if err := s.repomanager.Links(models.SchemeClient).Create(ctx, link); err != nil {
		return err
	}

	s.logger.Info(ctx, "link created", "scheme", models.SchemeClient.String())
	return nil
}

// GetClientLink returns the stored material for a client lookup hash.
func (s *LinkService) GetClientLink(ctx context.Context, lookupHash string) (*models.Material, error) {
	if lookupHash == "" {
		return nil, fmt.Errorf("%w: missing lookup hash", common.ErrorValidation)
	}

	link, err := s.repomanager.Links(models.SchemeClient).Get(ctx, strings.ToLower(lookupHash))
	if err != nil {
		return nil, err
	}
	return &link.Material, nil
}

// Resolve decrypts the destination of a server-scheme identifier.
func (s *LinkService) Resolve(ctx context.Context, id string) (*Resolution, error) {
	if id == "" {
		return nil, common.ErrorNotFound
	}

	link, err := s.repomanager.Links(models.SchemeServer).Get(ctx, s.keys.LookupHash(id))
	if err != nil {
		return nil, err
	}

	key := s.keys.EncryptionKey(id)
	defer common.WipeByteArray(key)

	url, err := cryptox.Decrypt(key, link.Material.IV, link.Material.Ciphertext)
	if err != nil {
		s.logger.Warn(ctx, "stored link failed to decrypt")
		return nil, err
	}

	if url == common.RemovedMarker {
		return &Resolution{Removed: true}, nil
	}
	return &Resolution{URL: url}, nil
}

// Takedown replaces the destination of id, whichever scheme stored it, with
// the removal marker.
func (s *LinkService) Takedown(ctx context.Context, id, token string) (models.Scheme, error) {
	if len(s.deletionToken) == 0 {
		return 0, common.ErrorDeletionDisabled
	}
	if id == "" || token == "" {
		return 0, fmt.Errorf("%w: missing id or deletion_token", common.ErrorValidation)
	}
	if subtle.ConstantTimeCompare([]byte(token), s.deletionToken) != 1 {
		return 0, common.ErrorUnauthorized
	}

	var scheme models.Scheme
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		var err error
		scheme, err = s.reconciler.LocateAndReplace(ctx, repos, id, common.RemovedMarker)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "link taken down", "scheme", scheme.String())
	return scheme, nil
}

func decodeHexField(name, value string, sizeOK func(int) bool) ([]byte, error) {
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex in %s", common.ErrorValidation, name)
	}
	if !sizeOK(len(b)) {
		return nil, fmt.Errorf("%w: invalid %s length", common.ErrorValidation, name)
	}
	return b, nil
}
