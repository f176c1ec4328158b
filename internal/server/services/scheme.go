package services

import (
	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/links"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/repomanager"
)

// linkScheme is one derivation path from an identifier to a stored record.
type linkScheme interface {
	Scheme() models.Scheme
	LookupHash(id string) (string, error)
	// Seal encrypts plaintext so that id alone can decrypt it again.
	Seal(id, plaintext string) (models.Material, error)
	Repository(repos repomanager.Repositories) links.Repository
}

// serverScheme derives both keys with Argon2id and the server secrets.
type serverScheme struct {
	keys *cryptox.ServerKeys
}

func (s serverScheme) Scheme() models.Scheme { return models.SchemeServer }

func (s serverScheme) LookupHash(id string) (string, error) {
	return s.keys.LookupHash(id), nil
}

func (s serverScheme) Seal(id, plaintext string) (models.Material, error) {
	key := s.keys.EncryptionKey(id)
	defer common.WipeByteArray(key)

	iv, ct, err := cryptox.Encrypt(key, plaintext)
	if err != nil {
		return models.Material{}, err
	}
	return models.Material{IV: iv, Ciphertext: ct}, nil
}

func (s serverScheme) Repository(repos repomanager.Repositories) links.Repository {
	return repos.Links(models.SchemeServer)
}

// clientScheme derives keys with scrypt the way remote clients do: a
// public lookup salt and a fresh random salt per sealing.
type clientScheme struct {
	keys cryptox.ClientKeys
}

func (s clientScheme) Scheme() models.Scheme { return models.SchemeClient }

func (s clientScheme) LookupHash(id string) (string, error) {
	return s.keys.LookupHash(id)
}

func (s clientScheme) Seal(id, plaintext string) (models.Material, error) {
	salt := s.keys.NewSalt()

	key, err := s.keys.EncryptionKey(id, salt)
	if err != nil {
		return models.Material{}, err
	}
	defer common.WipeByteArray(key)

	iv, ct, err := cryptox.Encrypt(key, plaintext)
	if err != nil {
		return models.Material{}, err
	}
	return models.Material{Salt: salt, IV: iv, Ciphertext: ct}, nil
}

func (s clientScheme) Repository(repos repomanager.Repositories) links.Repository {
	return repos.Links(models.SchemeClient)
}
