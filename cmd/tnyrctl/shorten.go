package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/netx"
	"github.com/dmitrijs2005/tnyr/internal/server/services"
)

type shortenCmd struct {
	URL    string `arg:"" help:"The destination URL."`
	Length int    `help:"Identifier length." default:"10"`
}

type shortenRequest struct {
	LookupHash   string `json:"LOOKUP_HASH"`
	Salt         string `json:"ENCRYTION_SALT"`
	IV           string `json:"IV"`
	EncryptedURL string `json:"ENCRYPTED_URL"`
}

// maxShortenAttempts bounds retries after the server reports a lookup hash
// collision.
const maxShortenAttempts = 3

func (cmd *shortenCmd) Run(g *Globals) error {
	target := services.NormalizeURL(cmd.URL)

	var err error
	for range maxShortenAttempts {
		var id string
		id, err = cmd.store(g, target)
		var se *netx.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusConflict {
			continue
		}
		if err != nil {
			return fmt.Errorf("shorten: %w", err)
		}
		_, err = fmt.Fprintln(g.stdout(), id)
		return err
	}
	return fmt.Errorf("shorten: %w", err)
}

func (cmd *shortenCmd) store(g *Globals, target string) (string, error) {
	id, err := cryptox.GenerateID(cryptox.DefaultAlphabet, cmd.Length)
	if err != nil {
		return "", err
	}

	hash, err := clientKeys.LookupHash(id)
	if err != nil {
		return "", err
	}

	salt := clientKeys.NewSalt()
	key, err := clientKeys.EncryptionKey(id, salt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	iv, ct, err := cryptox.Encrypt(key, target)
	if err != nil {
		return "", err
	}

	req := shortenRequest{
		LookupHash:   hash,
		Salt:         hex.EncodeToString(salt),
		IV:           hex.EncodeToString(iv),
		EncryptedURL: hex.EncodeToString(ct),
	}
	if err := netx.DoJSON(context.Background(), g.client(), http.MethodPost, g.endpoint("/shorten"), req, nil); err != nil {
		return "", err
	}
	return id, nil
}
