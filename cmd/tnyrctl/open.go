package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/netx"
)

type openCmd struct {
	ID string `arg:"" help:"The link identifier."`
}

type encryptedURLResponse struct {
	Salt         string `json:"ENCRYTION_SALT"`
	IV           string `json:"IV"`
	EncryptedURL string `json:"ENCRYPTED_URL"`
}

// Run tries the client scheme first and decrypts locally; links created by
// the server are resolved through its redirect.
func (cmd *openCmd) Run(g *Globals) error {
	ctx := context.Background()

	dest, err := cmd.openClient(ctx, g)
	var se *netx.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		dest, err = netx.Location(ctx, g.client(), g.endpoint("/"+url.PathEscape(cmd.ID)))
	}
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	if dest == common.RemovedMarker {
		return errors.New("open: link was removed for abuse")
	}
	_, err = fmt.Fprintln(g.stdout(), dest)
	return err
}

func (cmd *openCmd) openClient(ctx context.Context, g *Globals) (string, error) {
	hash, err := clientKeys.LookupHash(cmd.ID)
	if err != nil {
		return "", err
	}

	var resp encryptedURLResponse
	u := g.endpoint("/get-encrypted-url?lookup_hash=" + url.QueryEscape(hash))
	if err := netx.DoJSON(ctx, g.client(), http.MethodGet, u, nil, &resp); err != nil {
		return "", err
	}

	salt, err := hex.DecodeString(resp.Salt)
	if err != nil {
		return "", err
	}
	iv, err := hex.DecodeString(resp.IV)
	if err != nil {
		return "", err
	}
	ct, err := hex.DecodeString(resp.EncryptedURL)
	if err != nil {
		return "", err
	}

	key, err := clientKeys.EncryptionKey(cmd.ID, salt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	return cryptox.Decrypt(key, iv, ct)
}
