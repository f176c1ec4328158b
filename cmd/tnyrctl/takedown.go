package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/tnyr/internal/netx"
)

type takedownCmd struct {
	ID    string `arg:"" help:"The link identifier."`
	Token string `help:"Deletion token; prompted for when empty." env:"TNYR_DELETION_TOKEN"`
}

type takedownRequest struct {
	ID            string `json:"id"`
	DeletionToken string `json:"deletion_token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// readToken is replaced in tests.
var readToken = func() (string, error) { return askSecret("Deletion token: ") }

func (cmd *takedownCmd) Run(g *Globals) error {
	token := cmd.Token
	if token == "" {
		var err error
		if token, err = readToken(); err != nil {
			return err
		}
	}

	var resp messageResponse
	req := takedownRequest{ID: cmd.ID, DeletionToken: token}
	if err := netx.DoJSON(context.Background(), g.client(), http.MethodPost, g.endpoint("/delete-url"), req, &resp); err != nil {
		return fmt.Errorf("takedown: %w", err)
	}

	_, err := fmt.Fprintln(g.stdout(), resp.Message)
	return err
}
