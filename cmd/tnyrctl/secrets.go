package main

import (
	"fmt"

	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
)

type secretsCmd struct {
	Env bool `help:"Print as shell export statements."`
}

func (cmd *secretsCmd) Run(g *Globals) error {
	lookup, err := common.MakeRandHexString(cryptox.SecretSize)
	if err != nil {
		return err
	}
	encryption, err := common.MakeRandHexString(cryptox.SecretSize)
	if err != nil {
		return err
	}

	out := g.stdout()
	if cmd.Env {
		_, err = fmt.Fprintf(out, "export TNYR_SALT1_HEX=%s\nexport TNYR_SALT2_HEX=%s\n", lookup, encryption)
		return err
	}
	_, err = fmt.Fprintf(out, "lookup secret:     %s\nencryption secret: %s\n", lookup, encryption)
	return err
}
