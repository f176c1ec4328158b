package main

import "fmt"

type lookupHashCmd struct {
	ID string `arg:"" help:"The link identifier."`
}

func (cmd *lookupHashCmd) Run(g *Globals) error {
	hash, err := clientKeys.LookupHash(cmd.ID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.stdout(), hash)
	return err
}
