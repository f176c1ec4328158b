// Command tnyrctl is the operator and client-side tool for tnyr: it
// generates server secrets, shortens links with client-side encryption,
// opens links locally and requests takedowns.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"golang.org/x/term"
)

// clientKeys is swapped for cheaper parameters in tests.
var clientKeys = cryptox.NewClientKeys()

type Globals struct {
	Server  string        `help:"Base URL of the tnyr server." default:"http://localhost:5000" env:"TNYR_SERVER"`
	Timeout time.Duration `help:"HTTP timeout." default:"30s"`

	out io.Writer
}

func (g *Globals) client() *http.Client {
	return &http.Client{Timeout: g.Timeout}
}

func (g *Globals) endpoint(path string) string {
	return strings.TrimRight(g.Server, "/") + path
}

func (g *Globals) stdout() io.Writer {
	if g.out != nil {
		return g.out
	}
	return os.Stdout
}

type cli struct {
	Globals `embed:""`

	Secrets    secretsCmd    `cmd:"" help:"Generate a fresh pair of server secrets."`
	LookupHash lookupHashCmd `cmd:"" help:"Print the client-scheme lookup hash of an identifier."`
	Shorten    shortenCmd    `cmd:"" help:"Encrypt a URL locally and store it on the server."`
	Open       openCmd       `cmd:"" help:"Resolve an identifier to its destination URL."`
	Takedown   takedownCmd   `cmd:"" help:"Replace a link with the removal notice."`
}

func main() {
	var cli cli

	ctx := kong.Parse(&cli,
		kong.Name("tnyrctl"),
		kong.Description("Client and operator tool for the tnyr link shortener."),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

func askSecret(prompt string) (string, error) {
	defer func() { _, _ = fmt.Fprintln(os.Stderr) }()

	_, _ = fmt.Fprint(os.Stderr, prompt)

	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
