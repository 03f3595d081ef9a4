// Command ccnx-client fetches one ContentObject by name and writes its payload to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/keychain"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/version"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/yamlflag"
	"github.com/parc-ccnx-archive/Libccnx-portal/portal"
	"github.com/urfave/cli/v2"
	"go4.org/must"
)

// exitUsage is the exit code of a command line usage error.
const exitUsage = -1

var (
	identityFile string
	password     string
	forwarder    string
	loopback     bool
	properties   map[string]any
)

var app = &cli.App{
	Name:      "ccnx-client",
	Version:   version.V.String(),
	Usage:     "Fetch a CCNx ContentObject and print its payload.",
	ArgsUsage: "<objectName>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "identity",
			Usage:       "Identity `file` containing a password protected private key.",
			Destination: &identityFile,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Password to unlock the identity file.",
			Destination: &password,
		},
		&cli.StringFlag{
			Name:        "forwarder",
			Usage:       "Forwarder `URI`.",
			Value:       portal.DefaultLocalForwarder,
			Destination: &forwarder,
		},
		&cli.GenericFlag{
			Name:  "properties",
			Usage: "Portal factory properties as YAML `document`, or @file.yaml.",
			Value: yamlflag.New(&properties),
		},
		&cli.BoolFlag{
			Name:        "loopback",
			Usage:       "Connect to the local forwarder named in BENT_PIPE_NAME instead of the Metis forwarder.",
			Destination: &loopback,
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 || identityFile == "" || password == "" {
			cli.ShowAppHelp(c)
			return cli.Exit("", exitUsage)
		}
		name := ccnx.ParseName(c.Args().First())

		id, e := keychain.OpenIdentityFile(identityFile, password)
		if e != nil {
			return cli.Exit(fmt.Sprintf("Inaccessible keystore file '%s'.", identityFile), 1)
		}
		if e = fetch(id, name); e != nil {
			return cli.Exit(e, 1)
		}
		return nil
	},
}

func fetch(id keychain.Identity, name ccnx.Name) error {
	factory, e := portal.NewFactory(id)
	if e != nil {
		return e
	}
	defer factory.Release()
	factory.SetProperty(portal.PropLocalForwarder, forwarder)
	yamlflag.Strings(properties, factory.SetProperty)

	impl := portal.Message
	if loopback {
		impl = portal.TransportLoopBack
	}
	p, e := factory.CreatePortal(impl)
	if e != nil {
		return e
	}
	defer must.Close(p)

	if e = p.Send(ccnx.NewInterest(name, nil).ToMessage(), l3.Never); e != nil {
		return e
	}
	for !p.IsError() {
		msg, e := p.Receive(l3.Never)
		if e != nil {
			return e
		}
		if msg.IsContentObject() {
			_, e = os.Stdout.Write(msg.ContentObject.Payload)
			return e
		}
	}
	return p.LastError()
}

func main() {
	if e := app.Run(os.Args); e != nil {
		fmt.Fprintln(os.Stderr, e)
		os.Exit(exitUsage)
	}
}
