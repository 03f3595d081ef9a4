// Command ccnx-portal-read listens on a name prefix and answers Interests with a greeting.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/keychain"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/version"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/yamlflag"
	"github.com/parc-ccnx-archive/Libccnx-portal/portal"
	"github.com/urfave/cli/v2"
	"go4.org/must"
)

const exitUsage = -1

var (
	contentName = ccnx.ParseName("lci:/Hello/World")
	byeName     = ccnx.ParseName("lci:/Hello/Goodbye%21")
)

var (
	identityFile string
	password     string
	forwarder    string
	loopback     bool
	properties   map[string]any
	freshness    time.Duration
	cacheSize    int
)

var app = &cli.App{
	Name:      "ccnx-portal-read",
	Version:   version.V.String(),
	Usage:     "Answer Interests for lci:/Hello/World until lci:/Hello/Goodbye%21 arrives.",
	ArgsUsage: "[prefix]",
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
		&cli.DurationFlag{
			Name:        "freshness",
			Usage:       "Reuse a generated greeting for this `duration`.",
			Value:       time.Second,
			Destination: &freshness,
		},
		&cli.IntFlag{
			Name:        "cache",
			Usage:       "Response cache `capacity`.",
			Value:       64,
			Destination: &cacheSize,
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() > 1 || identityFile == "" || password == "" {
			cli.ShowAppHelp(c)
			return cli.Exit("", exitUsage)
		}
		prefix := ccnx.ParseName("lci:/Hello")
		if c.NArg() == 1 {
			prefix = ccnx.ParseName(c.Args().First())
		}

		id, e := keychain.OpenIdentityFile(identityFile, password)
		if e != nil {
			return cli.Exit(fmt.Sprintf("Inaccessible keystore file '%s'.", identityFile), 1)
		}
		if e = serve(id, prefix); e != nil {
			return cli.Exit(e, 1)
		}
		return nil
	},
}

type cachedResponse struct {
	co      *ccnx.ContentObject
	created time.Time
}

type responder struct {
	cache *lru.Cache
}

func (r *responder) respond(name ccnx.Name) *ccnx.ContentObject {
	key := name.String()
	if entry, ok := r.cache.Get(key); ok {
		if cr := entry.(cachedResponse); time.Since(cr.created) < freshness {
			return cr.co
		}
	}

	now := time.Now()
	payload := fmt.Sprintf("Hello World. The time is %s\n", now.Format(time.ANSIC))
	co := ccnx.NewContentObject(name, []byte(payload))
	r.cache.Add(key, cachedResponse{co: co, created: now})
	return co
}

func serve(id keychain.Identity, prefix ccnx.Name) error {
	factory, e := portal.NewFactory(id)
	if e != nil {
		return e
	}
	defer factory.Release()
	factory.SetProperty(portal.PropLocalForwarder, forwarder)
	yamlflag.Strings(properties, factory.SetProperty)

	cache, e := lru.New(cacheSize)
	if e != nil {
		return e
	}
	r := responder{cache: cache}

	impl := portal.Message
	if loopback {
		impl = portal.TransportLoopBack
	}
	p, e := factory.CreatePortal(impl)
	if e != nil {
		return e
	}
	defer must.Close(p)

	if e = p.Listen(prefix, 365*24*time.Hour, l3.Never); e != nil {
		return e
	}
	log.Printf("listening on %s", prefix)

	for {
		msg, e := p.Receive(l3.Never)
		if e != nil {
			return e
		}
		if !msg.IsInterest() {
			log.Print(msg)
			continue
		}

		switch name := msg.Interest.Name; {
		case name.Equal(contentName):
			if e := p.Send(r.respond(name).ToMessage(), l3.Never); e != nil {
				log.Printf("ccnx_write failed: %v", e)
			}
		case name.Equal(byeName):
			log.Print("goodbye")
			return nil
		}
	}
}

func main() {
	if e := app.Run(os.Args); e != nil {
		fmt.Fprintln(os.Stderr, e)
		os.Exit(exitUsage)
	}
}
