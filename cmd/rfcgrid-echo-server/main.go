// Command rfcgrid-echo-server is a configurable host for the echo
// example provider, built with urfave/cli so it can grow additional
// subcommands (e.g. a future "status" or "drain") without reworking
// its flag surface, the way kryptco-kr's CLI tools are structured.
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli"

	"github.com/atsika/rfcgrid/examples/echo/provider"
	"github.com/atsika/rfcgrid/transport"
)

// fileConfig is the optional -config TOML file shape: listener
// address and idle timeout, the knobs an operator most often wants to
// change without touching flags.
type fileConfig struct {
	Addr        string `toml:"addr"`
	IdleTimeout string `toml:"idle_timeout"`
}

func main() {
	app := cli.NewApp()
	app.Name = "rfcgrid-echo-server"
	app.Usage = "host the rfcgrid echo provider over a TCP listener"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "addr", Value: "127.0.0.1:9000", Usage: "address to listen on"},
		cli.DurationFlag{Name: "idle-timeout", Value: transport.DefaultIdleTimeout, Usage: "acceptor idle timeout"},
		cli.StringFlag{Name: "config", Usage: "optional TOML file overriding the flags above"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *cli.Context) error {
	addr := ctx.String("addr")
	idleTimeout := ctx.Duration("idle-timeout")

	if path := ctx.String("config"); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
		if fc.Addr != "" {
			addr = fc.Addr
		}
		if fc.IdleTimeout != "" {
			d, err := time.ParseDuration(fc.IdleTimeout)
			if err != nil {
				return fmt.Errorf("config idle_timeout: %w", err)
			}
			idleTimeout = d
		}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	fmt.Printf("listening on %s\n", listener.Addr())

	registry := transport.NewRegistry(idleTimeout)
	defer registry.Close()

	echo := provider.Echo{}

	log.Println("waiting for connections...")
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("accept: %v", err)
			continue
		}
		go handle(registry, conn, echo)
	}
}

func handle(registry *transport.Registry, conn net.Conn, echo provider.Echo) {
	acc := registry.NewAcceptor(conn, nil)
	if err := acc.Accept(echo); err != nil {
		log.Printf("rfc accept: %v", err)
		return
	}
	log.Printf("client %s connected", conn.RemoteAddr())
}
