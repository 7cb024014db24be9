// Command rfcgrid-echo-client dials the echo example server and calls
// one remote listener named on the command line, printing its result.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/atsika/rfcgrid"
	"github.com/atsika/rfcgrid/examples/echo/provider"
	"github.com/atsika/rfcgrid/transport"
)

func main() {
	app := cli.NewApp()
	app.Name = "rfcgrid-echo-client"
	app.Usage = "call a listener on the rfcgrid echo example server"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "addr", Value: "127.0.0.1:9000", Usage: "address printed by rfcgrid-echo-server"},
		cli.StringFlag{Name: "call", Value: "echo", Usage: "dotted listener path to invoke"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *cli.Context) error {
	addr := ctx.String("addr")
	if addr == "" {
		return fmt.Errorf("-addr is required")
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	connector, err := transport.Dial(conn, nil)
	if err != nil {
		return fmt.Errorf("rfc handshake: %w", err)
	}
	defer connector.Close()

	d := rfcgrid.GetDriver[provider.Echo](connector.Communicator())

	args := make([]rfcgrid.Value, ctx.NArg())
	for i, a := range ctx.Args() {
		args[i] = a
	}

	path := strings.Split(ctx.String("call"), ".")
	caller := d.Path(path[0])
	for _, seg := range path[1:] {
		caller = caller.Path(seg)
	}

	v, err := caller.Call(context.Background(), args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", ctx.String("call"), err)
	}
	fmt.Println(v)
	return nil
}
