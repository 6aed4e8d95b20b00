// Command boltcli is a smoke-test client: dial a server, run one
// statement, print the records as JSON. Grounded on kryptco-kr's ctl
// command, which drives a single request/response cycle against a local
// agent and prints the decoded result.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bolt-go/bolt/client"
	ps "github.com/bolt-go/bolt/packstream"
	"github.com/bolt-go/bolt/internal/tlsdial"
)

func runCommand(c *cli.Context) error {
	address := c.String("address")
	domain := c.String("domain")
	statement := c.Args().First()
	if statement == "" {
		return cli.Exit("a statement is required", 1)
	}

	conn, err := tlsdial.Dial(address, domain)
	if err != nil {
		return cli.Exit(fmt.Sprintf("dial: %v", err), 1)
	}

	auth := ps.NewMap()
	if user := c.String("user"); user != "" {
		auth.Set("scheme", ps.String("basic"))
		auth.Set("principal", ps.String(user))
		auth.Set("credentials", ps.String(c.String("password")))
	} else {
		auth.Set("scheme", ps.String("none"))
	}

	cl, err := client.Dial(conn, client.Config{
		Address:           address,
		Domain:            domain,
		PreferredVersions: [4]uint32{1<<8 | 4, 3, 2, 1},
		Metadata:          auth,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("connect: %v", err), 1)
	}
	defer cl.Close()

	resp, err := cl.Run(statement, ps.NewMap(), nil)
	if err != nil {
		return cli.Exit(fmt.Sprintf("run: %v", err), 1)
	}
	if fail, ok := resp.(interface{ Code() string }); ok {
		_ = fail
		return cli.Exit(fmt.Sprintf("server rejected statement: %v", fail), 1)
	}

	records, tail, err := cl.Pull(-1)
	if err != nil {
		return cli.Exit(fmt.Sprintf("pull: %v", err), 1)
	}
	_ = tail

	rows := make([]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, fmt.Sprintf("%v", r.RowFields))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"version": cl.Version().String(),
		"rows":    rows,
	})
}

func main() {
	app := &cli.App{
		Name:  "boltcli",
		Usage: "issue one statement against a bolt-go server and print the result",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Value: "localhost:7687"},
			&cli.StringFlag{Name: "domain", Usage: "enable TLS with this SNI hostname"},
			&cli.StringFlag{Name: "user"},
			&cli.StringFlag{Name: "password"},
		},
		Action: runCommand,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
