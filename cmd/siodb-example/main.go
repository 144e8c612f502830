package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/siodb/siodb-go/siodb"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("siodb-example", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "siodb-example — run one SQL statement against a Siodb server\n\nUsage:\n  siodb-example -uri <uri> -exec <sql>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	uri := fs.String("uri", "", "connection URI, e.g. siodb://root@localhost:50000?identity_file=~/.ssh/id_rsa (required)")
	exec := fs.String("exec", "", "SQL statement to run (required)")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("siodb-example %s\n", version)
		return
	}

	if *uri == "" || *exec == "" {
		fs.Usage()
		os.Exit(1)
	}

	if err := run(*uri, *exec); err != nil {
		log.Fatal(err)
	}
}

func run(uri, sql string) error {
	conn, err := siodb.Open(uri)
	if err != nil {
		return fmt.Errorf("siodb-example: open: %w", err)
	}
	defer conn.Close()

	if err := conn.Execute(sql); err != nil {
		return fmt.Errorf("siodb-example: execute: %w", err)
	}

	printed := false
	for {
		ok, err := conn.Next()
		if err != nil {
			return fmt.Errorf("siodb-example: next: %w", err)
		}
		if !ok {
			break
		}
		printed = true
		cells := make([]string, len(conn.Scan()))
		for i, cell := range conn.Scan() {
			if cell == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = cell.String()
		}
		fmt.Println(strings.Join(cells, "\t"))
	}

	if !printed {
		fmt.Printf("OK, %d row(s) affected\n", conn.AffectedRowCount())
	}
	return nil
}
