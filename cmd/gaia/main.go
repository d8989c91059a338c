package main

import (
	"flag"
	"fmt"
	"log"
)

const usage = `usage: gaia [-conf=<path>] <command> [<args>]

Configuration flags:

   -conf       The TOML configuration file for the authority server.
               Defaults to gaia.toml in the current directory if present.

Server commands
   serve       Serve the shared object authority to hub participants

Project commands
   status      Display the version manifest for the sample project
   repl        Runs a read-eval-print-loop over a sample project

Other commands
   help        Display help message
`

var confFlag = flag.String("conf", "", "configuration file path")

func main() {
	flag.Parse()
	log.SetFlags(0)
	args := flag.Args()
	if len(args) == 0 {
		log.Printf("missing command\n\n")
		fmt.Print(usage)
		return
	}
	args = args[1:]
	var err error
	switch cmd := flag.Arg(0); cmd {
	case "serve":
		err = serve(args)
	case "status":
		err = status(args)
	case "repl":
		err = repl(args)
	case "help":
		fmt.Print(usage)
	default:
		log.Printf("unknown command: %s\n\n", cmd)
		fmt.Print(usage)
	}
	if err != nil {
		log.Fatalf("%s error: %+v\n", flag.Arg(0), err)
	}
}
