// Command configgen writes or validates xrsim runtime configuration files.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/uGboly/xrblocks/internal/config"
)

func main() {
	output := flag.String("output", "", "output path for the config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "xrsim.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite an existing config file")
	flag.Parse()

	if *validate {
		if _, err := config.Load(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("config ok: %s", *input)
		return
	}

	if *output == "" {
		fmt.Print(config.Template())
		return
	}
	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("config written: %s", *output)
}
