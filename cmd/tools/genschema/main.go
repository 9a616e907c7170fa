// Command genschema writes the JSON Schema for tern's configuration file,
// used by editors to validate and complete .tern.yaml.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternlabs/tern/internal/config"
)

func main() {
	var outFile string
	flag.StringVar(&outFile, "out", "schema.json", "Output file path")
	flag.Parse()

	if !filepath.IsAbs(outFile) {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
			os.Exit(1)
		}
		outFile = filepath.Join(wd, outFile)
	}

	schema, err := config.GenerateJSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling schema: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outFile, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema to %s: %v\n", outFile, err)
		os.Exit(1)
	}
	fmt.Printf("Schema written to %s\n", outFile)
}
