package main

import (
	"fmt"
	"os"

	"github.com/schedkit/webhook-relay/sources"
)

/* validate-sources - Standalone CLI tool to validate sources.yaml
 * Usage: go run cmd/validate-sources/main.go [sources.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	sourcesFile := "sources.yaml"
	if len(os.Args) > 1 {
		sourcesFile = os.Args[1]
	}

	fmt.Printf("Validating sources file: %s\n", sourcesFile)

	loader := sources.NewLoader()
	if err := loader.Load(sourcesFile); err != nil {
		fmt.Fprintf(os.Stderr, "VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loaded := loader.List()
	fmt.Printf("VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d source(s):\n", len(loaded))

	for i, source := range loaded {
		fmt.Printf("\n%d. Source: %s\n", i+1, source.Tag)
		fmt.Printf("   Signature Header: %s\n", source.SignatureHeader)
		fmt.Printf("   Timestamp Header: %s\n", source.TimestampHeader)
		fmt.Printf("   Max Age:          %s\n", source.MaxAge)
		if source.SigningSecret == "" {
			fmt.Printf("   Signing Secret:   (not set - requests will be rejected)\n")
		} else {
			fmt.Printf("   Signing Secret:   (set)\n")
		}
	}

	fmt.Printf("\nAll sources are valid!\n")
	os.Exit(0)
}
