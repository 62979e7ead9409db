// skillpipe runs two document-processing pipelines: PDF text extraction with
// chunking, and candidate/job skill matching.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
