// Command docflip converts DOCX documents to PDF and PDF documents back to
// DOCX.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
