package main

import (
	"os"
)

func main() {
	if e := rootCmd.Execute(); e != nil {
		os.Exit(1)
	}
}
