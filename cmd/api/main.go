// cmd/api/main.go
package main

import (
	"fmt"
	"os"
)

// @title Expense Tracker API
// @version 1.0
// @description Personal finance tracking: expenses, categories, credit cards, budget and account recovery.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
