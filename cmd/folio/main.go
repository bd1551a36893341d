package main

import "github.com/simaogato/goalfolio-backend/internal/cli"

func main() {
	cli.Execute()
}
