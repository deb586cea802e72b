package main

import (
	cmd "github.com/rohmanhakim/sitemap-archiver/internal/cli"
)

func main() {
	cmd.Execute()
}
