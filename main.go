package main

import (
	_ "github.com/anoixa/memory-lane/docs"

	"github.com/anoixa/memory-lane/cmd"
)

// @title                       Memory Lane API
// @version                     1.0
// @description                 Personal timeline of events and photos.
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cmd.Execute()
}
