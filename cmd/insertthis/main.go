package main

import (
	_ "github.com/tliron/commonlog/simple"

	"github.com/mvp-joe/insert-this/internal/cli"
)

func main() {
	cli.Execute()
}
