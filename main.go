package main

import (
	"context"

	"github.com/sadopc/studylog/internal/cli"
)

func main() {
	cli.Main(context.Background())
}
