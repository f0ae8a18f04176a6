// Command plint-vet runs the plint plugins as a go vet style analyzer:
//
//	plint-vet -plugins=empty-if,ban-calls ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/gnolang/plint/internal/analyzer"
)

func main() {
	singlechecker.Main(analyzer.New(nil))
}
