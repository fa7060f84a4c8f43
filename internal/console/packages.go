package console

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/oshokin/protonup/internal/domain/proton"
)

// Packages prints the installed package table. It is printed in quiet mode too.
func (c *Console) Packages(installDir string, packages []proton.Package) error {
	if len(packages) == 0 {
		c.print(fmt.Sprintf("No Proton installations found in %s\n", installDir))
		return nil
	}

	data := pterm.TableData{{"Package", "Size"}}

	var total int64

	for _, pkg := range packages {
		data = append(data, []string{pkg.Identifier, humanize.IBytes(uint64(pkg.SizeBytes))})
		total += pkg.SizeBytes
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render package table: %w", err)
	}

	c.print(fmt.Sprintf("%s\n%s\n", installDir, table))
	c.print(fmt.Sprintf("%d package(s), %s total\n", len(packages), humanize.IBytes(uint64(total))))

	return nil
}
