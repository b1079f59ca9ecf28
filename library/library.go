// Package library embeds the standard library shipped with the assembler
// and exposes it as the `built_ins` BTree of virtual paths to contents.
package library

import (
	"embed"
	"io/fs"

	"github.com/dr8co/sema/cell"
)

//go:embed library/*.sf
var libraryFS embed.FS

// BuiltIns returns the embedded library as a BTree from virtual paths to
// file contents, suitable for the `built_ins` binding consulted by the
// import loader.
func BuiltIns() cell.Cell {
	result := cell.Cell(cell.NewBTree())

	_ = fs.WalkDir(libraryFS, "library", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		content, err := libraryFS.ReadFile(path)
		if err != nil {
			return nil
		}

		// Strip the embed root: library/prelude.sf is imported as
		// "prelude.sf".
		virtual := path[len("library/"):]
		inserted, err := cell.BTreeInsert(result, &cell.StringCell{Value: virtual}, &cell.StringCell{Value: string(content)})
		if err == nil {
			result = inserted
		}
		return nil
	})

	return result
}
