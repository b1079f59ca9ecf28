package interp

import (
	"os"
	"path/filepath"

	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/lexer"
	"github.com/dr8co/sema/parser"
	"github.com/dr8co/sema/vm"
)

// The default extension implied when an import name has none.
const defaultExtension = ".sf"

// maybeImport recognizes an (import "name") statement. Imports run at
// binding time because a loaded file's exports become bindings for the
// statements that follow.
func (s *Session) maybeImport(statement cell.Cell, b *bind.SymbolBindings) (bool, cell.Cell, error) {
	list, ok := statement.(*cell.List)
	if !ok {
		return false, nil, nil
	}
	head, ok := list.Car.(*cell.AtomCell)
	if !ok || cell.AtomName(head.ID) != "import" {
		return false, nil, nil
	}

	args, ok := cell.ListToSlice(list.Cdr)
	if !ok || len(args) != 1 {
		return true, nil, bind.NewError(bind.ARGUMENTS_NOT_SUPPLIED, list.Cdr)
	}
	name, ok := args[0].(*cell.StringCell)
	if !ok {
		return true, nil, bind.NewError(bind.SYNTAX_EXPECTING_ATOM, args[0])
	}

	result, err := s.ImportFile(name.Value, b)
	return true, result, err
}

// ImportFile loads and evaluates a file, merging its exported symbols into
// the given bindings. The file is searched for on disk (relative paths
// consult the in-language `import_path` list of directories) and then in
// the embedded `built_ins` BTree of virtual paths.
func (s *Session) ImportFile(name string, b *bind.SymbolBindings) (cell.Cell, error) {
	content, err := s.locateImport(name, b)
	if err != nil {
		return nil, err
	}

	p := parser.New(lexer.New(content))
	statements, err := p.ParseProgram()
	if err != nil {
		return nil, err
	}

	// Evaluate in an interior scope: cells land on the global frame, but
	// only exported symbols survive into the caller's bindings.
	scope := b.PushInteriorFrame()
	result, err := s.evalWithBindings(statements, cell.Nil, scope)
	if err != nil {
		scope.Pop()
		return nil, err
	}

	for _, atomID := range scope.Exports() {
		if value, depth, ok := scope.LookUp(atomID); ok && depth == 0 {
			b.SetSymbol(atomID, value)
		}
	}
	scope.Pop()

	return result, nil
}

// locateImport resolves an import name to file contents.
func (s *Session) locateImport(name string, b *bind.SymbolBindings) (string, error) {
	var candidates []string

	withExtension := name
	if filepath.Ext(withExtension) == "" {
		withExtension += defaultExtension
	}

	if filepath.IsAbs(name) {
		candidates = append(candidates, name, withExtension)
	} else {
		candidates = append(candidates, name, withExtension)
		for _, dir := range s.importPath(b) {
			candidates = append(candidates, filepath.Join(dir, name), filepath.Join(dir, withExtension))
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			content, err := os.ReadFile(candidate)
			if err != nil {
				return "", vm.Errorf(vm.IO_ERROR, "%s: %v", candidate, err)
			}
			return string(content), nil
		}
	}

	// Fall back to the embedded library.
	if builtIns, _, ok := b.LookUp(cell.AtomID("built_ins")); ok {
		for _, key := range []string{name, withExtension, "/" + name, "/" + withExtension} {
			content, err := cell.BTreeSearch(builtIns, &cell.StringCell{Value: key})
			if err == nil && !cell.IsNil(content) {
				if str, ok := content.(*cell.StringCell); ok {
					return str.Value, nil
				}
			}
		}
	}

	return "", vm.Errorf(vm.FILE_NOT_FOUND, "%s", name)
}

// importPath reads the in-language import_path binding as a list of
// directory strings.
func (s *Session) importPath(b *bind.SymbolBindings) []string {
	value, _, ok := b.LookUp(cell.AtomID("import_path"))
	if !ok {
		return nil
	}
	// A def'd import_path lives in a global frame cell.
	if ref, ok := value.(*cell.FrameReference); ok && ref.CellIndex < len(s.Frame.Cells) {
		value = s.Frame.Cells[ref.CellIndex]
	}
	items, ok := cell.ListToSlice(value)
	if !ok {
		return nil
	}

	var dirs []string
	for _, item := range items {
		if str, ok := item.(*cell.StringCell); ok {
			dirs = append(dirs, str.Value)
		}
	}
	return dirs
}
