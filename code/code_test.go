package code

import (
	"strings"
	"testing"

	"github.com/dr8co/sema/cell"
)

func TestLookup(t *testing.T) {
	def, err := Lookup(OpValue)
	if err != nil {
		t.Fatal(err)
	}
	if def.Name != "Value" || !def.HasCell {
		t.Errorf("definition = %+v", def)
	}

	if _, err := Lookup(Opcode(255)); err == nil {
		t.Error("expected an error for an undefined opcode")
	}
}

func TestActionsString(t *testing.T) {
	actions := Actions{
		Value(cell.Plain(42)),
		Push(),
		CellValue(3),
		PopList(2),
	}

	listing := actions.String()
	for _, expected := range []string{"0000 Value 42", "0001 Push", "0002 CellValue 3", "0003 PopList 2"} {
		if !strings.Contains(listing, expected) {
			t.Errorf("listing missing %q:\n%s", expected, listing)
		}
	}
}

func TestCompiledToActions(t *testing.T) {
	var compiled Compiled
	compiled.FrameSetup = Actions{Value(cell.Plain(1))}
	compiled.Add(Value(cell.Plain(2)))

	var other Compiled
	other.FrameSetup = Actions{Value(cell.Plain(3))}
	other.Add(Value(cell.Plain(4)))

	compiled.Extend(other)
	flat := compiled.ToActions()

	// Frame setup actions come first, in order, then the main actions.
	values := make([]string, len(flat))
	for i, action := range flat {
		values[i] = action.Cell.Inspect()
	}
	expected := []string{"1", "3", "2", "4"}
	for i := range expected {
		if values[i] != expected[i] {
			t.Fatalf("flattened order = %v, want %v", values, expected)
		}
	}
}
