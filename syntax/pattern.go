package syntax

import (
	"strings"

	"github.com/dr8co/sema/bind"
	"github.com/dr8co/sema/cell"
)

// matchKind selects what one element of a pattern matches.
type matchKind int

const (
	matchAtom matchKind = iota
	matchNil
	matchString
	matchChar
	matchNumber
	matchList
	matchStatement // <name>: capture an evaluated statement
	matchSymbol    // {name}: capture an unevaluated form
)

// matchElement is a single element of a compiled pattern.
type matchElement struct {
	kind    matchKind
	atomID  uint64
	str     string
	char    rune
	number  *cell.Number
	sublist []matchElement
}

// PatternMatch is a compiled macro pattern. Literal atoms match by interned
// id, <name> captures an evaluated statement, {name} captures an
// unevaluated form, lists match structurally, and other literals match by
// equality. "<<" and "{{" escape literal "<" and "{".
type PatternMatch struct {
	elements []matchElement
}

// MatchBinding is one captured variable of a successful match.
type MatchBinding struct {
	AtomID uint64

	// Evaluated is true for <name> captures, whose value is bound and
	// evaluated at the use site.
	Evaluated bool

	Value cell.Cell
}

// PatternFromCells compiles a pattern from its source form.
func PatternFromCells(pattern cell.Cell) (*PatternMatch, error) {
	elements, err := patternElements(pattern)
	if err != nil {
		return nil, err
	}
	return &PatternMatch{elements: elements}, nil
}

func patternElements(pattern cell.Cell) ([]matchElement, error) {
	var elements []matchElement

	items, ok := cell.ListToSlice(pattern)
	if !ok {
		return nil, bind.NewError(bind.SYNTAX_EXPECTING_LIST, pattern)
	}

	angleOpen := cell.AtomID("<")
	angleClose := cell.AtomID(">")
	curlyOpen := cell.AtomID("{")
	curlyClose := cell.AtomID("}")

	for i := 0; i < len(items); i++ {
		switch item := items[i].(type) {
		case *cell.AtomCell:
			isOpen := item.ID == angleOpen || item.ID == curlyOpen

			if isOpen {
				// A doubled bracket escapes a literal bracket.
				if i+1 < len(items) {
					if next, ok := items[i+1].(*cell.AtomCell); ok && next.ID == item.ID {
						elements = append(elements, matchElement{kind: matchAtom, atomID: item.ID})
						i++
						continue
					}
				}

				// <name> or {name}: the capture atom, then the close
				// bracket.
				if i+1 >= len(items) {
					return nil, bind.NewError(bind.SYNTAX_EXPECTING_ATOM, pattern)
				}
				captured, ok := items[i+1].(*cell.AtomCell)
				if !ok {
					return nil, bind.NewError(bind.SYNTAX_EXPECTING_ATOM, items[i+1])
				}

				wanted := angleClose
				bracket := ">"
				kind := matchStatement
				if item.ID == curlyOpen {
					wanted = curlyClose
					bracket = "}"
					kind = matchSymbol
				}
				if i+2 >= len(items) {
					return nil, bind.Errorf(bind.SYNTAX_MISSING_BRACKET, "%s", bracket)
				}
				if closing, ok := items[i+2].(*cell.AtomCell); !ok || closing.ID != wanted {
					return nil, bind.Errorf(bind.SYNTAX_MISSING_BRACKET, "%s", bracket)
				}

				elements = append(elements, matchElement{kind: kind, atomID: captured.ID})
				i += 2
				continue
			}

			// Atoms whose names begin with an escaped bracket match the
			// unescaped name.
			atomID := item.ID
			name := cell.AtomName(atomID)
			if strings.HasPrefix(name, "<") || strings.HasPrefix(name, "{") {
				if len(name) > 1 {
					atomID = cell.AtomID(name[1:])
				}
			}
			elements = append(elements, matchElement{kind: matchAtom, atomID: atomID})

		case *cell.List:
			sublist, err := patternElements(item)
			if err != nil {
				return nil, err
			}
			elements = append(elements, matchElement{kind: matchList, sublist: sublist})

		case *cell.NilCell:
			elements = append(elements, matchElement{kind: matchNil})

		case *cell.Number:
			elements = append(elements, matchElement{kind: matchNumber, number: item})

		case *cell.StringCell:
			elements = append(elements, matchElement{kind: matchString, str: item.Value})

		case *cell.Char:
			elements = append(elements, matchElement{kind: matchChar, char: item.Value})

		default:
			return nil, bind.NewError(bind.SYNTAX_EXPECTING_LIST, items[i])
		}
	}

	return elements, nil
}

// Bindings lists the capture atoms of the pattern, in match order.
func (p *PatternMatch) Bindings() []uint64 {
	return bindingsOf(p.elements)
}

func bindingsOf(elements []matchElement) []uint64 {
	var result []uint64
	for _, element := range elements {
		switch element.kind {
		case matchStatement, matchSymbol:
			result = append(result, element.atomID)
		case matchList:
			result = append(result, bindingsOf(element.sublist)...)
		}
	}
	return result
}

// Match matches a call site against the pattern. The returned bindings are
// in the same order as Bindings.
func (p *PatternMatch) Match(args cell.Cell) ([]MatchBinding, bool) {
	return matchElements(p.elements, args)
}

func matchElements(elements []matchElement, args cell.Cell) ([]MatchBinding, bool) {
	var bindings []MatchBinding

	items, ok := cell.ListToSlice(args)
	if !ok {
		return nil, false
	}
	if len(items) != len(elements) {
		return nil, false
	}

	for i, element := range elements {
		arg := items[i]

		switch element.kind {
		case matchAtom:
			atom, ok := arg.(*cell.AtomCell)
			if !ok || atom.ID != element.atomID {
				return nil, false
			}

		case matchNil:
			if !cell.IsNil(arg) {
				return nil, false
			}

		case matchNumber:
			number, ok := arg.(*cell.Number)
			if !ok || number.Cmp(element.number) != 0 {
				return nil, false
			}

		case matchString:
			str, ok := arg.(*cell.StringCell)
			if !ok || str.Value != element.str {
				return nil, false
			}

		case matchChar:
			char, ok := arg.(*cell.Char)
			if !ok || char.Value != element.char {
				return nil, false
			}

		case matchList:
			sub, ok := matchElements(element.sublist, arg)
			if !ok {
				return nil, false
			}
			bindings = append(bindings, sub...)

		case matchStatement:
			bindings = append(bindings, MatchBinding{AtomID: element.atomID, Evaluated: true, Value: arg})

		case matchSymbol:
			bindings = append(bindings, MatchBinding{AtomID: element.atomID, Value: arg})
		}
	}

	return bindings, true
}
