// Package parser builds cell trees from the token stream.
//
// The grammar is the S-expression dialect of the assembler: a program is a
// sequence of expressions, an expression is an atom, a literal, or a
// parenthesized list. Dotted syntax `(a . b)` produces improper lists.
// Numbers carry their declared widths, atoms are interned by name, and
// characters and strings stay distinct, so the binder downstream sees the
// exact cell variants it expects.
//
// Errors carry the source position of the offending token.
package parser

import (
	"fmt"
	"strconv"

	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/lexer"
	"github.com/dr8co/sema/token"
)

// Error is a parse error with its source position.
type Error struct {
	Line    int
	Column  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser builds cell trees from a lexer's token stream.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token
}

// New creates a new parser for the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	// Read two tokens, so curToken and peekToken are both set.
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...any) *Error {
	return &Error{Line: p.curToken.Line, Column: p.curToken.Column, Message: fmt.Sprintf(format, args...)}
}

// ParseProgram parses the whole input as a list of statements.
func (p *Parser) ParseProgram() (cell.Cell, error) {
	var statements []cell.Cell

	for p.curToken.Type != token.EOF {
		statement, err := p.parseCell()
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}

	return cell.ListFromSlice(statements), nil
}

// parseCell parses one expression and advances past it.
func (p *Parser) parseCell() (cell.Cell, error) {
	tok := p.curToken

	switch tok.Type {
	case token.LPAREN:
		return p.parseList()

	case token.RPAREN:
		return nil, p.errorf("unexpected ')'")

	case token.ATOM:
		p.nextToken()
		return cell.Atom(tok.Literal), nil

	case token.BOOLEAN:
		p.nextToken()
		return cell.BooleanFor(tok.Literal == "=t"), nil

	case token.STRING:
		p.nextToken()
		return &cell.StringCell{Value: tok.Literal}, nil

	case token.CHAR:
		p.nextToken()
		runes := []rune(tok.Literal)
		if len(runes) != 1 {
			return nil, p.errorf("invalid character %q", tok.Literal)
		}
		return &cell.Char{Value: runes[0]}, nil

	case token.INT:
		p.nextToken()
		return p.parseIntNumber(tok)

	case token.HEX:
		p.nextToken()
		return p.parseHexNumber(tok)

	case token.BITS:
		p.nextToken()
		return p.parseBitNumber(tok)

	default:
		return nil, p.errorf("unexpected token %q", tok.Literal)
	}
}

// parseList parses a parenthesized list, handling the dotted improper
// form.
func (p *Parser) parseList() (cell.Cell, error) {
	p.nextToken()

	var items []cell.Cell

	for {
		switch p.curToken.Type {
		case token.RPAREN:
			p.nextToken()
			return cell.ListFromSlice(items), nil

		case token.EOF:
			return nil, p.errorf("missing ')'")

		case token.ATOM:
			// A lone dot introduces the cdr of an improper list.
			if p.curToken.Literal == "." && len(items) > 0 {
				p.nextToken()
				cdr, err := p.parseCell()
				if err != nil {
					return nil, err
				}
				if p.curToken.Type != token.RPAREN {
					return nil, p.errorf("missing ')' after dotted tail")
				}
				p.nextToken()
				return cell.ListFromSliceWithCdr(items, cdr), nil
			}
			fallthrough

		default:
			item, err := p.parseCell()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
}

// splitWidth separates a number literal into its digits and its declared
// width: "42u8" gives ("42", 'u', 8).
func splitWidth(literal string, suffixes string) (string, byte, uint8, error) {
	for i := 1; i < len(literal); i++ {
		ch := literal[i]
		for j := 0; j < len(suffixes); j++ {
			if ch != suffixes[j] {
				continue
			}
			width, err := strconv.ParseUint(literal[i+1:], 10, 8)
			if err != nil || width == 0 || width > 64 {
				return "", 0, 0, fmt.Errorf("invalid width in %q", literal)
			}
			return literal[:i], ch, uint8(width), nil
		}
	}
	return literal, 0, 0, nil
}

func (p *Parser) parseIntNumber(tok token.Token) (cell.Cell, error) {
	digits, suffix, width, err := splitWidth(tok.Literal, "ui")
	if err != nil {
		return nil, p.errorf("%v", err)
	}

	switch suffix {
	case 'i':
		value, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", tok.Literal)
		}
		return cell.SBits(width, value), nil

	case 'u':
		value, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", tok.Literal)
		}
		return cell.Bits(width, value), nil

	default:
		value, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", tok.Literal)
		}
		return cell.Plain(value), nil
	}
}

func (p *Parser) parseHexNumber(tok token.Token) (cell.Cell, error) {
	literal := tok.Literal[1:] // strip the '$'

	digits, suffix, width, err := splitWidth(literal, "ui")
	if err != nil {
		return nil, p.errorf("%v", err)
	}

	value, parseErr := strconv.ParseUint(digits, 16, 64)
	if parseErr != nil {
		return nil, p.errorf("invalid hex number %q", tok.Literal)
	}

	switch suffix {
	case 'i':
		return cell.SBits(width, int64(value)), nil
	case 'u':
		return cell.Bits(width, value), nil
	default:
		return cell.Plain(value), nil
	}
}

func (p *Parser) parseBitNumber(tok token.Token) (cell.Cell, error) {
	digits, _, width, err := splitWidth(tok.Literal, "b")
	if err != nil {
		return nil, p.errorf("%v", err)
	}

	value, parseErr := strconv.ParseUint(digits, 2, 64)
	if parseErr != nil {
		return nil, p.errorf("invalid bit number %q", tok.Literal)
	}
	return cell.Bits(width, value), nil
}
