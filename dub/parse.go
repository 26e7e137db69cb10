// Package dub parses the command language of the envgen console.
//
// A command is an identifier followed by arguments separated by spaces:
// identifiers, integers, floats, double quoted strings, or a quoted
// pattern expression selecting steps of a bar, e.g. '1,3/* selects every
// 8th note of beats 1 and 3.
package dub

import (
	"fmt"
	"strconv"
)

type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}
func (MatchExpr) isNode()  {}

type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string

// MatchExpr selects steps on successively finer divisions of a bar.
type MatchExpr struct {
	matchers []matchItem
}

func Parse(input string) (Command, error) {
	tokens, err := lex(input)
	if err != nil {
		return Command{}, err
	}
	p := parser{tokens: tokens}
	return p.parse()
}

type parser struct {
	pos    int
	tokens []token
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) parse() (Command, error) {
	var cmd Command
	token := p.next()
	if token.typ == typeEOF {
		return cmd, fmt.Errorf("empty command")
	}
	if token.typ != typeIdentifier {
		return cmd, unexpected(token)
	}
	cmd.Name = Identifier(token.text)
	for token := p.next(); token.typ != typeEOF; token = p.next() {
		var arg Node
		switch token.typ {
		case typeIdentifier:
			arg = Identifier(token.text)
		case typeString:
			arg = String(token.text[1 : len(token.text)-1])
		case typeFloat:
			f, err := strconv.ParseFloat(token.text, 64)
			if err != nil {
				return cmd, err
			}
			arg = Float(f)
		case typeInt:
			n, err := strconv.Atoi(token.text)
			if err != nil {
				return cmd, err
			}
			arg = Int(n)
		case typeQuote:
			matchExpr, err := p.matchExpr()
			if err != nil {
				return cmd, err
			}
			arg = matchExpr
		default:
			return cmd, unexpected(token)
		}
		cmd.Args = append(cmd.Args, arg)
	}
	return cmd, nil
}

// matchExpr parses the pattern following a quote, up to the next space
// separated argument or the end of input.
func (p *parser) matchExpr() (MatchExpr, error) {
	var match MatchExpr
	current := matchItem{}

	for {
		token := p.next()
		switch token.typ {
		case typeInt:
			if p.peek().typ == typeColon {
				p.next()
				end := p.next()
				if end.typ != typeInt {
					return match, unexpected(end)
				}
				start, _ := strconv.Atoi(token.text)
				stop, _ := strconv.Atoi(end.text)
				current.matcher = rangeMatch{start: start, end: stop}
			} else {
				list, err := p.listMatch(token)
				if err != nil {
					return match, err
				}
				current.matcher = list
			}
		case typeAsterisk:
			current.matcher = matchAll
		default:
			return match, unexpected(token)
		}

		if p.peek().typ != typeSlash {
			match.matchers = append(match.matchers, current)
			return match, nil
		}
		match.matchers = append(match.matchers, current)
		current = matchItem{level: current.level + 1}
		p.next()
		// each extra slash skips a division level
		for p.peek().typ == typeSlash {
			p.next()
			current.level++
		}
	}
}

func (p *parser) listMatch(first token) (listMatch, error) {
	n, err := strconv.Atoi(first.text)
	if err != nil {
		return nil, err
	}
	list := listMatch{n}
	for p.peek().typ == typeComma {
		p.next()
		t := p.next()
		if t.typ != typeInt {
			return list, unexpected(t)
		}
		n, err := strconv.Atoi(t.text)
		if err != nil {
			return list, err
		}
		list = append(list, n)
	}
	return list, nil
}

func unexpected(t token) error {
	if t.typ == typeEOF {
		return fmt.Errorf("unexpected end of input")
	}
	return fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
}
