// Package parse assembles lex tokens into include and setting statements.
package parse

import (
	"io"
	"strings"
	"sync"

	"github.com/vron/xcbuild/conf/lex"
	"github.com/vron/xcbuild/setting"
)

// A Parser is used to parse a single file.
type Parser struct {
	// Will keep outputting statements until EOF at which point the channel is closed.
	Statements chan Statement

	buff, last *lex.Token

	mu sync.Mutex

	l   *lex.Lexer
	lex chan lex.Token
}

// New builds a new parser and starts to parse the input. The results are reached through
// the Statements channel.
func New(input io.Reader) *Parser {
	// use relatively large buffers so processing can continue
	// despite no readers currently waiting
	buffSize := 500
	lexc := make(chan lex.Token, buffSize)
	l := lex.New(input, lexc)
	go l.Lex()
	p := &Parser{
		l:          l,
		lex:        lexc,
		Statements: make(chan Statement, buffSize),
	}
	p.mu.Lock()
	go p.parse()
	return p
}

// Wait blocks until either the first error or the entire reader has
// been parsed and sent on the p.Statements chan
func (p *Parser) Wait() {
	p.mu.Lock()
	p.mu.Unlock()
}

func (p *Parser) parse() {
	for state := p.parseStatement; state != nil; state = state() {
	}
	// drain so the lexer goroutine can finish
	for range p.lex {
	}
	close(p.Statements)
	p.mu.Unlock()
}

type parseState func() parseState

func (p *Parser) eatCommentNewline() {
	tok := p.next()
	for tok.Type == lex.Newline || tok.Type == lex.Comment {
		tok = p.next()
	}
	p.backup()
}

func (p *Parser) parseStatement() parseState {
	p.eatCommentNewline()
	tok := p.next()

	switch tok.Type {
	case lex.EOF:
		return nil
	case lex.Error:
		return p.error(tok.Val, tok)
	case lex.Directive:
		if tok.Val != "include" && tok.Val != "include?" {
			return p.error("unknown directive '"+tok.Val+"'", tok)
		}
		path := p.next()
		if path.Type != lex.IncludePath {
			return p.error("expected include path", path)
		}
		if strings.TrimSpace(path.Val) == "" {
			return p.error("expected a non empty include path", path)
		}
		p.Statements <- IncludeStatement{
			Path:     path.Val,
			PathPos:  path.Pos,
			Optional: strings.HasSuffix(tok.Val, "?"),
		}
		return p.parseStatement
	case lex.Setting:
		line := strings.TrimSpace(tok.Val)
		line = strings.TrimSuffix(line, ";")
		s, ok := setting.ParseLine(line)
		if !ok {
			return p.error("expected a setting assignment", tok)
		}
		p.Statements <- SettingStatement{
			Setting: s,
			Pos:     tok.Pos,
		}
		return p.parseStatement
	}
	return p.error("expected include or setting", tok)
}

func (p *Parser) next() lex.Token {
	if p.buff != nil {
		a := *p.buff
		p.buff = nil
		return a
	}
	t, ok := <-p.lex
	if !ok {
		t = lex.Token{Type: lex.EOF}
	}
	p.last = &t
	return t
}

func (p *Parser) backup() {
	p.buff = p.last
}

func (p *Parser) error(e string, t lex.Token) parseState {
	p.Statements <- ErrorStatement{
		Err: e,
		Pos: t.Pos,
	}
	return nil
}
