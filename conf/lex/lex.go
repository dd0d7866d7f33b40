// Package lex breaks an xcconfig file into tokens, using limited lookahead.
package lex

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// variable instead of constant for testing purposes
var blockSize = 1024 * 4

// Constants for the TokenTypes.
const (
	EOF = iota
	Directive
	IncludePath
	Setting
	Comment
	Newline
	Error
)

var typeNames = map[TokenType]string{
	EOF:         "EOF",
	Directive:   "DIR",
	IncludePath: "INC",
	Setting:     "SET",
	Comment:     "CMT",
	Newline:     "ENT",
	Error:       "ERR",
}

const eof = -1

// A Lexer is not safe for concurrent use, it scans one file linearly from
// start to end.
type Lexer struct {
	state lexState
	err   *Token

	input       io.Reader
	inputBuffer []byte

	tokenBuffer *Token
	results     chan Token

	pos       int // current position, offset from startPos
	startPos  int // position in buffer of start of current
	widthLast int // width of the last rune read from input

	lineCount                    int
	columnCount, lastColumnCount int
	startLine, startColumn       int
}

// A TokenType represents the type of token it is.
type TokenType int

// A Token represents a tokenized part of the input.
type Token struct {
	Type TokenType
	Val  string

	Pos Pos
}

type Pos struct {
	Line   int
	Column int // Column in unicode characters
	Length int // Length in unicode characters
}

// String prints the string representation of the token
func (t Token) String() string {
	return typeNames[t.Type] + "(" + strconv.Quote(t.Val) + ")[" + strconv.Itoa(t.Pos.Line) + ":" + strconv.Itoa(t.Pos.Column) + "+" + strconv.Itoa(t.Pos.Length) + "]"
}

// Error returns an error if the token represents an error, nil otherwise.
func (t Token) Error() error {
	if t.Type == Error {
		return errors.New(t.Val)
	}
	return nil
}

// New creates a Lexer reading from input and delivering the tokens
// on results.
func New(input io.Reader, results chan Token) *Lexer {
	return &Lexer{
		input:       input,
		results:     results,
		inputBuffer: make([]byte, 0, 2*blockSize),
		lineCount:   1,
	}
}

// Lex starts lexing the input and delivering results, a call to Lex blocks until
// EOF or an error is reached.
func (l *Lexer) Lex() {
	for l.state = l.lexLine; l.state != nil; {
		l.state = l.state()
	}
	if l.tokenBuffer != nil {
		l.results <- *l.tokenBuffer
	}
	close(l.results)
}

type lexState func() lexState

func (l *Lexer) error(s string) lexState {
	if l.err != nil {
		return nil
	}
	found := "end of file"
	if r := l.peek(); r != eof {
		found = "'" + string(r) + "'"
	}
	l.err = &Token{
		Val: "expected " + s + " but found: " + found,
	}
	l.emit(Error)
	return nil
}

func (l *Lexer) lexLine() lexState {
	l.consumeSpace()
	switch r := l.peek(); {
	case r == eof:
		l.emit(EOF)
		return nil
	case isNewline(r):
		return l.lexNewline
	case r == '#':
		return l.lexDirective
	case l.atComment():
		return l.lexComment
	}
	return l.lexSetting
}

func (l *Lexer) lexDirective() lexState {
	l.next()
	l.discard()
	if l.accept(isDirectiveCharacter) <= 0 {
		return l.error("directive name")
	}
	l.emit(Directive)
	l.consumeSpace()
	if l.peek() != '"' {
		return l.error("'\"'")
	}
	return l.lexIncludePath
}

func (l *Lexer) lexIncludePath() lexState {
	l.next()
	l.discard()
	for r := l.next(); r != '"'; r = l.next() {
		if r == eof || isNewline(r) {
			l.backup()
			return l.error("'\"'")
		}
	}
	l.backup()
	l.emit(IncludePath)
	l.next()
	l.discard()
	return l.lexEnd
}

func (l *Lexer) lexSetting() lexState {
	for !l.atComment() {
		if r := l.next(); r == eof || isNewline(r) {
			l.backup()
			break
		}
	}
	l.emit(Setting)
	return l.lexEnd
}

// lexEnd expects the rest of a line to be blank or a comment.
func (l *Lexer) lexEnd() lexState {
	l.consumeSpace()
	switch r := l.peek(); {
	case r == eof:
		l.emit(EOF)
		return nil
	case isNewline(r):
		return l.lexNewline
	case l.atComment():
		return l.lexComment
	}
	return l.error("end of line")
}

func (l *Lexer) lexNewline() lexState {
	r := l.next()
	if r == '\r' {
		r = l.next()
		if r != '\n' {
			l.backup()
		}
	}
	l.emit(Newline)
	return l.lexLine
}

func (l *Lexer) lexComment() lexState {
	for r := l.next(); r != eof && !isNewline(r); r = l.next() {
	}
	l.backup()
	l.emit(Comment)
	return l.lexEnd
}

func (l *Lexer) atComment() bool {
	return l.hasPrefix("//")
}

// hasPrefix reports if the unread input starts with s, without consuming it.
func (l *Lexer) hasPrefix(s string) bool {
	for l.input != nil && len(l.inputBuffer)-(l.startPos+l.pos) < len(s) {
		l.load()
	}
	return bytes.HasPrefix(l.inputBuffer[l.startPos+l.pos:], []byte(s))
}

func (l *Lexer) emit(typ TokenType) Token {
	var tok Token
	if l.err != nil {
		tok = *l.err
	} else {
		le := l.columnCount - l.startColumn
		if le < 0 {
			le = 0
		}
		tok = Token{
			Val: string(l.inputBuffer[l.startPos : l.startPos+l.pos]),
			Pos: Pos{
				Line:   l.startLine,
				Column: l.startColumn,
				Length: le, // assumes no token spans lines
			},
		}
	}
	tok.Type = typ
	if l.tokenBuffer != nil {
		l.results <- *l.tokenBuffer
	}
	l.tokenBuffer = &tok

	l.discard()
	return tok
}

func (l *Lexer) discard() {
	l.startPos += l.pos
	l.pos = 0
	l.startLine = l.lineCount
	l.startColumn = l.columnCount
}

func (l *Lexer) consumeSpace() {
	for r := l.next(); isSpace(r); r = l.next() {
	}
	l.backup()
	l.discard()
}

func (l *Lexer) accept(f func(rune) bool) (length int) {
	for ; f(l.next()); length++ {
	}
	l.backup()
	return
}

func (l *Lexer) next() rune {
	l.maybeLoad()
	if l.startPos+l.pos >= len(l.inputBuffer) {
		l.widthLast = 0
		return eof
	}
	r, w := utf8.DecodeRune(l.inputBuffer[l.startPos+l.pos:])
	l.widthLast = w
	l.pos += w
	if r == '\n' {
		l.lineCount++
		l.lastColumnCount = l.columnCount
		l.columnCount = 0
	} else {
		l.columnCount++
	}
	return r
}

func (l *Lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *Lexer) backup() {
	if l.widthLast == 0 {
		return
	}
	l.pos -= l.widthLast
	if l.widthLast == 1 && l.inputBuffer[l.pos+l.startPos] == '\n' {
		l.lineCount--
		l.columnCount = l.lastColumnCount
	} else {
		l.columnCount--
	}
}

func (l *Lexer) maybeLoad() {
	if l.input == nil {
		return // reached the end of the input
	}
	if len(l.inputBuffer)-(l.pos+l.startPos) >= 1 {
		return
	}
	l.load()
}

func (l *Lexer) load() {
	// keep a few bytes before the token so backup stays in the buffer
	const keep = 4
	if l.startPos >= blockSize {
		copy(l.inputBuffer, l.inputBuffer[l.startPos-keep:])
		l.inputBuffer = l.inputBuffer[:len(l.inputBuffer)-(l.startPos-keep)]
		l.startPos = keep
	}

	buff := make([]byte, blockSize)
	n, err := l.input.Read(buff)
	buff = buff[:n]
	if err == io.EOF {
		l.input = nil
	} else if err != nil {
		l.input = nil
		l.error("readable input, " + err.Error())
		return
	}

	l.inputBuffer = append(l.inputBuffer, buff...)
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) && r != '\n' && r != '\r'
}

func isDirectiveCharacter(r rune) bool {
	return unicode.IsLetter(r) || r == '?'
}

func isNewline(r rune) bool {
	return r == '\n' || r == '\r'
}
