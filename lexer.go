package tagstream

import "strings"

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenTag
)

// token is either a run of plain text or a complete "<...>" tag token.
type token struct {
	kind    tokenKind
	text    string // plain text, or the raw tag token
	name    string // tag name without the closing slash
	closing bool
}

// lex splits buf into tokens and returns the unconsumed tail, which is
// either empty or starts with a '<' that may still become a tag once more
// text arrives. A tag token is '<', at most limit-2 bytes containing neither
// '<' nor '>', then '>'. A '<' that cannot start such a token is a single
// byte of plain text. When final is set nothing is held back.
//
// The decision for each '<' depends only on the bytes that follow it, never
// on where the input was split, so lexing a string in pieces yields the same
// classification as lexing it whole.
func lex(buf string, limit int, final bool) ([]token, string) {
	var toks []token
	for len(buf) > 0 {
		i := strings.IndexByte(buf, '<')
		if i < 0 {
			toks = append(toks, token{kind: tokenText, text: buf})
			return toks, ""
		}
		if i > 0 {
			toks = append(toks, token{kind: tokenText, text: buf[:i]})
			buf = buf[i:]
		}

		j := strings.IndexAny(buf[1:], "<>")
		if j < 0 {
			// No terminator yet. Wait unless the token could no longer fit.
			if len(buf) < limit && !final {
				return toks, buf
			}
			toks = append(toks, token{kind: tokenText, text: "<"})
			buf = buf[1:]
			continue
		}
		j++ // index into buf

		if buf[j] == '<' || j+1 > limit {
			toks = append(toks, token{kind: tokenText, text: "<"})
			buf = buf[1:]
			continue
		}

		raw := buf[:j+1]
		inner := raw[1 : len(raw)-1]
		name, closing := strings.CutPrefix(inner, "/")
		toks = append(toks, token{kind: tokenTag, text: raw, name: name, closing: closing})
		buf = buf[j+1:]
	}
	return toks, ""
}
