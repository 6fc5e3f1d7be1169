package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// SecrecLexer tokenizes SecreC source. Longer operators are listed before
// their prefixes so the stateful lexer's first-match-wins rule picks the
// wide token (e.g. "<<" before "<").
var SecrecLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"DocComment", `///[^\n]*`, nil},
		{"Comment", `//[^\n]*`, nil},
		{"BlockComment", `/\*([^*]|\*[^/])*\*/`, nil},

		{"Float", `[0-9]+\.[0-9]+`, nil},
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},

		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		{"Operator", `(<<=|>>=|\|\||&&|==|!=|<=|>=|<<|>>|\+=|-=|\*=|/=|%=|\+\+|--|::|=|[-+*/%&|^~<>!?])`, nil},
		{"Punctuation", `[{}\[\](),;:.]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
