package parser

import "github.com/alecthomas/participle/v2/lexer"

// The grammar is declared top-down from the compilation unit down to
// primary expressions, one precedence tier per binary-operator group
// (assignment looser than ternary, looser than ||, ..., looser than unary,
// looser than postfix/primary). Each binary tier folds a left operand and
// a flat operator list, the same shape the convert pass later turns into a
// left-associative chain of ast.BinaryExpr nodes.

type gProgram struct {
	Pos     lexer.Position
	Modules []*gModule `@@*`
}

type gModule struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   string     `"module" @Ident "{"`
	Items  []*gItem   `@@* "}"`
}

type gItem struct {
	Pos      lexer.Position
	Import   *gImport   `  @@`
	Kind     *gKind     `| @@`
	Domain   *gDomain   `| @@`
	Struct   *gStruct   `| @@`
	Template *gTemplate `| @@`
	Proc     *gProc     `| @@`
}

type gImport struct {
	Pos  lexer.Position
	Name string `"import" @Ident ";"`
}

type gKind struct {
	Pos     lexer.Position
	EndPos  lexer.Position
	Name    string   `"kind" @Ident "{"`
	Members []string `( "type" @Ident ";" )* "}"`
}

type gDomain struct {
	Pos    lexer.Position
	Name   string `"domain" @Ident`
	Kind   string `@Ident ";"`
}

type gStruct struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   string          `"struct" @Ident "{"`
	Fields []*gStructField `@@* "}"`
}

type gStructField struct {
	Pos  lexer.Position
	Type *gType `@@`
	Name string `@Ident ";"`
}

// gType is the syntactic type annotation: an optional security
// qualifier/domain name (defaulting to public), a data type name, and an
// optional `[N]` dimensionality suffix. The qualifier is taken only when
// two more identifiers, or an identifier and `[`, follow it, so `int x`
// reads as a public int named x.
type gType struct {
	Pos      lexer.Position
	Security string `( @Ident (?= Ident ( Ident | "[" ) ) )?`
	DataName string `@Ident`
	Dim      *int   `( "[" @Integer "]" )?`
}

type gQuantifier struct {
	Pos        lexer.Position
	VarKind    string `@("domain" | "type" | "dim")`
	Name       string `@Ident`
	Constraint string `( ":" @Ident )?`
}

type gTemplate struct {
	Pos         lexer.Position
	Quantifiers []*gQuantifier `"template" "<" @@ ( "," @@ )* ">"`
	Decl        *gProc         `@@`
}

type gProc struct {
	Pos        lexer.Position
	IsOperator bool       `[ @"operator" ]`
	IsCast     bool       `[ @"cast" ]`
	ReturnType *gType     `[ @@ ]`
	NameOrOp   *gProcName `@@`
	Params     []*gParam  `"(" ( @@ ( "," @@ )* )? ")"`
	Body       *gCompound `@@`
}

// gProcName is the procedure's identifier, or, after the `operator`
// keyword that follows the return type, the operator symbol it overloads.
type gProcName struct {
	Pos          lexer.Position
	OperatorName string `  "operator" @("==" | "!=" | "<=" | ">=" | "&&" | "||" | "+" | "-" | "*" | "/" | "%" | "<" | ">" | "!")`
	Name         string `| @Ident`
}

type gParam struct {
	Pos  lexer.Position
	Type *gType `@@`
	Name string `@Ident`
}

type gCompound struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Stmts  []*gStmt `"{" @@* "}"`
}

type gStmt struct {
	Pos       lexer.Position
	If        *gIf       `  @@`
	For       *gFor      `| @@`
	While     *gWhile    `| @@`
	DoWhile   *gDoWhile  `| @@`
	Block     *gCompound `| @@`
	Break     *gBreak    `| @@`
	Continue  *gContinue `| @@`
	Return    *gReturn   `| @@`
	Assert    *gAssert   `| @@`
	Print     *gPrint    `| @@`
	Syscall   *gSyscall  `| @@`
	Decl      *gDecl     `| @@`
	ExprStmt  *gExprStmt `| @@`
}

type gIf struct {
	Pos  lexer.Position
	Cond *gExpr `"if" "(" @@ ")"`
	Then *gStmt `@@`
	Else *gStmt `( "else" @@ )?`
}

type gFor struct {
	Pos  lexer.Position
	Init *gStmt `"for" "(" ( @@ )? ";"`
	Cond *gExpr `( @@ )? ";"`
	Post *gStmt `( @@ )? ")"`
	Body *gStmt `@@`
}

type gWhile struct {
	Pos  lexer.Position
	Cond *gExpr `"while" "(" @@ ")"`
	Body *gStmt `@@`
}

type gDoWhile struct {
	Pos  lexer.Position
	Body *gStmt `"do" @@`
	Cond *gExpr `"while" "(" @@ ")" ";"`
}

type gBreak struct {
	Pos lexer.Position `"break" ";"`
}

type gContinue struct {
	Pos lexer.Position `"continue" ";"`
}

type gReturn struct {
	Pos   lexer.Position
	Value *gExpr `"return" ( @@ )? ";"`
}

type gAssert struct {
	Pos  lexer.Position
	Cond *gExpr `"assert" "(" @@ ")" ";"`
}

type gPrint struct {
	Pos  lexer.Position
	Args []*gExpr `"print" "(" ( @@ ( "," @@ )* )? ")" ";"`
}

type gSyscall struct {
	Pos  lexer.Position
	Name string       `"__syscall" "(" @String`
	Args []*gSyscallArg `( "," @@ )* ")" ";"`
}

type gSyscallArg struct {
	Pos      lexer.Position
	Passing  string `@("__return" | "__push" | "__pushref" | "__pushcref")`
	ReadOnly bool   `[ @"__const" ] ":"`
	Value    *gExpr `@@`
}

// gDecl covers both a scalar declaration with an optional initializer and
// an array declaration with runtime size arguments: `int[1] a(10);`.
type gDecl struct {
	Pos     lexer.Position
	Mutable bool     `[ @"mut" ]`
	Type    *gType   `@@`
	Name    string   `@Ident`
	Dims    []*gExpr `( "(" ( @@ ( "," @@ )* )? ")" )?`
	Init    *gExpr   `( "=" @@ )? ";"`
}

type gExprStmt struct {
	Pos lexer.Position
	X   *gExpr `@@ ";"`
}

// --- expression precedence tiers ---

type gExpr struct {
	Pos lexer.Position
	X   *gAssign `@@`
}

type gAssign struct {
	Pos  lexer.Position
	Left *gTernary    `@@`
	Tail *gAssignTail `@@?`
}
type gAssignTail struct {
	Op    string   `@("=" | "+=" | "-=" | "*=" | "/=" | "%=")`
	Right *gAssign `@@`
}

type gTernary struct {
	Pos  lexer.Position
	Cond *gLogicalOr   `@@`
	Tail *gTernaryTail `@@?`
}
type gTernaryTail struct {
	Then *gExpr    `"?" @@`
	Else *gTernary `":" @@`
}

type gLogicalOr struct {
	Pos  lexer.Position
	Left *gLogicalAnd `@@`
	Ops  []*gOrOp     `@@*`
}
type gOrOp struct {
	Op    string       `@"||"`
	Right *gLogicalAnd `@@`
}

type gLogicalAnd struct {
	Pos  lexer.Position
	Left *gBitOr `@@`
	Ops  []*gAndOp `@@*`
}
type gAndOp struct {
	Op    string  `@"&&"`
	Right *gBitOr `@@`
}

type gBitOr struct {
	Pos  lexer.Position
	Left *gBitXor `@@`
	Ops  []*gBitOrOp `@@*`
}
type gBitOrOp struct {
	Op    string   `@"|"`
	Right *gBitXor `@@`
}

type gBitXor struct {
	Pos  lexer.Position
	Left *gBitAnd `@@`
	Ops  []*gBitXorOp `@@*`
}
type gBitXorOp struct {
	Op    string   `@"^"`
	Right *gBitAnd `@@`
}

type gBitAnd struct {
	Pos  lexer.Position
	Left *gEquality `@@`
	Ops  []*gBitAndOp `@@*`
}
type gBitAndOp struct {
	Op    string     `@"&"`
	Right *gEquality `@@`
}

type gEquality struct {
	Pos  lexer.Position
	Left *gRelational `@@`
	Ops  []*gEqualityOp `@@*`
}
type gEqualityOp struct {
	Op    string       `@("==" | "!=")`
	Right *gRelational `@@`
}

type gRelational struct {
	Pos  lexer.Position
	Left *gShift `@@`
	Ops  []*gRelationalOp `@@*`
}
type gRelationalOp struct {
	Op    string  `@("<=" | ">=" | "<" | ">")`
	Right *gShift `@@`
}

type gShift struct {
	Pos  lexer.Position
	Left *gAdditive `@@`
	Ops  []*gShiftOp `@@*`
}
type gShiftOp struct {
	Op    string     `@("<<" | ">>")`
	Right *gAdditive `@@`
}

type gAdditive struct {
	Pos  lexer.Position
	Left *gMultiplicative `@@`
	Ops  []*gAdditiveOp `@@*`
}
type gAdditiveOp struct {
	Op    string           `@("+" | "-")`
	Right *gMultiplicative `@@`
}

type gMultiplicative struct {
	Pos  lexer.Position
	Left *gUnary `@@`
	Ops  []*gMultiplicativeOp `@@*`
}
type gMultiplicativeOp struct {
	Op    string  `@("*" | "/" | "%")`
	Right *gUnary `@@`
}

type gUnary struct {
	Pos    lexer.Position
	Prefix *gUnaryPrefix `  @@`
	Post   *gPostfix     `| @@`
}
type gUnaryPrefix struct {
	Op string  `@("-" | "!" | "~" | "++" | "--")`
	X  *gUnary `@@`
}

type gPostfix struct {
	Pos     lexer.Position
	Primary *gPrimary     `@@`
	Suffix  []*gPostfixOp `@@*`
}

type gPostfixOp struct {
	Pos      lexer.Position
	IncDec   string        `  @("++" | "--")`
	Field    string        `| "." @Ident`
	Index    *gIndexSuffix `| @@`
}

type gIndexSuffix struct {
	Pos    lexer.Position
	Slices []*gSlice `"[" @@ ( "," @@ )* "]"`
}

type gSlice struct {
	Pos  lexer.Position
	From *gExpr        `@@`
	Tail *gSliceTail    `@@?`
}
type gSliceTail struct {
	IsSlice bool   `@":"`
	To      *gExpr `[ @@ ]`
}

type gPrimary struct {
	Pos        lexer.Position
	Classify   *gClassifyCall   `  @@`
	Declassify *gOneArgCall     `| "declassify" @@`
	Shape      *gOneArgCall     `| "shape" @@`
	Reshape    *gReshapeCall    `| @@`
	Cat        *gCatCall        `| @@`
	Size       *gOneArgCall     `| "size" @@`
	Strlen     *gOneArgCall     `| "strlen" @@`
	ToString   *gOneArgCall     `| "tostring" @@`
	BytesToStr *gOneArgCall     `| "bytesToString" @@`
	StrToBytes *gOneArgCall     `| "stringToBytes" @@`
	DomainID   *gDomainIDCall   `| @@`
	ArrayCtor  *gArrayCtor      `| @@`
	Call       *gCallExpr       `| @@`
	Float      *float64         `| @Float`
	Int        *string          `| @Integer`
	Bool       *string          `| @("true" | "false")`
	Str        *string          `| @String`
	Qualified  *gQualifiedIdent `| @@`
	Ident      *string          `| @Ident`
	Paren      *gExpr           `| "(" @@ ")"`
}

type gOneArgCall struct {
	Pos lexer.Position
	X   *gExpr `"(" @@ ")"`
}

type gClassifyCall struct {
	Pos    lexer.Position
	Domain string `"classify" "(" @Ident ","`
	X      *gExpr `@@ ")"`
}

type gReshapeCall struct {
	Pos  lexer.Position
	X    *gExpr   `"reshape" "(" @@`
	Dims []*gExpr `( "," @@ )* ")"`
}

type gCatCall struct {
	Pos  lexer.Position
	A    *gExpr `"cat" "(" @@`
	B    *gExpr `"," @@`
	Axis *gExpr `( "," @@ )? ")"`
}

type gDomainIDCall struct {
	Pos    lexer.Position
	Domain string `"domainid" "(" @Ident ")"`
}

type gArrayCtor struct {
	Pos      lexer.Position
	Elements []*gExpr `"{" ( @@ ( "," @@ )* )? "}"`
}

type gQualifiedIdent struct {
	Pos    lexer.Position
	Module string `@Ident "::"`
	Name   string `@Ident`
}

type gCallExpr struct {
	Pos    lexer.Position
	Callee string   `@Ident "("`
	Args   []*gExpr `( @@ ( "," @@ )* )? ")"`
}
