package errors

// Error codes for the SecreC compiler.
// These codes are used in diagnostics and documentation to provide
// consistent error identification across the toolchain.
//
// Error code ranges:
// E0001-E0099: Type checking errors
// E0100-E0199: Parser errors
// E0200-E0299: Template/operator instantiation errors
// E0300-E0399: Import/module errors
// E0400-E0499: Security type errors (classify/declassify)
// E0500-E0599: Codegen errors
// E0600-E0699: Flow control errors
// E0800-E0899: Warning codes

const (
	// E0001: Variable resolution errors
	ErrorUndefinedVariable = "E0001"

	// E0002: Procedure resolution errors (no matching overload)
	ErrorUndefinedProcedure = "E0002"

	// E0003: Type compatibility errors
	ErrorTypeMismatch = "E0003"

	// E0004: Procedure return type errors
	ErrorInvalidReturnType = "E0004"

	// E0005: Struct field access errors
	ErrorFieldNotFound = "E0005"

	// E0006: Ambiguous overload/template resolution
	ErrorAmbiguousOverload = "E0006"

	// E0007: Missing required field in struct literal
	ErrorMissingField = "E0007"

	// E0008: Binary operation type errors
	ErrorInvalidBinaryOperation = "E0008"

	// E0009: Duplicate declaration errors
	ErrorDuplicateDeclaration = "E0009"

	// E0010: Index/dimensionality errors
	ErrorInvalidIndex = "E0010"

	// E0011: Invalid lvalue for assignment
	ErrorInvalidAssignment = "E0011"

	// E0012: Unsatisfiable template quantifier constraint
	ErrorUnsatisfiedConstraint = "E0012"

	// E0013: Procedure call argument count/type errors
	ErrorInvalidArguments = "E0013"

	// E0014: Unary/binary operation errors
	ErrorInvalidOperation = "E0014"

	// E0015: Generic semantic error (fallback)
	ErrorGenericSemantic = "E0015"

	// E0021: Module not imported / unresolved import
	ErrorUndefinedModule = "E0021"

	// E0100: Source does not conform to the grammar
	ErrorSyntax = "E0100"

	// E0300: Import cycle detected
	ErrorImportCycle = "E0300"

	// E0301: Imported module name not found on any search path
	ErrorModuleNotFound = "E0301"

	// E0400: Classification of a type not admitted by the target kind
	ErrorInvalidClassify = "E0400"

	// E0401: Declassification of a public value
	ErrorInvalidDeclassify = "E0401"

	// E0600: Missing return statement on a path
	ErrorMissingReturn = "E0600"

	// E0601: Unreachable code
	ErrorUnreachableCode = "E0601"

	// W0001: Unused variable warning
	WarningUnusedVariable = "W0001"

	// W0002: Unreachable code warning
	WarningUnreachableCode = "W0002"
)

// descriptions gives a human-readable sentence for each code, returned by
// GetErrorDescription.
var descriptions = map[string]string{
	ErrorUndefinedVariable:      "Variable is used but not defined in the current scope",
	ErrorUndefinedProcedure:     "No procedure or operator overload matches this call",
	ErrorTypeMismatch:           "Expression type does not match the expected type",
	ErrorInvalidReturnType:      "Returned value's type does not match the declared return type",
	ErrorFieldNotFound:          "Struct field does not exist",
	ErrorAmbiguousOverload:      "More than one procedure/template overload is equally specific",
	ErrorMissingField:           "Required field missing in struct literal",
	ErrorInvalidBinaryOperation: "Binary operation not supported for these operand types",
	ErrorDuplicateDeclaration:   "Duplicate declaration found in this scope",
	ErrorInvalidIndex:          "Index expression does not match the array's dimensionality",
	ErrorInvalidAssignment:     "Left-hand side is not a valid assignment target",
	ErrorUnsatisfiedConstraint: "Template quantifier constraint not satisfied by the argument type",
	ErrorInvalidArguments:      "Procedure call has invalid arguments",
	ErrorInvalidOperation:      "Invalid unary or binary operation",
	ErrorGenericSemantic:       "Type checking error",
	ErrorUndefinedModule:       "Module is not imported",
	ErrorSyntax:                "Source does not conform to the SecreC grammar",
	ErrorImportCycle:           "Import graph contains a cycle",
	ErrorModuleNotFound:        "No module with this name was found on any search path",
	ErrorInvalidClassify:       "Target domain's kind does not admit this data type",
	ErrorInvalidDeclassify:     "Declassification requires a private operand",
	ErrorMissingReturn:         "Procedure declares a return type but has a path with no return statement",
	ErrorUnreachableCode:       "Code is unreachable",
	WarningUnusedVariable:      "Variable is declared but never used",
	WarningUnreachableCode:     "Code is unreachable",
}

// GetErrorDescription returns a human-readable description of the error code.
func GetErrorDescription(code string) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown error code"
}

// IsWarning returns true if the error code represents a warning rather than an error.
func IsWarning(code string) bool {
	return len(code) > 0 && (code[0] == 'W' || (code >= "E0800" && code < "E0900"))
}

// GetErrorCategory returns the category of the error based on its code.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "Type Checking"
	case code >= "E0100" && code < "E0200":
		return "Parser"
	case code >= "E0200" && code < "E0300":
		return "Instantiation"
	case code >= "E0300" && code < "E0400":
		return "Import/Module"
	case code >= "E0400" && code < "E0500":
		return "Security Type"
	case code >= "E0500" && code < "E0600":
		return "Codegen"
	case code >= "E0600" && code < "E0700":
		return "Flow Control"
	case code >= "E0800" && code < "E0900":
		return "Warning"
	case len(code) > 0 && code[0] == 'W':
		return "Warning"
	default:
		return "Unknown"
	}
}
