package formatter

// mojoKeywords are escaped by ParamName. "lib" is not a keyword but is the
// name of the library handle every generated function takes first.
// "self" is left alone; receivers are emitted as "self" on purpose.
var mojoKeywords = []string{
	"False", "None", "True",
	"alias", "and", "as", "assert", "async", "await", "borrowed", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"fn", "for", "from", "global", "if", "import", "in", "inout", "is",
	"lambda", "let", "mut", "nonlocal", "not", "or", "out", "owned", "pass",
	"raise", "raises", "ref", "return", "struct", "trait", "try", "var",
	"while", "with", "yield",
	"lib",
}
