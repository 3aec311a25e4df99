package schema

// reserved holds Go's reserved words and predeclared identifiers that would
// collide with a generated field/type/message name. Collisions are resolved
// by prefixing with `_`.
var reserved = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
	// predeclared identifiers worth avoiding as field/type names too.
	"string": true, "error": true, "int": true, "bool": true, "byte": true, "len": true,
}

// Rename returns name unchanged unless it collides with a Go reserved word
// or predeclared identifier, in which case it returns "_"+name.
func Rename(name string) string {
	if reserved[name] {
		return "_" + name
	}
	return name
}
