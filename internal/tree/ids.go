package tree

// IDSeparator joins the script path and the dotted name in node ids.
// It does not occur in file paths.
const IDSeparator = "|"

// ScriptID returns the id of a script node
func ScriptID(script string) string {
	return script
}

// NameID returns the id of a library, testbench or test case node
func NameID(script, name string) string {
	return script + IDSeparator + name
}

