package classify

import (
	"strings"
)

// Kind is the runtime shape of a member value, decided once per value.
type Kind int

const (
	KindUnknown   Kind = iota // type text is not "<class '...'>"
	KindPrimitive             // str, int, float, bool, bytes, bytearray
	KindContainer             // dict, list, tuple
	KindCallable              // function, method, closure
	KindClass                 // a class object (type name "type")
	KindModule                // an imported module
	KindOpaque                // an instance of any other class
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindContainer:
		return "container"
	case KindCallable:
		return "callable"
	case KindClass:
		return "class"
	case KindModule:
		return "module"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Tier orders members: primitives and containers first, then callables,
// then classes, then everything else.
func (k Kind) Tier() int {
	switch k {
	case KindPrimitive, KindContainer:
		return 1
	case KindCallable:
		return 2
	case KindClass:
		return 3
	default:
		return 4
	}
}

// Binding tells how a callable binds its first argument.
type Binding int

const (
	BindingNone        Binding = iota
	BindingClassMethod         // bound to the class, first argument is cls
)

var (
	primitiveTypes = map[string]bool{
		"str": true, "int": true, "float": true, "bool": true,
		"bytes": true, "bytearray": true,
	}
	containerTypes = map[string]bool{"dict": true, "list": true, "tuple": true}
	callableWords  = []string{"method", "function", "closure"}
)

// typeInfo is the memoised part of a classification: everything that
// depends on the type text alone.
type typeInfo struct {
	Name  string
	Kind  Kind
	Bound bool
}

// TypeName extracts "int" from "<class 'int'>". Text without quotes
// yields "".
func TypeName(typeText string) string {
	parts := strings.Split(typeText, "'")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func describe(typeText string) typeInfo {
	name := TypeName(typeText)
	info := typeInfo{Name: name, Bound: strings.Contains(typeText, "bound_method")}
	switch {
	case name == "type":
		info.Kind = KindClass
	case name == "module":
		info.Kind = KindModule
	case containsAny(typeText, callableWords):
		info.Kind = KindCallable
	case !strings.HasPrefix(typeText, "<class '"):
		info.Kind = KindUnknown
	case primitiveTypes[name]:
		info.Kind = KindPrimitive
	case containerTypes[name]:
		info.Kind = KindContainer
	default:
		info.Kind = KindOpaque
	}
	return info
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
