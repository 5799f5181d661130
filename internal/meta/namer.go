package meta

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsGetterName reports whether a method name follows the getter convention
// (GetX or IsX with a non-empty suffix).
func IsGetterName(name string) bool {
	return (strings.HasPrefix(name, "Get") && len(name) > 3) ||
		(strings.HasPrefix(name, "Is") && len(name) > 2)
}

// IsSetterName reports whether a method name follows the setter convention
// (SetX with a non-empty suffix).
func IsSetterName(name string) bool {
	return strings.HasPrefix(name, "Set") && len(name) > 3
}

// IsAccessorName reports whether a method name follows either accessor
// convention.
func IsAccessorName(name string) bool {
	return IsGetterName(name) || IsSetterName(name)
}

// MethodToProperty derives a property name from an accessor method name.
//
// The prefix (Get/Is/Set) is stripped and the first letter of the remainder
// is lower-cased, unless the second letter is also upper-case, in which case
// the original casing is preserved:
//
//	GetName → name
//	IsActive → active
//	GetURL → URL
//
// Returns false if the name follows neither convention.
func MethodToProperty(name string) (string, bool) {
	switch {
	case strings.HasPrefix(name, "Is") && len(name) > 2:
		name = name[2:]
	case strings.HasPrefix(name, "Get") && len(name) > 3:
		name = name[3:]
	case strings.HasPrefix(name, "Set") && len(name) > 3:
		name = name[3:]
	default:
		return "", false
	}
	return decapitalize(name), true
}

// decapitalize lower-cases the leading rune unless the second rune is also
// upper-case (initialisms like URL keep their casing).
func decapitalize(name string) string {
	first, firstSize := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}
	if rest := name[firstSize:]; rest != "" {
		second, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsUpper(second) {
			return name
		}
	}
	return string(unicode.ToLower(first)) + name[firstSize:]
}
