package beans

import (
	"strings"
	"unicode"
)

// AttributeNameToPropertyName converts a hyphenated attribute name into a
// camel-cased property name: "transaction-manager" becomes
// "transactionManager". Names without a hyphen are returned unchanged.
func AttributeNameToPropertyName(attributeName string) string {
	if !strings.Contains(attributeName, "-") {
		return attributeName
	}
	var (
		b         strings.Builder
		upperNext bool
	)
	b.Grow(len(attributeName))
	for _, r := range attributeName {
		switch {
		case r == '-':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PropertyNameToAttributeName converts a camel-cased property name into its
// hyphenated attribute form: "transactionManager" becomes
// "transaction-manager". Every upper-case rune is lowered and prefixed with
// a hyphen.
func PropertyNameToAttributeName(propertyName string) string {
	var b strings.Builder
	b.Grow(len(propertyName) + 4)
	for _, r := range propertyName {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// IsValidPropertyName reports whether name is a valid bean property name: it
// starts lower-case, unless its first two runes are both upper-case ("URL").
func IsValidPropertyName(name string) bool {
	r := []rune(name)
	switch {
	case len(r) == 0:
		return false
	case len(r) == 1:
		return !unicode.IsUpper(r[0])
	case unicode.IsUpper(r[0]) && unicode.IsLower(r[1]):
		return false
	}
	return true
}

// PrepareMatchString strips a leading quote left over from an attribute
// value that is still being typed.
func PrepareMatchString(s string) string {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, `'`) {
		return s[1:]
	}
	return s
}
