package format

import "strings"

var asciiReplacements = map[rune]rune{
	'ä': 'a', 'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a',
	'Ä': 'A', 'À': 'A', 'Á': 'A', 'Â': 'A', 'Ã': 'A',
	'ë': 'e', 'è': 'e', 'é': 'e', 'ê': 'e',
	'Ë': 'E', 'È': 'E', 'É': 'E', 'Ê': 'E',
	'ï': 'i', 'ì': 'i', 'í': 'i', 'î': 'i',
	'Ï': 'I', 'Ì': 'I', 'Í': 'I', 'Î': 'I',
	'ö': 'o', 'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o',
	'Ö': 'O', 'Ò': 'O', 'Ó': 'O', 'Ô': 'O', 'Õ': 'O',
	'ü': 'u', 'ù': 'u', 'ú': 'u', 'û': 'u',
	'Ü': 'U', 'Ù': 'U', 'Ú': 'U', 'Û': 'U',
	'ß': 's',
	'ç': 'c', 'Ç': 'C',
	'ñ': 'n', 'Ñ': 'N',
}

// Transliterate maps every rune above 0x7F through the fixed table; runes
// without an entry become '?'.
func Transliterate(text string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x7F {
			return r
		}
		if repl, ok := asciiReplacements[r]; ok {
			return repl
		}
		return '?'
	}, text)
}
