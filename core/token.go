package skate

import "strings"

// Tokenize splits input into tokens. Parentheses always stand alone; every
// other token is delimited by whitespace only.
func Tokenize(input string) []string {
	input = strings.ReplaceAll(input, "(", " ( ")
	input = strings.ReplaceAll(input, ")", " ) ")
	return strings.Fields(input)
}
