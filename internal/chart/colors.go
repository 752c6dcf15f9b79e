package chart

import colorful "github.com/lucasb-eyer/go-colorful"

// randomColors returns n random, reasonably distinct hex colors ("#rrggbb").
// A new set is generated on every call.
func randomColors(n int) []string {
	if n <= 0 {
		return nil
	}
	palette := colorful.FastHappyPalette(n)
	out := make([]string, n)
	for i, c := range palette {
		out[i] = c.Hex()
	}
	return out
}
