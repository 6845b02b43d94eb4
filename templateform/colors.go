package templateform

import "strings"

type NamedColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// colorDictionary is the fixed name <-> hex table offered by the color
// inputs. green and lime share a hex; the reverse lookup returns the later
// entry, lime.
var colorDictionary = []NamedColor{
	{"red", "#FF0000"},
	{"blue", "#0000FF"},
	{"green", "#00FF00"},
	{"yellow", "#FFFF00"},
	{"black", "#000000"},
	{"white", "#FFFFFF"},
	{"purple", "#800080"},
	{"orange", "#FFA500"},
	{"pink", "#FFC0CB"},
	{"brown", "#A52A2A"},
	{"gray", "#808080"},
	{"cyan", "#00FFFF"},
	{"magenta", "#FF00FF"},
	{"lime", "#00FF00"},
	{"maroon", "#800000"},
	{"olive", "#808000"},
	{"navy", "#000080"},
	{"teal", "#008080"},
	{"silver", "#C0C0C0"},
	{"gold", "#FFD700"},
}

var (
	hexByName = map[string]string{}
	nameByHex = map[string]string{}
)

func init() {
	for _, c := range colorDictionary {
		hexByName[c.Name] = c.Hex
		nameByHex[strings.ToLower(c.Hex)] = c.Name
	}
}

// LookupHex finds the hex of a dictionary color name, ignoring case.
func LookupHex(name string) (string, bool) {
	hex, ok := hexByName[strings.ToLower(name)]
	return hex, ok
}

// LookupColorName finds the dictionary name of a hex code, ignoring case.
func LookupColorName(hex string) (string, bool) {
	name, ok := nameByHex[strings.ToLower(hex)]
	return name, ok
}

// Dictionary returns the color table in display order.
func Dictionary() []NamedColor {
	out := make([]NamedColor, len(colorDictionary))
	copy(out, colorDictionary)
	return out
}
