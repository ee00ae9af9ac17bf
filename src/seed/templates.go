package seed

import (
	"sort"
	"strings"

	"lifegrid/src/universe"
)

//Template is the named built-in pattern
type Template struct {
	Name  string
	Descr string
	Text  string
}

var templates = map[string]Template{}

func init() {
	for _, t := range []Template{
		{"block", "2x2 still life", `
 **
 **`},
		{"blinker", "period 2 oscillator", `

 ***`},
		{"glider", "diagonal spaceship", `
  *
   *
 ***`},
		{"sample", "block next to a small pattern", `

 **
 ** *
   ***`},
		{"rpentomino", "methuselah, stabilizes after 1103 generations", `
  **
 **
  *`},
		{"gosper", "Gosper glider gun", `
                          *
                        * *
              **      **            **
             *   *    **            **
  **        *     *   **
  **        *   * **    * *
            *     *       *
             *   *
              **`},
	} {
		AddTemplate(t)
	}
}

//AddTemplate registers the pattern, the leading newline of the text is ignored
func AddTemplate(t Template) {
	templates[t.Name] = t
}

//TemplateNames returns sorted names of the registered patterns
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for k := range templates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//FromTemplate decodes the registered pattern, ok is false for unknown names
func FromTemplate(name string) (s universe.LiveSet, ok bool) {
	t, ok := templates[name]
	if !ok {
		return universe.LiveSet{}, false
	}
	return Decode(strings.Split(strings.TrimPrefix(t.Text, "\n"), "\n")), true
}
