package tree

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortNatural orders nodes by label, comparing digit runs numerically so
// "run2.py" comes before "run10.py".
func SortNatural(nodes []*Node) {
	c := collate.New(language.Und, collate.Numeric)
	sort.SliceStable(nodes, func(i, j int) bool {
		return c.CompareString(nodes[i].Label, nodes[j].Label) < 0
	})
}
