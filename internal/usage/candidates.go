package usage

import (
	"strconv"
	"strings"
)

// candidate is one place a firmware revision may keep a field. lookup
// returns the raw value and whether the location exists at all.
type candidate struct {
	desc   string
	lookup func(root *node) (string, bool)
}

// field binds a Reading field to its ordered candidates.
type field struct {
	name       string
	percentage bool
	candidates []candidate
	assign     func(*Reading, int)
}

// Extend these lists when a new firmware sample puts a value elsewhere.
// Earlier entries win. TotalImpressions also appears under scanner, copy and
// fax subunits, so pages are only read from PrinterSubunit.
var fields = []field{
	{
		name: FieldPagesPrinted,
		candidates: []candidate{
			attrFiltered("PrinterSubunit/TotalImpressions[@PEID]", "PEID", "PrinterSubunit", "TotalImpressions"),
			textAt("PrinterSubunit", "TotalImpressions"),
		},
		assign: func(r *Reading, v int) { r.PagesPrinted = v },
	},
	{
		name: FieldSubscriptionImpressions,
		candidates: []candidate{
			textAt("Subscription", "ImpressionsCount"),
			textAt("PrinterSubunit", "SubscriptionImpressions"),
			textAt("SubscriptionImpressions"),
		},
		assign: func(r *Reading, v int) { r.SubscriptionImpressions = v },
	},
	{
		name:       FieldColourInkLevel,
		percentage: true,
		candidates: inkCandidates("CyanMagentaYellow", "Tri-color"),
		assign:     func(r *Reading, v int) { r.ColourInkLevel = v },
	},
	{
		name:       FieldBlackInkLevel,
		percentage: true,
		candidates: inkCandidates("Black"),
		assign:     func(r *Reading, v int) { r.BlackInkLevel = v },
	},
}

// textAt yields the first element reached by path whose text is an integer.
func textAt(path ...string) candidate {
	return candidate{
		desc: strings.Join(path, "/"),
		lookup: func(root *node) (string, bool) {
			return firstInteger(root.findAll(path...), func(n *node) string { return n.Text() })
		},
	}
}

// attrFiltered is textAt restricted to elements carrying attr.
func attrFiltered(desc, attr string, path ...string) candidate {
	return candidate{
		desc: desc,
		lookup: func(root *node) (string, bool) {
			var matched []*node
			for _, n := range root.findAll(path...) {
				if _, ok := n.attrs[attr]; ok {
					matched = append(matched, n)
				}
			}
			return firstInteger(matched, func(n *node) string { return n.Text() })
		},
	}
}

// inkCandidates lists the consumable accessors for each marker colour name,
// colour names in order, accessors in order within a colour.
func inkCandidates(colours ...string) []candidate {
	var out []candidate
	for _, colour := range colours {
		out = append(out,
			consumableText(colour, "ConsumableRawPercentageLevelRemaining"),
			consumableText(colour, "ConsumablePercentageLevelRemaining"),
			consumableAttr(colour, "PercentageLevelRemaining"),
		)
	}
	return out
}

func consumableText(colour, element string) candidate {
	return candidate{
		desc: "Consumable[MarkerColor=" + colour + "]/" + element,
		lookup: func(root *node) (string, bool) {
			var matched []*node
			for _, c := range consumables(root, colour) {
				if n := c.child(element); n != nil {
					matched = append(matched, n)
				}
			}
			return firstInteger(matched, func(n *node) string { return n.Text() })
		},
	}
}

func consumableAttr(colour, attr string) candidate {
	return candidate{
		desc: "Consumable[MarkerColor=" + colour + "]/@" + attr,
		lookup: func(root *node) (string, bool) {
			return firstInteger(consumables(root, colour), func(n *node) string {
				return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n.attrs[attr]), "%"))
			})
		},
	}
}

func consumables(root *node, colour string) []*node {
	var out []*node
	for _, c := range root.findAll("Consumable") {
		marker := c.child("MarkerColor")
		if marker == nil {
			continue
		}
		if strings.EqualFold(marker.Text(), colour) {
			out = append(out, c)
		}
	}
	return out
}

// firstInteger returns the first value that parses as an integer. Signs are
// kept so the parser can reject negatives as out of range. Present but
// unparsable values are skipped so the next candidate gets its turn.
func firstInteger(nodes []*node, value func(*node) string) (string, bool) {
	for _, n := range nodes {
		raw := value(n)
		if _, err := strconv.ParseInt(raw, 10, 32); err == nil {
			return raw, true
		}
	}
	return "", false
}
