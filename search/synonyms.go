package search

import "strings"

// SynonymEntry groups interchangeable surface forms under a canonical label.
type SynonymEntry struct {
	Canonical string
	Forms     []string
}

// SynonymTable is an ordered list of synonym groups. Order matters: it fixes
// the order in which canonical labels are appended to extracted keywords.
type SynonymTable []SynonymEntry

// NewSynonymTable lowercases every form, drops duplicates and makes sure each
// canonical label is listed among its own forms.
func NewSynonymTable(entries ...SynonymEntry) SynonymTable {
	table := make(SynonymTable, 0, len(entries))
	for _, e := range entries {
		canonical := strings.ToLower(strings.TrimSpace(e.Canonical))
		if canonical == "" {
			continue
		}
		forms := newOrderedSet()
		forms.add(canonical)
		for _, f := range e.Forms {
			forms.add(strings.ToLower(strings.TrimSpace(f)))
		}
		table = append(table, SynonymEntry{Canonical: canonical, Forms: forms.items()})
	}
	return table
}

// related reports whether a and b match by substring in either direction.
func related(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// matchesEntry reports whether keyword relates to any surface form of e.
func (e SynonymEntry) matchesEntry(keyword string) bool {
	for _, form := range e.Forms {
		if related(keyword, form) {
			return true
		}
	}
	return false
}

// DefaultSynonyms is the storefront vocabulary: colors first, then garments,
// occasions and styles. Marketing tags such as "femme-lunch" or "balleric" are
// merchandising decisions and are kept as they are.
var DefaultSynonyms = NewSynonymTable(
	SynonymEntry{"red", []string{"scarlet", "crimson", "ruby", "cherry", "burgundy", "maroon", "wine", "oxblood"}},
	SynonymEntry{"pink", []string{"rose", "blush", "fuchsia", "magenta", "salmon", "coral"}},
	SynonymEntry{"blue", []string{"navy", "azure", "cobalt", "sapphire", "teal", "turquoise", "denim", "sky blue"}},
	SynonymEntry{"green", []string{"emerald", "olive", "mint", "khaki", "forest"}},
	SynonymEntry{"yellow", []string{"mustard", "lemon", "canary", "gold", "golden"}},
	SynonymEntry{"purple", []string{"violet", "lilac", "lavender", "plum", "mauve"}},
	SynonymEntry{"orange", []string{"amber", "peach", "apricot"}},
	SynonymEntry{"brown", []string{"chocolate", "coffee", "camel", "caramel", "mocha", "cognac"}},
	SynonymEntry{"black", []string{"onyx", "ebony", "charcoal"}},
	SynonymEntry{"white", []string{"ivory", "cream", "pearl", "off-white", "snow"}},
	SynonymEntry{"nude", []string{"beige", "champagne", "taupe", "stone"}},
	SynonymEntry{"silver", []string{"metallic", "chrome", "platinum", "grey", "gray"}},
	SynonymEntry{"dress", []string{"gown", "frock", "maxi", "midi", "mini dress", "sundress"}},
	SynonymEntry{"top", []string{"blouse", "shirt", "t-shirt", "camisole", "crop top", "tunic"}},
	SynonymEntry{"skirt", []string{"pencil skirt", "pleated", "a-line"}},
	SynonymEntry{"trousers", []string{"pants", "jeans", "slacks", "chinos", "joggers", "leggings"}},
	SynonymEntry{"jacket", []string{"blazer", "coat", "cardigan", "bomber", "kimono", "outerwear"}},
	SynonymEntry{"two-piece", []string{"co-ord", "matching set", "jumpsuit"}},
	SynonymEntry{"wedding", []string{"bridal", "bride", "bridesmaid", "reception", "engagement"}},
	SynonymEntry{"party", []string{"birthday", "celebration", "night out", "club", "cocktail"}},
	SynonymEntry{"formal", []string{"evening", "gala", "black tie", "elegant", "ceremony"}},
	SynonymEntry{"casual", []string{"everyday", "relaxed", "weekend", "lounge", "comfy"}},
	SynonymEntry{"office", []string{"work", "corporate", "business", "professional"}},
	SynonymEntry{"brunch", []string{"femme-lunch", "lunch", "daytime", "garden party"}},
	SynonymEntry{"ballet", []string{"balleric", "ballerina", "ballet flat", "tutu"}},
	SynonymEntry{"vacation", []string{"holiday", "beach", "resort", "summer", "travel"}},
	SynonymEntry{"traditional", []string{"ankara", "aso ebi", "agbada", "kaftan", "adire"}},
)
