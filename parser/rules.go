package parser

// selfClosingTags is the HTML5 void element set: tags parsed as
// self-closing whether or not the markup carries an explicit slash.
var selfClosingTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// rawTextTags are elements whose content is captured literally up to
// the matching end tag and never re-tokenized.
var rawTextTags = map[string]bool{
	"script": true,
	"style":  true,
}

// pClosers are the block-level tags whose open tag implicitly closes
// an open p element (HTML5 optional end tags).
var pClosers = []string{
	"address", "article", "aside", "blockquote", "details", "div",
	"dl", "fieldset", "figcaption", "figure", "footer", "form",
	"h1", "h2", "h3", "h4", "h5", "h6", "header", "hr", "main",
	"menu", "nav", "ol", "p", "pre", "section", "table", "ul",
}

// optionalEndTags are elements whose end tag may be omitted; leaving
// one open when an ancestor closes is legal and not reported.
var optionalEndTags = map[string]bool{
	"body": true, "caption": true, "colgroup": true, "dd": true,
	"dt": true, "head": true, "html": true, "li": true, "optgroup": true,
	"option": true, "p": true, "rp": true, "rt": true, "tbody": true,
	"td": true, "tfoot": true, "th": true, "thead": true, "tr": true,
}

// closesPrevious maps an upcoming tag name to the set of open tags it
// implicitly closes when one of them is at the top of the hierarchy.
var closesPrevious = buildClosesPrevious()

func buildClosesPrevious() map[string]map[string]bool {
	m := map[string]map[string]bool{
		"li":       {"li": true},
		"dt":       {"dd": true, "dt": true},
		"dd":       {"dd": true, "dt": true},
		"option":   {"option": true},
		"optgroup": {"option": true, "optgroup": true},
		"tr":       {"tr": true, "td": true, "th": true},
		"td":       {"td": true, "th": true},
		"th":       {"td": true, "th": true},
		"tbody":    {"thead": true, "tbody": true, "tr": true, "td": true, "th": true},
		"tfoot":    {"thead": true, "tbody": true, "tr": true, "td": true, "th": true},
	}
	for _, tag := range pClosers {
		if m[tag] == nil {
			m[tag] = map[string]bool{}
		}
		m[tag]["p"] = true
	}
	return m
}
