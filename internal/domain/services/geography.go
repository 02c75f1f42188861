package services

import (
	"regexp"
	"strings"
)

const (
	notLetter  = `(?:[^\p{L}]|$)`
	wordStart  = `(?:^|[^\p{L}])`
	cityPrefix = wordStart + `(?:м\.|міст[оа])\s*`
)

func settlement(names ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?:м\.|міст[оа]|смт\.?|селище|с\.)\s*(?:` + strings.Join(names, "|") + `)` + notLetter)
}

func region(names ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?:` + strings.Join(names, "|") + `)`)
}

// Markers for one territory. A region marker names the oblast or republic,
// a settlement marker names an occupied city or town inside it.
type territory struct {
	regions     []*regexp.Regexp
	settlements []*regexp.Regexp
}

var (
	crimea = territory{
		regions: []*regexp.Regexp{
			region(wordStart + `(?:ар|автономн(?:а|ої)\s*республік[аи]|республік[аи])\s*крим`),
			region(`крим(?:ськ(?:ий|а|ого|ої))?\s*(?:обл|півостр)`),
			region(wordStart + `крим` + notLetter),
			region(cityPrefix + `севастопол`),
		},
	}
	donetsk = territory{
		regions: []*regexp.Regexp{
			region(`донецьк(?:а|ої|ій)\s*обл`, `днр`),
		},
		settlements: []*regexp.Regexp{
			settlement(`донецьк`, `горлівк[аи]`, `макіївк[аи]`, `єнакієве`, `харцизьк`, `торез`,
				`чистякове`, `сніжне`, `шахтарськ`, `ясинувата`, `дебальцеве`, `амвросіївк[аи]`,
				`іловайськ`, `докучаєвськ`, `новоазовськ`, `старобешеве`, `тельманове`, `кіровське`,
				`жданівк[аи]`, `зугрес`, `моспине`),
		},
	}
	luhansk = territory{
		regions: []*regexp.Regexp{
			region(`луганськ(?:а|ої|ій)\s*обл`, `лнр`),
		},
		settlements: []*regexp.Regexp{
			settlement(`луганськ`, `алчевськ`, `антрацит`, `брянк[аи]`, `кіровськ`, `красний луч`,
				`хрустальний`, `ровеньки`, `свердловськ`, `довжанськ`, `стаханов`, `кадіївк[аи]`,
				`краснодон`, `сорокине`, `перевальськ`, `лутугине`, `молодогвардійськ`, `суходільськ`),
		},
	}
)

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// inRegion requires only a region-level marker.
func (t territory) inRegion(address string) bool {
	return anyMatch(t.regions, address)
}

// inOccupiedPart requires both a region-level and a settlement-level marker.
func (t territory) inOccupiedPart(address string) bool {
	return anyMatch(t.regions, address) && anyMatch(t.settlements, address)
}

type geoHits struct {
	crimea, donetsk, luhansk bool
}

func classifyAddresses(addresses []string) geoHits {
	var hits geoHits
	for _, a := range addresses {
		a = strings.ToLower(a)
		hits.crimea = hits.crimea || crimea.inRegion(a)
		hits.donetsk = hits.donetsk || donetsk.inOccupiedPart(a)
		hits.luhansk = hits.luhansk || luhansk.inOccupiedPart(a)
	}
	return hits
}
