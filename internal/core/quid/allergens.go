package quid

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// allergenKeywords 過敏原標籤對應的德文關鍵字
var allergenKeywords = map[string][]string{
	"gluten":          {"weizen", "roggen", "gerste", "hafer", "dinkel", "kamut"},
	"krebstiere":      {"krebs", "garnele", "hummer", "krabbe", "shrimp"},
	"eier":            {"eier", "eigelb", "eiweiß", "vollei", "hühnerei"},
	"fisch":           {"fisch"},
	"erdnuesse":       {"erdnuss", "erdnüsse"},
	"soja":            {"soja"},
	"milch":           {"milch", "laktose", "lactose", "sahne", "butter", "käse", "molke", "joghurt"},
	"schalenfruechte": {"mandel", "haselnuss", "walnuss", "cashew", "pekannuss", "paranuss", "pistazie", "macadamia"},
	"sellerie":        {"sellerie"},
	"senf":            {"senf"},
	"sesam":           {"sesam"},
	"sulfite":         {"sulfit", "schwefeldioxid", "disulfit"},
	"lupinen":         {"lupine"},
	"weichtiere":      {"muschel", "schnecke", "tintenfisch", "weichtier"},
}

var allergenAliases = map[string]string{
	"crustaceans":    "krebstiere",
	"eggs":           "eier",
	"egg":            "eier",
	"fish":           "fisch",
	"peanuts":        "erdnuesse",
	"erdnüsse":       "erdnuesse",
	"soy":            "soja",
	"soybeans":       "soja",
	"milk":           "milch",
	"nuts":           "schalenfruechte",
	"schalenfrüchte": "schalenfruechte",
	"celery":         "sellerie",
	"mustard":        "senf",
	"sesame":         "sesam",
	"sulphites":      "sulfite",
	"sulfites":       "sulfite",
	"lupin":          "lupinen",
	"molluscs":       "weichtiere",
}

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

// AllergenKeywords 展開過敏原標籤，標籤本身也算關鍵字
func AllergenKeywords(tag string) []string {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" {
		return nil
	}
	key := t
	if alias, ok := allergenAliases[t]; ok {
		key = alias
	}
	keywords := []string{t}
	for _, kw := range allergenKeywords[key] {
		keywords = appendUnique(keywords, kw)
	}
	return keywords
}

// EmphasizeAllergens 將文字中符合過敏原關鍵字的片段轉為大寫（不分大小寫比對）
func EmphasizeAllergens(text string, tags []string) string {
	if text == "" {
		return text
	}
	// Caser 不可跨 goroutine 共用
	upper := cases.Upper(language.German)
	for _, tag := range tags {
		for _, kw := range AllergenKeywords(tag) {
			text = keywordPattern(kw).ReplaceAllStringFunc(text, upper.String)
		}
	}
	return text
}

func keywordPattern(kw string) *regexp.Regexp {
	patternMu.RLock()
	re, ok := patternCache[kw]
	patternMu.RUnlock()
	if ok {
		return re
	}
	re = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw))
	patternMu.Lock()
	patternCache[kw] = re
	patternMu.Unlock()
	return re
}

func splitAids(aids string) []string {
	var out []string
	for _, part := range strings.Split(aids, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AggregateSources 由頂層原料清單彙整過敏原與加工助劑，並記錄各自的來源原料
func AggregateSources(ingredients []Ingredient) (allergens, aids []string, allergenSources, aidSources []SourceAttribution) {
	allergenIdx := map[string]int{}
	aidIdx := map[string]int{}

	add := func(idx map[string]int, list *[]SourceAttribution, key, source string) {
		i, ok := idx[key]
		if !ok {
			i = len(*list)
			idx[key] = i
			*list = append(*list, SourceAttribution{Name: key})
		}
		(*list)[i].Sources = appendUnique((*list)[i].Sources, source)
	}

	for _, ing := range ingredients {
		source := ing.DisplayName()
		for _, tag := range ing.Allergens {
			if t := strings.TrimSpace(tag); t != "" {
				add(allergenIdx, &allergenSources, t, source)
			}
		}
		for _, aid := range splitAids(ing.ProcessingAids) {
			add(aidIdx, &aidSources, aid, source)
		}
	}

	allergens = make([]string, 0, len(allergenSources))
	for _, s := range allergenSources {
		allergens = append(allergens, s.Name)
	}
	aids = make([]string, 0, len(aidSources))
	for _, s := range aidSources {
		aids = append(aids, s.Name)
	}
	if allergenSources == nil {
		allergenSources = []SourceAttribution{}
	}
	if aidSources == nil {
		aidSources = []SourceAttribution{}
	}
	return allergens, aids, allergenSources, aidSources
}
