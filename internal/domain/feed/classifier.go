package feed

import "strings"

// Classifier maps a fund name to its category. Implementations are
// replaceable policy: the default matches keywords, a richer one could look
// up real fund metadata.
type Classifier interface {
	Classify(fundName string) Category
}

// keywordRule binds a category to the substrings that mark it.
type keywordRule struct {
	category Category
	keywords []string
}

// KeywordClassifier classifies funds by name substrings. Rules are checked
// in order; the first match wins.
type KeywordClassifier struct {
	rules []keywordRule
}

// NewKeywordClassifier builds the default rule table. Money-market and bond
// funds are matched before QDII so that, say, an overseas bond fund keeps
// its zero subscription fee profile.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []keywordRule{
			{CategoryMoneyMarket, []string{"货币"}},
			{CategoryBond, []string{"债"}},
			{CategoryQDII, []string{"QDII", "纳斯达克", "油气", "黄金", "原油"}},
			{CategoryIndex, []string{"指数", "LOF"}},
		},
	}
}

// Classify returns the category for a fund name, defaulting to equity.
func (c *KeywordClassifier) Classify(fundName string) Category {
	for _, rule := range c.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(fundName, kw) {
				return rule.category
			}
		}
	}
	return CategoryEquity
}
