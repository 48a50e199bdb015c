package service

import (
	"regexp"
	"strings"

	"referral-outreach/backend/internal/model"
)

// locationRule 关键词规则，按顺序匹配，先命中先返回
type locationRule struct {
	keywords []string
	category string
}

var locationRules = []locationRule{
	{[]string{"HUNTSVILLE"}, model.LocationHuntsville},
	{[]string{"WOODLANDS", "THE WOODLANDS"}, model.LocationWoodlands},
	{[]string{"CONROE", "WILLIS", "MAGNOLIA"}, model.LocationWoodlands},
	{[]string{"SPRING", "TOMBALL"}, model.LocationWoodlands},
	{[]string{"MADISONVILLE", "ANDERSON", "CROCKETT"}, model.LocationHuntsville},
	{[]string{"TRINITY", "CENTERVILLE", "LIVINGSTON"}, model.LocationHuntsville},
}

var fiveDigitRe = regexp.MustCompile(`\b(\d{5})\b`)

// LocationClassifier 地址 → 地区分类（Huntsville / Woodlands / Other）
type LocationClassifier struct {
	huntsvilleZips map[string]struct{}
	woodlandsZips  map[string]struct{}
}

// NewLocationClassifier 使用配置的邮编白名单创建分类器
func NewLocationClassifier(huntsvilleZips, woodlandsZips []string) *LocationClassifier {
	return &LocationClassifier{
		huntsvilleZips: toSet(huntsvilleZips),
		woodlandsZips:  toSet(woodlandsZips),
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.TrimSpace(it)] = struct{}{}
	}
	return set
}

// Classify 依次匹配城市关键词、邮编白名单，均未命中返回 Other
func (c *LocationClassifier) Classify(address string) string {
	if strings.TrimSpace(address) == "" {
		return model.LocationOther
	}

	upper := strings.ToUpper(address)
	for _, rule := range locationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(upper, kw) {
				return rule.category
			}
		}
	}

	// 每个邮编先查 Huntsville 再查 Woodlands
	for _, m := range fiveDigitRe.FindAllStringSubmatch(address, -1) {
		zip := m[1]
		if _, ok := c.huntsvilleZips[zip]; ok {
			return model.LocationHuntsville
		}
		if _, ok := c.woodlandsZips[zip]; ok {
			return model.LocationWoodlands
		}
	}

	return model.LocationOther
}
