package service

import (
	"regexp"
	"strings"
)

// ── 传真号 → 传真网关邮箱 ──

// DefaultFaxEmailDomain 默认传真网关域名
const DefaultFaxEmailDomain = "fax.vonagebusiness.com"

var nonDigitRe = regexp.MustCompile(`[^0-9]`)

// 兼容历史数据：带括号的 1(XXX)XXXXXXX 与纯数字 1XXXXXXXXXX 两种格式均视为合法
var vonageEmailRe = regexp.MustCompile(`^1(?:\(\d{3}\)\d{7}|\d{10})@fax\.vonagebusiness\.com$`)

// NormalizeFaxDigits 将任意传真文本归一化为 10 位号码，无法归一化时返回空
//
// 少于 10 位直接拒绝；11 位且以 1 开头时去掉国家码；更长的取后 10 位。
func NormalizeFaxDigits(fax string) string {
	digits := nonDigitRe.ReplaceAllString(fax, "")
	if len(digits) < 10 {
		return ""
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	if len(digits) != 10 {
		return ""
	}
	return digits
}

// ToVonageEmail 生成传真网关地址 "1" + 10 位号码 + "@" + domain
// 号码无法归一化时返回空
func ToVonageEmail(fax, domain string) string {
	digits := NormalizeFaxDigits(fax)
	if digits == "" {
		return ""
	}
	if domain == "" {
		domain = DefaultFaxEmailDomain
	}
	return "1" + digits + "@" + domain
}

// IsValidVonageEmail 校验传真网关地址（两种历史格式均接受）
func IsValidVonageEmail(s string) bool {
	return vonageEmailRe.MatchString(strings.TrimSpace(s))
}
