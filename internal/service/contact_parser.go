package service

import (
	"regexp"
	"strings"
)

// ── 联系方式解析 ──
//
// 从表格 "Contact Information" 等自由文本中提取电话与传真，输出统一格式 NNN-NNN-NNNN。
// 未匹配时返回空字符串，从不返回错误。

var faxPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Ff][Aa][Xx]\s*(?:[Nn]umber)?\s*:?\s*\(?\s*(\d{3})\s*\)?\s*[-.\s]*(\d{3})\s*[-.\s]*(\d{4})`),
	regexp.MustCompile(`[Ff][Aa][Xx]\s*:?\s*(\d{3})\s*[-.\s]*(\d{3})\s*[-.\s]*(\d{4})`),
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:[Pp]hone|[Pp][Hh]|[Tt]el|[Oo]ffice)\s*:?\s*\(?\s*(\d{3})\s*\)?\s*[-.\s]*(\d{3})\s*[-.\s]*(\d{4})`),
	regexp.MustCompile(`\((\d{3})\)\s*(\d{3})\s*[-.\s]*(\d{4})`),
	regexp.MustCompile(`(\d{3})\s*[-.\s](\d{3})\s*[-.\s](\d{4})`),
}

// ParseFax 提取带 "fax" 标签的号码；无标签的号码不会被识别为传真
func ParseFax(text string) string {
	if text == "" {
		return ""
	}
	return firstNumber(faxPatterns, text)
}

// ParsePhone 提取电话号码
// 先去掉所有含 "fax"（不区分大小写）的行，避免把传真号当作电话；全部被去掉时退回原文
func ParsePhone(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if !strings.Contains(strings.ToLower(l), "fax") {
			kept = append(kept, l)
		}
	}
	if len(kept) > 0 {
		text = strings.Join(kept, "\n")
	}

	return firstNumber(phonePatterns, text)
}

func firstNumber(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1] + "-" + m[2] + "-" + m[3]
		}
	}
	return ""
}

// ── 医生名单解析 ──

var (
	providerHeaderRe = regexp.MustCompile(`^[A-Z]+['\x{2019}]?s?\s*:?\s*$`)
	providerNumberRe = regexp.MustCompile(`^\d+[.)]\s*`)
)

// ParseProviderNames 解析多行医生名单单元格
//
// 去掉空行与 "PA's:"、"NPs:" 这类分类标题，去掉 "1. " / "2) " 编号和 "N-" 前缀，
// 保留长度大于 1 的行，顺序不变。
func ParseProviderNames(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || providerHeaderRe.MatchString(line) {
			continue
		}
		line = providerNumberRe.ReplaceAllString(line, "")
		line = strings.TrimPrefix(line, "N-")
		line = strings.TrimSpace(line)
		if len([]rune(line)) > 1 {
			names = append(names, line)
		}
	}
	return names
}

// ── 邮编 ──

var zipRe = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

// ExtractZip 返回地址中第一个 5 位邮编（支持 ZIP+4），没有则为空
func ExtractZip(address string) string {
	if m := zipRe.FindStringSubmatch(address); m != nil {
		return m[1]
	}
	return ""
}
