package service

import (
	"regexp"
	"strings"
)

// Known document extensions, longest variants first so the alternation never
// stops at a prefix (xlsx before xls, docx before doc, pptx before ppt).
const docExtensions = `(?:pdf|xlsx|xls|docx|doc|txt|csv|pptx|ppt)`

// CJK-aware filename body. \w alone misses Japanese document names such as
// 人事マニュアル.pdf.
const fileNameChars = `[\w\p{Han}\p{Hiragana}\p{Katakana}ー・]`

// Rule 1: explicit source labels. Longer labels listed first so 参考資料 wins
// over 参考 and 情報ソース over ソース. The whole label+value span is removed
// from the display text.
var labeledSourceRe = regexp.MustCompile(`(?m)(?:情報ソース|参考資料|参考文献|出典|参考|ソース)\s*[:：]\s*(.+)$`)

// Rule 2: quoted or bracketed filename carrying a known extension, one regex
// per quoting convention.
var quotedFilenameRes = []*regexp.Regexp{
	regexp.MustCompile(`「([^「」]+\.` + docExtensions + `)」`),
	regexp.MustCompile(`『([^『』]+\.` + docExtensions + `)』`),
	regexp.MustCompile(`"([^"]+\.` + docExtensions + `)"`),
	regexp.MustCompile(`'([^']+\.` + docExtensions + `)'`),
}

// Rule 3: quoted span without an extension requirement, but immediately
// followed by a "stated in / refer to" phrase. The trailing 複数の variant
// catches the "multiple 「X」" construction.
const narrativeTail = `(?:に記載|に記述|に載っ|に記録|を(?:ご)?参照|をご覧)`

var narrativeFilenameRes = []*regexp.Regexp{
	regexp.MustCompile(`「([^「」]+)」` + narrativeTail),
	regexp.MustCompile(`『([^『』]+)』` + narrativeTail),
	regexp.MustCompile(`"([^"]+)"` + narrativeTail),
	regexp.MustCompile(`'([^']+)'` + narrativeTail),
	regexp.MustCompile(`複数の「([^「」]+)」`),
}

// Rule 4: bare extensioned token bounded by connecting particles or
// punctuation, or followed by a connective phrase. RE2 has no lookarounds, so
// the boundaries are consumed and only the capture group is taken.
var inlineFilenameRe = regexp.MustCompile(
	`(?:^|[\s　、。（(「『])(` + fileNameChars + `+\.` + docExtensions + `)` +
		`(?:[\s　、。）)」』]|に記載|に記述|に載っ|に記録|について|を(?:ご)?参照|から|$)`)

// Rule 5: loose extensioned token with no surrounding-context requirement.
var looseFilenameRe = regexp.MustCompile(`(` + fileNameChars + `+\.` + docExtensions + `)`)

// Rule 6: any quoted span, used only when reference-indicating language is
// present elsewhere in the response.
var quotedContentRes = []*regexp.Regexp{
	regexp.MustCompile(`「([^「」]+)」`),
	regexp.MustCompile(`『([^『』]+)』`),
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`'([^']+)'`),
}

// referenceKeywords marks responses that claim to be grounded in some
// material even when no concrete filename was found.
var referenceKeywords = []string{
	"に記載",
	"に記述",
	"に載っ",
	"に記録",
	"参照",
	"ご覧",
	"に基づ",
	"によると",
	"によれば",
	"資料",
}

// genericSourcePlaceholder is emitted by rule 7 when keyword-indicative
// language exists but no quotable content does.
const genericSourcePlaceholder = "参考資料"

func containsReferenceKeyword(text string) bool {
	for _, kw := range referenceKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// collectMatches runs a rule's regexes in order and returns every first
// capture group, de-duplicated by exact string equality in first-seen order.
func collectMatches(text string, res []*regexp.Regexp) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
