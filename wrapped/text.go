package wrapped

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/unicode/norm"
)

var (
	urlRE    = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	spacesRE = regexp.MustCompile(`\s+`)
)

var englishStopwords = toSet([]string{
	"a", "an", "and", "are", "as", "at", "be", "been", "but", "by", "do",
	"for", "from", "had", "has", "have", "he", "her", "his", "how", "i",
	"if", "in", "is", "it", "its", "me", "my", "no", "not", "of", "on",
	"or", "our", "out", "she", "so", "that", "the", "their", "them",
	"then", "there", "they", "this", "to", "up", "us", "was", "we",
	"were", "what", "when", "where", "who", "why", "with", "you", "your",
	"ok", "lol",
})

var polishStopwords = toSet([]string{
	"w", "z", "na", "do", "po", "od", "za", "pod", "nad", "przy", "bez",
	"dla", "jak", "nie", "tak", "ze", "co", "czy", "ja", "ty", "on",
	"ona", "ono", "my", "wy", "oni", "one", "jest", "sa", "byc", "sie",
	"tez", "albo", "o", "u", "ale", "ej", "aha", "mhm", "bo", "to",
	"ten", "ta", "te", "tu", "tam", "juz", "jeszcze", "nic", "wszystko",
	"bardzo", "tylko", "wiec", "skoro", "czyli", "i", "oraz", "lub",
	"badz", "no", "ok", "dobra", "wlasnie", "gdzie", "kiedy", "kto",
	"ile", "czemu", "dlaczego", "choc", "mimo", "lecz", "aby", "zeby",
	"gdy", "gdyby", "jesli", "jezeli", "chyba", "moze", "wiem", "sobie",
	"mi", "mu", "jej", "nam", "wam", "im", "go", "nas", "was", "ich",
	"cie", "mnie", "tobie",
})

var polishDiacritics = map[rune]rune{
	'ą': 'a', 'ć': 'c', 'ę': 'e', 'ł': 'l', 'ń': 'n',
	'ó': 'o', 'ś': 's', 'ż': 'z', 'ź': 'z',
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// DetectPrimaryLanguage samples message text and returns the ISO 639-1 code of
// the conversation's dominant language ("" when undetectable). Only used to
// pick stopword sets; all scoring lexicons stay multilingual.
func DetectPrimaryLanguage(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		if !m.HasText() {
			continue
		}
		b.WriteString(m.Text)
		b.WriteByte(' ')
		if b.Len() > 20_000 {
			break
		}
	}
	if b.Len() == 0 {
		return ""
	}
	info := whatlanggo.Detect(b.String())
	return info.Lang.Iso6391()
}

// stopwordsForLanguage returns the stopword set for tokenization. English is
// always filtered; the detected primary language adds its own set on top.
func stopwordsForLanguage(iso6391 string) map[string]bool {
	switch iso6391 {
	case "pl":
		merged := make(map[string]bool, len(englishStopwords)+len(polishStopwords))
		for w := range englishStopwords {
			merged[w] = true
		}
		for w := range polishStopwords {
			merged[w] = true
		}
		return merged
	default:
		return englishStopwords
	}
}

// normalizeToken casefolds and strips diacritics so "Świetny" and "swietny"
// count as the same word.
func normalizeToken(token string) string {
	token = strings.ToLower(token)
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if mapped, ok := polishDiacritics[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		b.WriteRune(r)
	}
	decomposed := norm.NFKD.String(b.String())
	var out strings.Builder
	out.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

func normalizeForMatch(text string) string {
	return normalizeToken(text)
}

func splitWords(text string) []string {
	text = strings.ToLower(text)
	text = urlRE.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "_", " ")
	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)
	text = strings.TrimSpace(spacesRE.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}

// Tokenize lowercases, strips URLs and punctuation, and drops digits, short
// tokens, and the given stopword set.
func Tokenize(text string, stopwords map[string]bool) []string {
	var tokens []string
	for _, token := range splitWords(text) {
		if len([]rune(token)) < 2 {
			continue
		}
		if isDigits(token) {
			continue
		}
		if stopwords[token] || stopwords[normalizeToken(token)] {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

const vowelLetters = "aeiouy"

func hasVowel(token string) bool {
	return strings.ContainsAny(token, vowelLetters)
}

func hasConsonant(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) && !strings.ContainsRune(vowelLetters, r) {
			return true
		}
	}
	return false
}

// isNoiseToken flags normalized tokens too short or too degenerate to anchor
// a phrase (keysmashes, single repeated letters, vowelless shreds).
func isNoiseToken(token string) bool {
	runes := []rune(token)
	if len(runes) <= 2 {
		return true
	}
	distinct := make(map[rune]bool, len(runes))
	for _, r := range runes {
		distinct[r] = true
	}
	if len(runes) >= 3 && len(distinct) == 1 {
		return true
	}
	if len(runes) <= 3 && (!hasVowel(token) || !hasConsonant(token)) {
		return true
	}
	return false
}

// meaningfulPhrase reports whether an n-gram is worth counting: it must carry
// at least one real content word, and a two-word phrase must not end on a
// stopword (that is almost always a window cut mid-sentence).
func meaningfulPhrase(words []string, stopwords map[string]bool) bool {
	if len(words) == 0 {
		return false
	}
	isStop := func(w string) bool { return stopwords[normalizeToken(w)] }

	allShort := true
	var content []string
	for _, w := range words {
		normalized := normalizeToken(w)
		if len([]rune(normalized)) > 2 {
			allShort = false
		}
		if !isStop(w) {
			content = append(content, normalized)
		}
	}
	if allShort || len(content) == 0 {
		return false
	}

	anchored := false
	allNoise := true
	for _, token := range content {
		if !isNoiseToken(token) {
			allNoise = false
		}
		if len([]rune(token)) >= 3 && hasVowel(token) && hasConsonant(token) {
			anchored = true
		}
	}
	if allNoise || !anchored {
		return false
	}

	if len(words) == 2 && isStop(words[1]) {
		return false
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ExtractEmojis returns every emoji rune in text, in order, with duplicates.
func ExtractEmojis(text string) []string {
	var emojis []string
	for _, r := range text {
		if isEmojiRune(r) {
			emojis = append(emojis, string(r))
		}
	}
	return emojis
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F1E6 && r <= 0x1F1FF, // regional indicators
		r >= 0x1F300 && r <= 0x1F5FF,
		r >= 0x1F600 && r <= 0x1F64F,
		r >= 0x1F680 && r <= 0x1F6FF,
		r >= 0x1F700 && r <= 0x1F8FF,
		r >= 0x1F900 && r <= 0x1F9FF,
		r >= 0x1FA00 && r <= 0x1FAFF,
		r >= 0x2600 && r <= 0x26FF,
		r >= 0x2700 && r <= 0x27BF:
		return true
	}
	return false
}

// ExtractLinks returns every http(s)/www link in text.
func ExtractLinks(text string) []string {
	return urlRE.FindAllString(text, -1)
}
