package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Heuristic is the deterministic local backend: a weighted PL/EN lexicon with
// negation, intensifier, emoticon, and emoji handling. No external
// dependencies, no I/O, same output for the same input every time.
type Heuristic struct{}

func NewHeuristic() Heuristic { return Heuristic{} }

func (Heuristic) Name() string { return BackendHeuristic }

func (h Heuristic) ScoreBatch(_ context.Context, texts []string) ([]Score, error) {
	scores := make([]Score, len(texts))
	for i, text := range texts {
		value := h.scoreText(text)
		scores[i] = Score{
			Value:      value,
			Label:      PolarityLabel(value),
			Confidence: math.Min(math.Abs(value), 1.0),
			Source:     BackendHeuristic,
		}
	}
	return scores, nil
}

var lexicon = map[string]float64{
	// Positive.
	"super": 1.4, "ok": 0.8, "dobry": 1.2, "swietny": 1.6, "fajny": 1.1,
	"kocham": 2.0, "lubi": 0.9, "lubie": 0.9, "dzieki": 1.1, "dziekuje": 1.1,
	"spoko": 1.0, "wow": 1.2, "git": 1.1, "cool": 1.2, "nice": 1.1,
	"great": 1.5, "awesome": 1.7, "love": 1.6, "happy": 1.3, "perfect": 1.6,
	"yes": 0.7, "yup": 0.6, "thx": 0.8, "thanks": 1.0, "xd": 0.5, "lol": 0.6,
	"wspanialy": 1.8, "cudowny": 1.7, "fantastyczny": 1.6, "niesamowity": 1.6,
	"rewelacja": 1.7, "rewelacyjny": 1.6, "extra": 1.1, "fajnie": 1.0,
	"pieknie": 1.2, "uroczo": 1.1, "slodko": 1.1, "kochany": 1.4,
	"uwielbiam": 1.9, "dumna": 1.2, "dumny": 1.2, "wspaniale": 1.6,
	"genialny": 1.7, "genialnie": 1.5, "zajebiscie": 1.8, "zajebisty": 1.8,
	"spokojnie": 0.6,
	// Negative.
	"zly": -1.4, "slaby": -1.1, "smutny": -1.3, "wkurza": -1.4, "nie": -0.6,
	"niechce": -1.1, "nienawidze": -2.0, "problem": -0.9, "sorry": -0.7,
	"bad": -1.2, "sad": -1.2, "angry": -1.5, "hate": -1.8, "nope": -0.8,
	"worst": -1.6, "sucks": -1.4, "wtf": -1.3, "eh": -0.4, "serio": -0.6,
	"bezsens": -1.1, "masakra": -1.4, "tragedia": -1.7, "dramat": -1.6,
	"beznadziejny": -1.7, "okropny": -1.6, "fatalny": -1.6, "smutno": -1.3,
	"przykro": -1.1, "zal": -1.1, "zalosny": -1.2, "zalosne": -1.2,
	"zle": -1.2, "gorzej": -0.9, "slabo": -1.1, "wkurzony": -1.4,
	"wkurwiony": -1.6, "zalamka": -1.4, "nerwowo": -1.1, "nerwowy": -1.1,
	"stres": -1.0, "stresujace": -1.1, "okropnie": -1.5, "niefajny": -1.0,
}

var intensifiers = map[string]float64{
	"bardzo": 1.3, "mega": 1.4, "super": 1.2, "strasznie": 1.4,
	"naprawde": 1.2, "totalnie": 1.2, "mocno": 1.2, "niesamowicie": 1.4,
	"cholernie": 1.3,
}

var dampeners = map[string]float64{
	"troche": 0.7, "troszke": 0.7, "lekko": 0.8, "raczej": 0.8,
}

var negations = map[string]bool{
	"nie": true, "nigdy": true, "bez": true, "zadne": true, "zadnych": true,
	"zadna": true, "zadnego": true, "nikt": true, "nic": true,
}

var (
	sentimentURLRE     = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	positiveEmoticonRE = regexp.MustCompile(`(?i)(:\)+|:-\)+|:d+|x-?d+|;\)+|<3)`)
	negativeEmoticonRE = regexp.MustCompile(`(?i)(:\(+|:-\(+|:'\(+|=\(+|d:|d=|>:\()`)
	laughterRE         = regexp.MustCompile(`(?i)\b(ha){2,}|(he){2,}|(ja){2,}|lol+\b`)
)

var positiveEmoji = runeSet("\U0001F602\U0001F60D\U0001F60A\U0001F600\U0001F601" +
	"\U0001F973\U0001F970\U0001F44D\U0001F495\U0001F496\U0001F497\U0001F498" +
	"\U0001F49B\U0001F49C\U0001F49A\U0001F49D\U0001F60E\U0001F609")

var negativeEmoji = runeSet("\U0001F62D\U0001F622\U0001F641\U0001F614\U0001F612" +
	"\U0001F621\U0001F620\U0001F624\U0001F92C\U0001F494\U0001F625")

func runeSet(s string) map[rune]bool {
	set := make(map[rune]bool)
	for _, r := range s {
		set[r] = true
	}
	return set
}

// scoreText ports the lexicon scorer: weighted token sum with a two-token
// negation window, intensifier/dampener multipliers, emoticon/laughter/emoji
// bonuses, punctuation and shouting boosts, square-root length normalization,
// and a tanh squash into [-1, 1].
func (Heuristic) scoreText(text string) float64 {
	if text == "" {
		return 0.0
	}
	cleaned := collapseRepeats(text)
	tokens := sentimentTokenize(cleaned)

	score := 0.0
	intensify := 1.0
	negate := 0
	for _, token := range tokens {
		if negations[token] {
			negate = 2
			continue
		}
		if mult, ok := intensifiers[token]; ok {
			intensify = math.Max(intensify, mult)
			continue
		}
		if mult, ok := dampeners[token]; ok {
			intensify *= mult
			continue
		}
		weight, ok := lexicon[token]
		if !ok {
			continue
		}
		if negate > 0 {
			weight = -weight * 0.85
			negate--
		}
		weight *= intensify
		intensify = 1.0
		score += weight
	}

	posEmot := len(positiveEmoticonRE.FindAllString(text, -1))
	negEmot := len(negativeEmoticonRE.FindAllString(text, -1))
	score += 0.6 * float64(posEmot-negEmot)
	if laughterRE.MatchString(text) {
		score += 0.5
	}

	posEmo, negEmo := 0, 0
	for _, r := range text {
		if positiveEmoji[r] {
			posEmo++
		}
		if negativeEmoji[r] {
			negEmo++
		}
	}
	score += 0.7 * float64(posEmo-negEmo)

	if punct := strings.Count(text, "!") + strings.Count(text, "?"); punct > 0 {
		score *= 1.0 + math.Min(0.3, 0.04*float64(punct))
	}

	letters, uppers := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters >= 4 && float64(uppers)/float64(letters) >= 0.6 {
		score *= 1.1
	}

	normDiv := math.Max(1.0, math.Sqrt(float64(len(tokens)+posEmot+negEmot+posEmo+negEmo)))
	return math.Tanh(score / normDiv / 2.0)
}

// collapseRepeats shortens runs of three or more identical runes to two, so
// "looool" still hits the lexicon after tokenization.
func collapseRepeats(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var last rune
	run := 0
	for _, r := range text {
		if r == last {
			run++
		} else {
			last, run = r, 1
		}
		if run <= 2 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var polishFold = map[rune]rune{
	'ą': 'a', 'ć': 'c', 'ę': 'e', 'ł': 'l', 'ń': 'n',
	'ó': 'o', 'ś': 's', 'ż': 'z', 'ź': 'z',
}

// sentimentTokenize keeps stopwords (negations and intensifiers live there)
// but lowercases, strips URLs and punctuation, folds diacritics, and drops
// single characters and pure numbers.
func sentimentTokenize(text string) []string {
	text = strings.ToLower(text)
	text = sentimentURLRE.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "_", " ")
	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)

	var tokens []string
	for _, token := range strings.Fields(text) {
		if len([]rune(token)) < 2 {
			continue
		}
		if isAllDigits(token) {
			continue
		}
		tokens = append(tokens, foldToken(token))
	}
	return tokens
}

func foldToken(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if mapped, ok := polishFold[r]; ok {
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

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
