package collation

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// prolongedSoundMark is the katakana-hiragana prolonged sound mark.
const prolongedSoundMark = 'ー'

// katakanaOffset is the distance from a hiragana code point to its katakana.
const katakanaOffset = 'ア' - 'あ'

// vowelRows lists the hiragana whose vowel is the key.
var vowelRows = map[rune]string{
	'あ': "あぁかがさざただなはばぱまやゃらわゎ",
	'い': "いぃきぎしじちぢにひびぴみりゐ",
	'う': "うぅくぐすずつっづぬふぶぷむゆゅるゔ",
	'え': "えぇけげせぜてでねへべぺめれゑ",
	'お': "おぉこごそぞとどのほぼぽもよょろを",
}

// kanaVowels maps every hiragana and katakana with a vowel to that vowel,
// written in the same script.
var kanaVowels = buildKanaVowels()

func buildKanaVowels() map[rune]rune {
	m := make(map[rune]rune, 2*90)
	for vowel, row := range vowelRows {
		for _, r := range row {
			m[r] = vowel
			m[r+katakanaOffset] = vowel + katakanaOffset
		}
	}
	return m
}

// prolongedSoundExpander rewrites ー as the vowel of the kana before it, so
// ケーキ collates as ケエキ. A mark with no preceding vowel is left as is.
type prolongedSoundExpander struct {
	vowel rune
}

func (t *prolongedSoundExpander) Reset() {
	t.vowel = 0
}

func (t *prolongedSoundExpander) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src[nSrc:])

		if r == prolongedSoundMark && t.vowel != 0 {
			if nDst+utf8.RuneLen(t.vowel) > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += utf8.EncodeRune(dst[nDst:], t.vowel)
			nSrc += size
			continue
		}
		if r != prolongedSoundMark {
			t.vowel = kanaVowels[r]
		}

		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
		nSrc += size
	}
	return nDst, nSrc, nil
}

// expandProlongedSounds applies prolongedSoundExpander to s.
func expandProlongedSounds(s string) string {
	if !strings.ContainsRune(s, prolongedSoundMark) {
		return s
	}
	out, _, err := transform.String(&prolongedSoundExpander{}, s)
	if err != nil {
		return s
	}
	return out
}
