package ingest

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// spaceFolder is a transform.Transformer that drops leading and trailing
// whitespace and emits one ASCII space for each inner whitespace run.
type spaceFolder struct {
	seenText bool
	inSpace  bool
}

func (f *spaceFolder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		if unicode.IsSpace(r) {
			nSrc += size
			if f.seenText {
				f.inSpace = true
			}
			continue
		}
		need := utf8.RuneLen(r)
		if f.inSpace {
			need++
		}
		if nDst+need > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		if f.inSpace {
			dst[nDst] = ' '
			nDst++
			f.inSpace = false
		}
		f.seenText = true
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += size
	}
	return nDst, nSrc, nil
}

func (f *spaceFolder) Reset() {
	*f = spaceFolder{}
}
