// Package corpus generates the test strings used to compare collations:
// every valid Unicode scalar value, all two-letter Latin permutations, and
// optional curated strings from a manifest file.
package corpus

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Scalar is one Unicode scalar value with the metadata stored alongside
// it in the corpus tables.
type Scalar struct {
	CodePoint int
	Hex       string
	Value     string
}

// Scalars returns every valid Unicode scalar value: U+0000 through
// U+10FFFF excluding the surrogate range, 1,112,064 entries in total.
// Surrogates are skipped up front because they are not scalar values and
// cannot be carried in a Go string.
func Scalars() []Scalar {
	scalars := make([]Scalar, 0, utf8.MaxRune+1-surrogateCount)
	for r := rune(0); r <= utf8.MaxRune; r++ {
		if r >= surrogateMin && r <= surrogateMax {
			continue
		}
		scalars = append(scalars, Scalar{
			CodePoint: int(r),
			Hex:       fmt.Sprintf("0x%x", r),
			Value:     string(r),
		})
	}
	return scalars
}

// ScalarValues returns the Scalars as plain single-character strings.
func ScalarValues() []string {
	scalars := Scalars()
	values := make([]string, len(scalars))
	for i, s := range scalars {
		values[i] = s.Value
	}
	return values
}

const (
	surrogateMin   = 0xD800
	surrogateMax   = 0xDFFF
	surrogateCount = surrogateMax - surrogateMin + 1
)

// LatinPairs returns all 676 two-letter permutations of the lowercase
// Latin alphabet, the curated short strings the corpus always includes.
func LatinPairs() []string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	pairs := make([]string, 0, len(alphabet)*len(alphabet))
	for _, a := range alphabet {
		for _, b := range alphabet {
			pairs = append(pairs, string(a)+string(b))
		}
	}
	return pairs
}

// Manifest is an optional YAML file of additional strings to include in
// the corpus, e.g. locale-specific edge cases.
type Manifest struct {
	Strings []string `yaml:"strings"`
}

// LoadManifest reads a corpus manifest. A missing path ("") yields an
// empty manifest, not an error.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return &Manifest{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("corpus: parse manifest: %w", err)
	}
	return &m, nil
}

// Default returns the full corpus: Latin pairs, all scalar values, and any
// manifest extras. Duplicates are permitted; the checker never assumes
// corpus entries are distinct under any ordering.
func Default(m *Manifest) []string {
	all := LatinPairs()
	all = append(all, ScalarValues()...)
	if m != nil {
		all = append(all, m.Strings...)
	}
	return all
}
