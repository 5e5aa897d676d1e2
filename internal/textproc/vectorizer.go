package textproc

import (
	"errors"
	"math"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrEmptyCorpus is returned when Fit is called with no usable documents.
var ErrEmptyCorpus = errors.New("vectorizer: empty training corpus")

// Tokens are runs of at least two word characters, matching the behavior
// the persisted models were trained with.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

var foldCaser = cases.Lower(language.English)

// Options controls vocabulary construction.
type Options struct {
	// MaxFeatures caps the vocabulary size; terms are kept by descending
	// corpus frequency.
	MaxFeatures int
	// MinDocFreq drops terms appearing in fewer documents than this.
	MinDocFreq int
	// MaxDocRatio drops terms appearing in more than this fraction of
	// documents.
	MaxDocRatio float64
}

// DefaultOptions are the vocabulary settings the served model contract uses.
func DefaultOptions() Options {
	return Options{
		MaxFeatures: 1000,
		MinDocFreq:  2,
		MaxDocRatio: 0.95,
	}
}

// Vectorizer maps free text onto a fixed TF-IDF column space over a learned
// vocabulary of unigrams and bigrams. Fit builds the vocabulary once; after
// that the vectorizer is immutable and safe for concurrent Transform calls.
type Vectorizer struct {
	Opts       Options
	Vocabulary map[string]int
	IDF        []float64
	Fitted     bool
}

// NewVectorizer creates an unfitted vectorizer with the given options.
func NewVectorizer(opts Options) *Vectorizer {
	return &Vectorizer{Opts: opts}
}

// Fit builds the vocabulary and IDF weights from the training corpus.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}

	docFreq := make(map[string]int)
	totalFreq := make(map[string]int)

	for _, doc := range corpus {
		terms := Tokenize(doc)
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			totalFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	n := len(corpus)
	maxDF := int(math.Floor(v.Opts.MaxDocRatio * float64(n)))
	if maxDF < 1 {
		maxDF = 1
	}

	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.Opts.MinDocFreq {
			continue
		}
		if df > maxDF {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return ErrEmptyCorpus
	}

	// Keep the most frequent terms; ties break alphabetically so models
	// are reproducible run to run.
	sort.Slice(kept, func(i, j int) bool {
		if totalFreq[kept[i]] != totalFreq[kept[j]] {
			return totalFreq[kept[i]] > totalFreq[kept[j]]
		}
		return kept[i] < kept[j]
	})
	if v.Opts.MaxFeatures > 0 && len(kept) > v.Opts.MaxFeatures {
		kept = kept[:v.Opts.MaxFeatures]
	}

	// Column order is alphabetical over the retained terms.
	sort.Strings(kept)

	v.Vocabulary = make(map[string]int, len(kept))
	v.IDF = make([]float64, len(kept))
	for i, term := range kept {
		v.Vocabulary[term] = i
		// Smoothed IDF keeps weights finite for terms in every document.
		v.IDF[i] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}
	v.Fitted = true

	return nil
}

// Transform maps text into the learned column space. Tokens outside the
// vocabulary contribute nothing; an unfitted vectorizer yields a zero-length
// vector rather than an error so serving degrades instead of failing.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.IDF))
	if !v.Fitted {
		return vec
	}

	for _, term := range Tokenize(text) {
		if col, ok := v.Vocabulary[term]; ok {
			vec[col]++
		}
	}

	norm := 0.0
	for col := range vec {
		vec[col] *= v.IDF[col]
		norm += vec[col] * vec[col]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for col := range vec {
			vec[col] /= norm
		}
	}

	return vec
}

// Size returns the vocabulary width, 0 when unfitted.
func (v *Vectorizer) Size() int {
	return len(v.IDF)
}

// Tokenize case-folds text and emits unigrams plus adjacent bigrams with
// stop words removed.
func Tokenize(text string) []string {
	folded := foldCaser.String(text)
	raw := tokenPattern.FindAllString(folded, -1)

	unigrams := make([]string, 0, len(raw))
	for _, tok := range raw {
		if isStopWord(tok) {
			continue
		}
		unigrams = append(unigrams, tok)
	}

	terms := make([]string, 0, len(unigrams)*2)
	terms = append(terms, unigrams...)
	for i := 0; i+1 < len(unigrams); i++ {
		terms = append(terms, unigrams[i]+" "+unigrams[i+1])
	}
	return terms
}
