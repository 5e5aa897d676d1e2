package training

import (
	"errors"
	"math/rand"
)

// ErrDegenerateLabels is the configuration error for training sets that
// cannot be stratified: a single class, or fewer than two samples per class.
var ErrDegenerateLabels = errors.New("training: need at least 2 samples of each class")

// stratifiedSplit partitions sample indices into train and test sets,
// holding out the given ratio of each class so the split preserves the
// class balance. At least one sample per class lands on each side. The
// shuffle is seeded, so the same corpus always splits the same way.
func stratifiedSplit(labels []int, testRatio float64, seed int64) (train, test []int, err error) {
	var pos, neg []int
	for i, y := range labels {
		if y == 1 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}
	if len(pos) < 2 || len(neg) < 2 {
		return nil, nil, ErrDegenerateLabels
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range [][]int{neg, pos} {
		rng.Shuffle(len(class), func(a, b int) {
			class[a], class[b] = class[b], class[a]
		})

		nTest := int(float64(len(class)) * testRatio)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(class) {
			nTest = len(class) - 1
		}

		test = append(test, class[:nTest]...)
		train = append(train, class[nTest:]...)
	}

	return train, test, nil
}
