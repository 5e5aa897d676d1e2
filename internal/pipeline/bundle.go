package pipeline

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phishguard/phishing-detector/internal/classifier"
	"github.com/phishguard/phishing-detector/internal/textproc"
	"go.uber.org/zap"
)

// Artifact file names under the model directory. The three blobs are fit on
// the same training run and only make sense together; replacing one without
// the others skews the feature space.
const (
	VectorizerFile = "vectorizer.gob"
	ScalerFile     = "scaler.gob"
	ClassifierFile = "classifier.gob"
)

// Bundle is the artifact triple a serving process shares read-only across
// requests: vocabulary, normalization statistics, and the tree ensemble.
// Any component may be nil when its blob was missing at load time; the
// service treats an incomplete bundle as "no model" and predicts neutral.
type Bundle struct {
	Vectorizer *textproc.Vectorizer
	Scaler     *Scaler
	Ensemble   *classifier.Ensemble
}

// Complete reports whether all three artifacts are present.
func (b *Bundle) Complete() bool {
	return b != nil && b.Vectorizer != nil && b.Scaler != nil && b.Ensemble != nil
}

// Store persists and loads model bundles under a single directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a bundle store rooted at dir
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Save writes all three artifacts. Blobs are written to temporary files and
// renamed into place so a crash mid-save never leaves a torn blob behind.
func (s *Store) Save(bundle *Bundle) error {
	if !bundle.Complete() {
		return fmt.Errorf("bundle store: refusing to persist a partial bundle")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("bundle store: create model directory: %w", err)
	}

	if err := s.writeBlob(VectorizerFile, bundle.Vectorizer); err != nil {
		return err
	}
	if err := s.writeBlob(ScalerFile, bundle.Scaler); err != nil {
		return err
	}
	if err := s.writeBlob(ClassifierFile, bundle.Ensemble); err != nil {
		return err
	}

	s.logger.Info("Model bundle saved",
		zap.String("dir", s.dir),
		zap.Int("vocabulary_size", bundle.Vectorizer.Size()),
		zap.Int("trees", len(bundle.Ensemble.Trees)),
		zap.String("engine", bundle.Ensemble.Engine))

	return nil
}

// Load reads whatever artifacts exist. Missing blobs are logged as warnings
// and leave the component nil; serving falls back to neutral predictions
// rather than refusing to start.
func (s *Store) Load() (*Bundle, error) {
	bundle := &Bundle{}

	var vec textproc.Vectorizer
	if ok, err := s.readBlob(VectorizerFile, &vec); err != nil {
		return nil, err
	} else if ok {
		bundle.Vectorizer = &vec
	}

	var scaler Scaler
	if ok, err := s.readBlob(ScalerFile, &scaler); err != nil {
		return nil, err
	} else if ok {
		bundle.Scaler = &scaler
	}

	var ens classifier.Ensemble
	if ok, err := s.readBlob(ClassifierFile, &ens); err != nil {
		return nil, err
	} else if ok {
		bundle.Ensemble = &ens
	}

	if !bundle.Complete() {
		s.logger.Warn("Model bundle incomplete, serving will predict neutral",
			zap.String("dir", s.dir),
			zap.Bool("vectorizer", bundle.Vectorizer != nil),
			zap.Bool("scaler", bundle.Scaler != nil),
			zap.Bool("classifier", bundle.Ensemble != nil))
	}

	return bundle, nil
}

func (s *Store) writeBlob(name string, v any) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("bundle store: create %s: %w", name, err)
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("bundle store: encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("bundle store: close %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("bundle store: rename %s: %w", name, err)
	}
	return nil
}

// readBlob decodes one artifact, reporting (false, nil) when it is absent.
func (s *Store) readBlob(name string, v any) (bool, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Model artifact missing", zap.String("file", name))
			return false, nil
		}
		return false, fmt.Errorf("bundle store: open %s: %w", name, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return false, fmt.Errorf("bundle store: decode %s: %w", name, err)
	}
	return true, nil
}
