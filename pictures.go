package blog

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	goerrors "github.com/goliatone/go-errors"
)

// thumbnailSize is the bounding box profile pictures are resized into
const thumbnailSize = 125

// PictureStore persists uploaded profile pictures under a static directory,
// resized and renamed so uploads cannot collide or overwrite each other.
type PictureStore struct {
	dir    string
	logger Logger
}

// NewPictureStore creates a store rooted at dir, creating it if needed
func NewPictureStore(dir string) (*PictureStore, error) {
	if dir == "" {
		return nil, goerrors.New("picture dir must not be empty", goerrors.CategoryBadInput)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to create picture dir")
	}

	return &PictureStore{
		dir:    dir,
		logger: defLogger{},
	}, nil
}

func (s *PictureStore) WithLogger(l Logger) *PictureStore {
	if l != nil {
		s.logger = l
	}
	return s
}

// Save reads an uploaded image, resizes it to fit the thumbnail box, and
// writes it under a random hex filename keeping the original extension.
// Returns the generated filename to store on the user record.
func (s *PictureStore) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
	default:
		return "", goerrors.New("unsupported image type", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"extension": ext})
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "unable to decode image")
	}

	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	name, err := randomPictureName(ext)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	if err := imaging.Save(thumb, path); err != nil {
		s.logger.Error("unable to save picture", "path", path, "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to save picture")
	}

	return name, nil
}

// Dir returns the directory pictures are stored in
func (s *PictureStore) Dir() string {
	return s.dir
}

func randomPictureName(ext string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to generate picture name")
	}
	return hex.EncodeToString(buf) + ext, nil
}
