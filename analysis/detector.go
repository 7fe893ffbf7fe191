package analysis

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for DecodeConfig
	_ "image/jpeg" // register decoder for DecodeConfig
	_ "image/png"  // register decoder for DecodeConfig
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/internal/options"
)

// DefaultSampleSize is the number of leading bytes inspected per file.
const DefaultSampleSize = 1024 * 1024

// FileInfo describes a detected file.
type FileInfo struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Size       int64    `json:"size"`
	Extension  string   `json:"extension"`
	MIMEType   string   `json:"mime_type"`
	Category   Category `json:"category"`
	Strategy   string   `json:"compression_strategy"`
	IsText     bool     `json:"is_text"`
	IsBinary   bool     `json:"is_binary"`
	Entropy    float64  `json:"entropy"`
	Redundancy float64  `json:"redundancy"`

	// Image is set for decodable PNG, JPEG and GIF files.
	Image *ImageInfo `json:"image,omitempty"`
}

// ImageInfo holds the header fields of a decodable image.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Detector classifies files. It holds no mutable state and may be shared.
type Detector struct {
	strategy   Strategy
	sampleSize int
}

type detectorConfig struct {
	strategy   Strategy
	sampleSize int
}

// DetectorOption configures a Detector.
type DetectorOption = options.Option[*detectorConfig]

// WithStrategy replaces DefaultStrategy.
func WithStrategy(s Strategy) DetectorOption {
	return options.New(func(c *detectorConfig) error {
		if len(s) == 0 {
			return fmt.Errorf("%w: empty strategy", errs.ErrInvalidConfig)
		}
		c.strategy = s

		return nil
	})
}

// WithSampleSize sets how many leading bytes are read for content analysis.
func WithSampleSize(n int) DetectorOption {
	return options.New(func(c *detectorConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: sample size must be positive, got %d", errs.ErrInvalidConfig, n)
		}
		c.sampleSize = n

		return nil
	})
}

// NewDetector creates a Detector.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	cfg := &detectorConfig{
		strategy:   DefaultStrategy(),
		sampleSize: DefaultSampleSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Detector{strategy: cfg.strategy, sampleSize: cfg.sampleSize}, nil
}

// Strategy returns the category mapping in use.
func (d *Detector) Strategy() Strategy {
	return d.strategy
}

// Detect inspects the file at path.
//
// Returns:
//   - FileInfo: Detection result
//   - error: errs.ErrNotFound if the file does not exist, I/O errors otherwise
func (d *Detector) Detect(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileInfo{}, fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("could not stat %s: %w", path, err)
	}
	if st.IsDir() {
		return FileInfo{}, fmt.Errorf("%s is a directory", path)
	}

	sample, err := readSample(path, d.sampleSize)
	if err != nil {
		return FileInfo{}, err
	}

	info := FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      st.Size(),
		Extension: strings.ToLower(filepath.Ext(path)),
		IsText:    true,
	}
	info.MIMEType = detectMIME(info.Extension, sample)
	info.Category = Categorize(info.Extension, info.MIMEType)
	info.Strategy = d.strategy.For(info.Category).String()

	if len(sample) > 0 {
		info.Entropy = Entropy(sample)
		info.Redundancy = 1 - info.Entropy/8
		info.IsText = IsText(sample)
	}
	info.IsBinary = !info.IsText

	if info.Category == CategoryImage {
		info.Image = decodeImageInfo(path)
	}

	return info, nil
}

// Action returns the strategy action for info.
func (d *Detector) Action(info FileInfo) Action {
	return d.strategy.For(info.Category)
}

func readSample(path string, size int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	sample, err := io.ReadAll(io.LimitReader(f, int64(size)))
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	return sample, nil
}

// detectMIME resolves the media type from the extension table first and falls back
// to content sniffing.
func detectMIME(ext string, sample []byte) string {
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
				return mediaType
			}
		}
	}
	if len(sample) == 0 {
		return "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(sample))
	if err != nil {
		return "application/octet-stream"
	}

	return mediaType
}

func decodeImageInfo(path string) *ImageInfo {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	cfg, name, err := image.DecodeConfig(f)
	if err != nil {
		return nil
	}

	return &ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: name}
}
