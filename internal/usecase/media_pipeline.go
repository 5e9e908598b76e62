package usecase

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mapmarket/reaction-service/internal/domain"
	"github.com/mapmarket/reaction-service/internal/event"
	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/mapmarket/reaction-service/internal/platform/metrics"
	"go.uber.org/zap"
)

// MediaPrefix is the root of all ad media in the object store. Objects outside
// it are none of this service's business.
const MediaPrefix = "ads/"

const (
	thumbPrefix   = "thumb@"
	thumbDir      = "thumbs"
	resizedMarker = "resized"
	maxImageBytes = 10 << 20
)

// ThumbSizes are the bounding-box edges produced for every original image.
var ThumbSizes = []int{100, 400}

// ListingMediaPrefix is the object-store prefix holding every original and
// derivative belonging to one listing.
func ListingMediaPrefix(sellerID, listingID string) string {
	return path.Join(MediaPrefix, sellerID, listingID) + "/"
}

// MediaPipeline turns each finalized original image into a fixed set of
// thumbnails next to it. Uploads carry a metadata marker so the pipeline's own
// output never re-enters it.
type MediaPipeline struct {
	store   domain.ObjectStore
	resizer domain.ImageResizer
	metrics *metrics.Manager
	logger  *logger.Logger
}

func NewMediaPipeline(store domain.ObjectStore, resizer domain.ImageResizer, m *metrics.Manager, log *logger.Logger) *MediaPipeline {
	return &MediaPipeline{
		store:   store,
		resizer: resizer,
		metrics: m,
		logger:  log.Named("MediaPipeline"),
	}
}

// Handle runs the derivative pipeline for one finalized object. Every guard
// rejection is a clean no-op, not an error: the event stream carries plenty of
// objects this pipeline must ignore.
func (p *MediaPipeline) Handle(ctx context.Context, ev *event.MediaFinalized) error {
	log := p.logger.With(zap.String("object", ev.Name))

	if reason := rejectReason(ev); reason != "" {
		log.Info("Skipping object", zap.String("reason", reason))
		return nil
	}

	scratch, err := os.MkdirTemp("", "media-pipeline-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	original := filepath.Join(scratch, path.Base(ev.Name))
	if err := p.store.Download(ctx, ev.Name, original); err != nil {
		return fmt.Errorf("download %s: %w", ev.Name, err)
	}

	dir := path.Dir(ev.Name)
	base := path.Base(ev.Name)

	var produced, failed int
	for _, size := range ThumbSizes {
		thumbName := fmt.Sprintf("%s%d_%s", thumbPrefix, size, base)
		thumbKey := path.Join(dir, thumbDir, thumbName)
		thumbPath := filepath.Join(scratch, thumbName)

		if err := p.resizer.Fit(original, thumbPath, size); err != nil {
			log.Error("Failed to resize image", zap.Int("size", size), zap.Error(err))
			failed++
			continue
		}
		meta := map[string]string{resizedMarker: "true"}
		if err := p.store.Upload(ctx, thumbKey, thumbPath, ev.ContentType, meta); err != nil {
			log.Error("Failed to upload derivative", zap.String("key", thumbKey), zap.Error(err))
			failed++
			continue
		}
		p.metrics.DerivativesProduced.Inc()
		produced++
	}

	log.Info("Derivatives produced", zap.Int("produced", produced), zap.Int("failed", failed))
	if produced == 0 && failed > 0 {
		return fmt.Errorf("all derivatives failed for %s", ev.Name)
	}
	return nil
}

// rejectReason returns a non-empty reason when the object must not enter the
// pipeline. Order matters only for log readability.
func rejectReason(ev *event.MediaFinalized) string {
	switch {
	case ev.Name == "" || ev.ContentType == "":
		return "missing object name or content type"
	case ev.Metadata[resizedMarker] != "":
		return "already a derivative"
	case !strings.HasPrefix(ev.Name, MediaPrefix):
		return "outside media prefix"
	case !strings.HasPrefix(ev.ContentType, "image/"):
		return "not an image"
	case ev.Size > maxImageBytes:
		return "image exceeds size ceiling"
	default:
		return ""
	}
}

// IsDerivativeKey reports whether key names a pipeline-produced thumbnail, and
// if so returns the key of the original it derives from.
func IsDerivativeKey(key string) (parent string, ok bool) {
	dir, base := path.Dir(key), path.Base(key)
	if path.Base(dir) != thumbDir || !strings.HasPrefix(base, thumbPrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(base, thumbPrefix)
	i := strings.Index(rest, "_")
	if i < 1 {
		return "", false
	}
	return path.Join(path.Dir(dir), rest[i+1:]), true
}
