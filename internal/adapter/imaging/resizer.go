package imaging

import (
	"fmt"

	img "github.com/disintegration/imaging"
)

// Resizer produces scaled-down image derivatives on local files.
type Resizer struct{}

func NewResizer() *Resizer {
	return &Resizer{}
}

// Fit writes a derivative of srcPath scaled to fit an edge×edge bounding box
// into destPath. Aspect ratio is preserved and images smaller than the box
// are written at their original size, never upscaled. Output format follows
// destPath's extension.
func (r *Resizer) Fit(srcPath, destPath string, edge int) error {
	src, err := img.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", srcPath, err)
	}

	// imaging.Fit is a no-op beyond orientation when the source already fits
	// inside the box, which is exactly the no-upscale contract.
	thumb := img.Fit(src, edge, edge, img.Lanczos)

	if err := img.Save(thumb, destPath); err != nil {
		return fmt.Errorf("failed to save derivative %s: %w", destPath, err)
	}
	return nil
}
