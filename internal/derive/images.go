// Package derive computes the two fields bifrost synthesizes rather than
// reads verbatim from upstream: the substance page's short prose abstract
// (parsed out of rendered HTML) and its image URLs (derived from MD5 file
// name hashes).
package derive

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

const defaultThumbSize = 100

// ImageURLs is the {thumb, image} pair derived from a single upstream
// file name.
type ImageURLs struct {
	Thumb string
	Image string
}

// DeriveImage computes the canonical thumb and full image URLs for a
// MediaWiki file name, using the MD5 hash bucketing scheme MediaWiki uses
// to shard its image storage directories.
func DeriveImage(cdnURL, fileName string) ImageURLs {
	return deriveImageWithSize(cdnURL, fileName, defaultThumbSize)
}

func deriveImageWithSize(cdnURL, fileName string, thumbSize int) ImageURLs {
	sum := md5.Sum([]byte(fileName))
	h := hex.EncodeToString(sum[:])

	return ImageURLs{
		Thumb: fmt.Sprintf("%sw/thumb.php?f=%s&width=%d", cdnURL, fileName, thumbSize),
		Image: fmt.Sprintf("%sw/images/%c/%s/%s", cdnURL, h[0], h[0:2], fileName),
	}
}

// DeriveImages maps DeriveImage over a list of file names. If names is
// empty, it returns an empty (non-nil) slice; callers whose upstream
// "images" field was absent or non-array should not call this at all and
// should instead report the field as null per §4.5.
func DeriveImages(cdnURL string, names []string) []ImageURLs {
	out := make([]ImageURLs, 0, len(names))
	for _, name := range names {
		out = append(out, DeriveImage(cdnURL, name))
	}
	return out
}
