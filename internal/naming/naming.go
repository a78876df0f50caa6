// Package naming derives identifier names and import paths for asset files.
package naming

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

// ErrSameFile is returned by ImportPath when the asset is the document.
var ErrSameFile = errors.New("asset is the document itself")

// SanitizedName turns an asset path into a lower camel case identifier:
// "assets/Hero-banner.large.svg" becomes "heroBannerLargeImg" with the
// suffix for "svg" being "Img". Only ASCII letters and digits survive and a
// leading digit gets an underscore. fallback is used when nothing usable is
// left.
func SanitizedName(assetPath string, suffixes map[string]string, fallback string) string {
	base := path.Base(filepath.ToSlash(assetPath))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	words := strings.FieldsFunc(stem, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	name := strcase.ToLowerCamel(strings.Join(words, " "))

	if name == "" {
		name = fallback
	}
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name + suffixes[ext]
}

// ImportPath returns the module path that imports assetPath from a document
// at documentPath: slash separated, relative to the document's directory and
// starting with "./" or "../".
func ImportPath(documentPath, assetPath string) (string, error) {
	doc, err := filepath.Abs(documentPath)
	if err != nil {
		return "", err
	}
	asset, err := filepath.Abs(assetPath)
	if err != nil {
		return "", err
	}
	if doc == asset {
		return "", ErrSameFile
	}

	rel, err := filepath.Rel(filepath.Dir(doc), asset)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}
