package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var imageSuffixes = map[string]string{"svg": "Img", "png": "Img", "jpg": "Img", "jpeg": "Img", "webp": "Img"}

func TestSanitizedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"foo.svg", "fooImg"},
		{"assets/Hero-banner.large.svg", "heroBannerLargeImg"},
		{"my_file.PNG", "myFileImg"},
		{"camelCaseName.webp", "camelCaseNameImg"},
		{"src/data.json", "data"},
		{"notes", "notes"},
		{"404.png", "_404Img"},
		{"日本.svg", "assetImg"},
		{"--.svg", "assetImg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizedName(tt.path, imageSuffixes, "asset"), tt.path)
	}
}

func TestSanitizedName_EmptyFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", SanitizedName("日本.svg", imageSuffixes, ""))
	assert.Equal(t, "logo", SanitizedName("logo.svg", nil, "asset"))
}

func TestImportPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		doc, asset, want string
	}{
		{"/p/src/App.tsx", "/p/src/assets/logo.svg", "./assets/logo.svg"},
		{"/p/src/App.tsx", "/p/src/logo.svg", "./logo.svg"},
		{"/p/src/App.tsx", "/p/public/logo.svg", "../public/logo.svg"},
		{"/p/src/App.tsx", "/p/src/.hidden.svg", "./.hidden.svg"},
	}

	for _, tt := range tests {
		got, err := ImportPath(tt.doc, tt.asset)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.asset)
	}
}

func TestImportPath_SameFile(t *testing.T) {
	t.Parallel()

	_, err := ImportPath("/p/src/App.tsx", "/p/src/../src/App.tsx")
	assert.ErrorIs(t, err, ErrSameFile)
}
