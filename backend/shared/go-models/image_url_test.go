package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveImageURL(t *testing.T) {
	cases := map[string]string{
		"https://drive.google.com/file/d/1AbC_d-9/view?usp=sharing": "https://drive.google.com/uc?export=view&id=1AbC_d-9",
		"https://drive.google.com/file/d/XYZ/preview":               "https://drive.google.com/uc?export=view&id=XYZ",
		"https://cdn.example.com/photo.jpg":                         "https://cdn.example.com/photo.jpg",
		"https://drive.google.com/uc?export=view&id=XYZ":            "https://drive.google.com/uc?export=view&id=XYZ",
		"not a url at all /d/":                                      "not a url at all /d/",
		"":                                                          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ResolveImageURL(in), in)
	}
}

func TestResolveImagesTrimsAndDedups(t *testing.T) {
	got := ResolveImages([]string{
		" https://drive.google.com/file/d/abc/view ",
		"",
		"https://drive.google.com/uc?export=view&id=abc",
		"https://cdn.example.com/1.jpg",
	})
	assert.Equal(t, []string{
		"https://drive.google.com/uc?export=view&id=abc",
		"https://cdn.example.com/1.jpg",
	}, got)

	assert.NotNil(t, ResolveImages(nil))
}
