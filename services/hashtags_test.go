package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"no tags", "just a sunset", []string{}},
		{"keeps duplicates and order", "#Foo #bar #Foo", []string{"#foo", "#bar", "#foo"}},
		{"underscores and digits", "at #golden_hour2 today", []string{"#golden_hour2"}},
		{"stops at punctuation", "#go-lang!", []string{"#go"}},
		{"bare hash ignored", "# nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.text))
		})
	}
}

func TestNormalizeHashtag(t *testing.T) {
	assert.Equal(t, "#sunset", NormalizeHashtag("Sunset"))
	assert.Equal(t, "#sunset", NormalizeHashtag("#SUNSET"))
}
