package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".pdf"))
	assert.Equal(t, PDF, MapExtToFormat("PDF"))
	assert.Equal(t, IMAGE, MapExtToFormat(".jpg"))
	assert.Equal(t, IMAGE, MapExtToFormat(".JPEG"))
	assert.Equal(t, IMAGE, MapExtToFormat("png"))
	assert.Equal(t, IMAGE, MapExtToFormat(".tiff"))
	assert.Equal(t, IMAGE, MapExtToFormat(".bmp"))
	assert.Empty(t, MapExtToFormat(".docx"))
	assert.Empty(t, MapExtToFormat(""))
}

func TestIsAllowedExt(t *testing.T) {
	assert.True(t, IsAllowedExt(".pdf"))
	assert.True(t, IsAllowedExt(".PNG"))
	assert.True(t, IsAllowedExt("jpeg"))
	assert.False(t, IsAllowedExt(".exe"))
	assert.False(t, IsAllowedExt(""))
}
