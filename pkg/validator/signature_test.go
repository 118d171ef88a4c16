package validator

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yi-nology/blender_board/pkg/storage"
)

func TestMatchSignature(t *testing.T) {
	cases := []struct {
		name string
		kind storage.Kind
		ext  string
		head []byte
		want bool
	}{
		{"png", storage.KindImages, ".png", append(bytes.Clone(pngMagic), 'x'), true},
		{"png upper ext", storage.KindImages, ".PNG", bytes.Clone(pngMagic), true},
		{"png truncated", storage.KindImages, ".png", pngMagic[:5], false},
		{"png text", storage.KindImages, ".png", []byte("not-image"), false},
		{"jpeg", storage.KindImages, ".jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, true},
		{"jpg", storage.KindImages, ".jpg", []byte{0xff, 0xd8, 0xff}, true},
		{"jpg wrong", storage.KindImages, ".jpg", []byte{0xff, 0xd8}, false},
		{"gif87a", storage.KindImages, ".gif", []byte("GIF87a..."), true},
		{"gif89a", storage.KindImages, ".gif", []byte("GIF89a"), true},
		{"gif other", storage.KindImages, ".gif", []byte("GIF90a"), false},
		{"webp", storage.KindImages, ".webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), true},
		{"webp wav", storage.KindImages, ".webp", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), false},
		{"image ext under models", storage.KindModels, ".png", bytes.Clone(pngMagic), false},
		{"unknown image ext", storage.KindImages, ".bmp", []byte("BM"), false},

		{"glb", storage.KindModels, ".glb", []byte("glTF\x02\x00\x00\x00"), true},
		{"glb wrong", storage.KindModels, ".glb", []byte("not-glb-data"), false},
		{"gltf", storage.KindModels, ".gltf", []byte("  {\n \"asset\": {\"version\": \"2.0\"}}"), true},
		{"gltf no asset", storage.KindModels, ".gltf", []byte(`{"scenes": []}`), false},
		{"gltf not object", storage.KindModels, ".gltf", []byte(`["asset"]`), false},
		{"blend", storage.KindModels, ".blend", []byte("BLENDER-v293REND"), true},
		{"blend lower", storage.KindModels, ".blend", []byte("xxblender"), true},
		{"blend late marker", storage.KindModels, ".blend", []byte("0123456789abcdefBLENDER"), false},
		{"ply", storage.KindModels, ".ply", []byte("ply\nformat ascii 1.0\n"), true},
		{"ply no format", storage.KindModels, ".ply", []byte("ply\nelement vertex 8\n"), false},
		{"stl ascii", storage.KindModels, ".stl", []byte("  solid cube\nfacet normal"), true},
		{"stl binary", storage.KindModels, ".stl", make([]byte, 84), true},
		{"stl short binary", storage.KindModels, ".stl", make([]byte, 83), false},
		{"fbx binary", storage.KindModels, ".fbx", []byte("Kaydara FBX Binary  \x00"), true},
		{"fbx text", storage.KindModels, ".fbx", []byte("; FBX 7.4.0 project file"), true},
		{"fbx wrong", storage.KindModels, ".fbx", []byte("FBX?"), false},
		{"obj vertex", storage.KindModels, ".obj", []byte("v 0 0 0\nv 1 0 0\n"), true},
		{"obj later vertex", storage.KindModels, ".obj", []byte("g cube\nv 0 0 0\n"), true},
		{"obj comment", storage.KindModels, ".obj", []byte("# Blender OBJ\n"), true},
		{"obj object", storage.KindModels, ".obj", []byte("o Cube\n"), true},
		{"obj mtllib", storage.KindModels, ".obj", []byte("g x\nmtllib cube.mtl\n"), true},
		{"obj garbage", storage.KindModels, ".obj", []byte("hello world"), false},
		{"unknown model ext", storage.KindModels, ".max", []byte("v 0 0 0"), false},
		{"unknown kind", storage.Kind("videos"), ".png", bytes.Clone(pngMagic), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchSignature(tc.kind, tc.ext, tc.head))
		})
	}
}

func TestHasValidFileSignature(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return path
	}

	t.Run("UsesOriginalNameExtension", func(t *testing.T) {
		path := write("1-abc.bin", append(bytes.Clone(pngMagic), []byte("VALID")...))
		ok, err := HasValidFileSignature(storage.KindImages, path, "photo.PNG")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = HasValidFileSignature(storage.KindImages, path, "photo.gif")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ReadsOnlyTheHead", func(t *testing.T) {
		// the obj marker sits past the bounded read window
		data := append(bytes.Repeat([]byte("x"), SignatureHeadSize), []byte("\nv 0 0 0\n")...)
		path := write("big.obj", data)
		ok, err := HasValidFileSignature(storage.KindModels, path, "big.obj")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := write("empty.png", nil)
		ok, err := HasValidFileSignature(storage.KindImages, path, "empty.png")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := HasValidFileSignature(storage.KindImages, filepath.Join(dir, "missing.png"), "missing.png")
		assert.Error(t, err)
	})
}
