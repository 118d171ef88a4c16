package validator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yi-nology/blender_board/pkg/storage"
)

// SignatureHeadSize bounds how much of a file is read for signature checks.
const SignatureHeadSize = 2048

var (
	pngMagic  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// minBinarySTLSize is the 80-byte header plus the triangle count.
const minBinarySTLSize = 84

// HasValidFileSignature reports whether the leading bytes of filePath match
// the type implied by originalName's extension. The client MIME type plays
// no part.
func HasValidFileSignature(kind storage.Kind, filePath, originalName string) (bool, error) {
	head, err := readHead(filePath, SignatureHeadSize)
	if err != nil {
		return false, err
	}
	return MatchSignature(kind, filepath.Ext(originalName), head), nil
}

// MatchSignature dispatches on the lower-cased extension within kind.
// Unknown extensions never match.
func MatchSignature(kind storage.Kind, ext string, head []byte) bool {
	ext = strings.ToLower(ext)
	switch kind {
	case storage.KindImages:
		return matchImage(ext, head)
	case storage.KindModels:
		return matchModel(ext, head)
	default:
		return false
	}
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open for signature: %w", err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read signature: %w", err)
	}
	return buf[:read], nil
}

func matchImage(ext string, head []byte) bool {
	switch ext {
	case ".png":
		return bytes.HasPrefix(head, pngMagic)
	case ".jpg", ".jpeg":
		return bytes.HasPrefix(head, jpegMagic)
	case ".gif":
		return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
	case ".webp":
		return len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WEBP"
	default:
		return false
	}
}

func matchModel(ext string, head []byte) bool {
	switch ext {
	case ".blend":
		prefix := head
		if len(prefix) > 16 {
			prefix = prefix[:16]
		}
		return bytes.Contains(bytes.ToUpper(prefix), []byte("BLENDER"))
	case ".glb":
		return bytes.HasPrefix(head, []byte("glTF"))
	case ".gltf":
		text := strings.TrimLeft(string(head), " \t\r\n\ufeff")
		return strings.HasPrefix(text, "{") && strings.Contains(text, `"asset"`)
	case ".ply":
		text := string(head)
		return strings.HasPrefix(text, "ply") && strings.Contains(text, "format ")
	case ".stl":
		if strings.HasPrefix(strings.TrimLeft(string(head), " \t\r\n"), "solid") {
			return true
		}
		// Binary STL has no magic; size is the only check available.
		return len(head) >= minBinarySTLSize
	case ".fbx":
		text := string(head)
		return strings.HasPrefix(text, "Kaydara FBX Binary") || strings.Contains(text, "; FBX")
	case ".obj":
		return isLikelyOBJ(string(head))
	default:
		return false
	}
}

func isLikelyOBJ(text string) bool {
	return strings.HasPrefix(text, "v ") ||
		strings.Contains(text, "\nv ") ||
		strings.HasPrefix(text, "o ") ||
		strings.HasPrefix(text, "#") ||
		strings.Contains(text, "\nusemtl ") ||
		strings.Contains(text, "\nmtllib ")
}
