package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestPNG writes a solid-color PNG into a temp dir and returns its path.
func createTestPNG(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestImageCache_LoadAndDimensions(t *testing.T) {
	cache := NewImageCache()
	path := createTestPNG(t, 48, 36, color.RGBA{10, 120, 200, 255})

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 36 {
		t.Errorf("bounds = %v, want 48x36", img.Bounds())
	}

	w, h, err := cache.Dimensions(path)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 48 || h != 36 {
		t.Errorf("Dimensions = %dx%d, want 48x36", w, h)
	}
}

func TestImageCache_ServesFromCache(t *testing.T) {
	cache := NewImageCache()
	path := createTestPNG(t, 16, 16, color.White)

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	// Remove the file: a second load must come from the cache.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(path); err != nil {
		t.Errorf("cached Load after file removal: %v", err)
	}

	cache.Evict(path)
	if _, err := cache.Load(path); err == nil {
		t.Error("Load succeeded after Evict with the file gone")
	}
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	path := createTestPNG(t, 8, 8, color.Black)

	if _, err := cache.Load(path); err != nil {
		t.Fatal(err)
	}
	cache.Clear()
	if len(cache.images) != 0 {
		t.Errorf("cache holds %d images after Clear, want 0", len(cache.images))
	}
}

func TestImageCache_MissingAndInvalidFiles(t *testing.T) {
	cache := NewImageCache()

	if _, err := cache.Load(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Error("Load succeeded on a missing file")
	}

	bad := filepath.Join(t.TempDir(), "not-an-image.png")
	if err := os.WriteFile(bad, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(bad); err == nil {
		t.Error("Load succeeded on a non-image file")
	}
}

func TestImageCache_ConcurrentLoad(t *testing.T) {
	cache := NewImageCache()
	path := createTestPNG(t, 32, 32, color.RGBA{200, 50, 50, 255})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestEncodePNG_RoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 24, 18))
	for y := 0; y < 18; y++ {
		for x := 0; x < 24; x++ {
			img.Set(x, y, color.RGBA{90, 140, 30, 255})
		}
	}

	encoded, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if encoded.Width != 24 || encoded.Height != 18 {
		t.Errorf("encoded size = %dx%d, want 24x18", encoded.Width, encoded.Height)
	}
	if encoded.MimeType != "image/png" {
		t.Errorf("mime type = %q, want image/png", encoded.MimeType)
	}
	if encoded.ImageBase64 == "" {
		t.Error("empty base64 payload")
	}
}
