package imageprocessor

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"imagesearch/logging"
	"imagesearch/pixelbuffer"
)

// Decoding backends.
const (
	BackendOpenCV = "opencv"
	BackendGo     = "go"
)

// RegistryOptions configures the loaders a registry starts with.
type RegistryOptions struct {
	// Backend is BackendOpenCV or BackendGo. OpenCV decodes every format it
	// supports and falls back to Go's decoders when it fails.
	Backend string

	// MaxDimension downscales larger images before fingerprinting; 0 disables it
	MaxDimension int
}

// ImageLoaderRegistry maintains a registry of image loaders
type ImageLoaderRegistry struct {
	loaders       map[string]ImageLoader
	defaultLoader ImageLoader
	mutex         sync.RWMutex
}

// NewImageLoaderRegistry creates a new image loader registry
func NewImageLoaderRegistry(opts RegistryOptions) *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[string]ImageLoader),
	}

	goLoader := NewGoImageLoader(opts.MaxDimension)
	for ext := range formatExtensions {
		registry.RegisterLoader(ext, goLoader)
	}
	registry.defaultLoader = goLoader

	if opts.Backend != BackendGo {
		registry.registerStandardLoaders(NewStandardImageLoader(opts.MaxDimension))
	}

	return registry
}

// registerStandardLoaders registers the OpenCV loader for the formats it handles
func (r *ImageLoaderRegistry) registerStandardLoaders(standardLoader *StandardImageLoader) {
	for ext, format := range formatExtensions {
		for _, supported := range standardLoader.SupportedFormats {
			if format == supported {
				r.RegisterLoader(ext, standardLoader)
			}
		}
	}
}

// RegisterLoader registers a new loader for a specific file extension
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ext = strings.ToLower(ext)
	r.loaders[ext] = loader
}

// GetLoader returns the appropriate loader for the given path
func (r *ImageLoaderRegistry) GetLoader(path string) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if loader, ok := r.loaders[ext]; ok {
		return loader
	}

	return r.defaultLoader
}

// CanLoadFile checks if any registered loader can handle the given file
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	_, ok := r.loaders[ext]
	return ok
}

// LoadImage loads an image using the appropriate registered loader. When
// that loader fails, the default loader gets a second attempt.
func (r *ImageLoaderRegistry) LoadImage(path string) (*pixelbuffer.ByteBuffer, error) {
	loader := r.GetLoader(path)
	if loader == nil {
		return nil, fmt.Errorf("no suitable loader found for: %s", path)
	}

	buf, err := loader.LoadImage(path)
	if err == nil || loader == r.defaultLoader {
		return buf, err
	}

	logging.LogWarning("Loader failed for %s, retrying with Go decoders: %v", path, err)
	buf, fallbackErr := r.defaultLoader.LoadImage(path)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w (fallback: %v)", err, fallbackErr)
	}
	return buf, nil
}
