package gallery

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// Image is the metadata of one gallery image.
type Image struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

func (i Image) String() string { return i.ID }

// ImageProvider loads image metadata.
type ImageProvider interface {
	FetchImages(ctx context.Context) ([]Image, error)
	FetchImage(ctx context.Context, id string) (Image, error)
}

// PicsumProvider reads the Lorem Picsum API rooted at BaseURL.
type PicsumProvider struct {
	Client  *http.Client
	BaseURL string
}

// FetchImages lists the first page of images.
func (p PicsumProvider) FetchImages(ctx context.Context) ([]Image, error) {
	var images []Image
	if err := getJSON(ctx, p.Client, p.url("/v2/list"), &images); err != nil {
		return nil, err
	}
	return images, nil
}

// FetchImage loads one image by id.
func (p PicsumProvider) FetchImage(ctx context.Context, id string) (Image, error) {
	var image Image
	err := getJSON(ctx, p.Client, p.url("/id/"+id+"/info"), &image)
	return image, err
}

func (p PicsumProvider) url(path string) string {
	return strings.TrimRight(p.BaseURL, "/") + path
}

// MockImageProvider serves Count placeholder images without I/O.
type MockImageProvider struct {
	Count int
}

// FetchImages implements ImageProvider.
func (m MockImageProvider) FetchImages(context.Context) ([]Image, error) {
	images := make([]Image, m.Count)
	for i := range images {
		images[i] = Image{ID: "keyboard", Author: "mock", Width: 300, Height: 200}
	}
	return images, nil
}

// FetchImage implements ImageProvider.
func (m MockImageProvider) FetchImage(_ context.Context, id string) (Image, error) {
	return Image{ID: id, Author: "mock", Width: 300, Height: 200}, nil
}

// GalleryKey is the key space of the image gallery screen.
type GalleryKey string

const (
	Images            GalleryKey = "images"
	IsSearchPresented GalleryKey = "isSearchPresented"
)

// SearchKey is the key space of the search sheet.
type SearchKey string

const (
	Query  SearchKey = "query"
	Search SearchKey = "search" // func(context.Context, string) error
)

// ImageGalleryScreen lists images and offers a search sheet.
type ImageGalleryScreen struct {
	store    *cachestore.KeyedCache[GalleryKey]
	provider ImageProvider
	opts     func(name string) []cachestore.Option
}

// NewImageGalleryScreen builds the screen on provider.
func NewImageGalleryScreen(provider ImageProvider, opts func(name string) []cachestore.Option) *ImageGalleryScreen {
	return &ImageGalleryScreen{
		store: cachestore.New(map[GalleryKey]any{
			IsSearchPresented: false,
		}, opts("imageGallery")...),
		provider: provider,
		opts:     opts,
	}
}

// Images returns the listed images, or nil while loading.
func (s *ImageGalleryScreen) Images() []Image {
	images, _ := cachestore.Lookup[[]Image](s.store, Images)
	return images
}

// Reload fetches the image list. It is also the pull-to-refresh action.
func (s *ImageGalleryScreen) Reload(ctx context.Context) error {
	images, err := s.provider.FetchImages(ctx)
	if err != nil {
		return err
	}
	s.store.Set(Images, images)
	return nil
}

// OpenSearch presents the search sheet and returns its store. Searching
// replaces the gallery's images with the single match.
func (s *ImageGalleryScreen) OpenSearch() *SearchSheet {
	s.store.Set(IsSearchPresented, true)
	return &SearchSheet{store: cachestore.New(map[SearchKey]any{
		Query: "",
		Search: func(ctx context.Context, query string) error {
			image, err := s.provider.FetchImage(ctx, query)
			if err != nil {
				return err
			}
			s.store.Set(Images, []Image{image})
			return nil
		},
	}, s.opts("imageGallery.search")...)}
}

// CloseSearch dismisses the search sheet.
func (s *ImageGalleryScreen) CloseSearch() {
	cachestore.Bind[bool](s.store, IsSearchPresented).Set(false)
}

// SearchSheet is a text field and a search button.
type SearchSheet struct {
	store *cachestore.KeyedCache[SearchKey]
}

// Type replaces the query text.
func (s *SearchSheet) Type(query string) {
	cachestore.Bind[string](s.store, Query).Set(query)
}

// Submit runs the injected search with the current query.
func (s *SearchSheet) Submit(ctx context.Context) error {
	search := cachestore.Resolve[func(context.Context, string) error](s.store, Search)
	return search(ctx, cachestore.Resolve[string](s.store, Query))
}

// ImageGallery lists images from Lorem Picsum and searches by id.
type ImageGallery struct {
	// Provider overrides the provider built from the environment.
	Provider ImageProvider
}

func (ImageGallery) ID() string    { return "imageGallery" }
func (ImageGallery) Title() string { return "ImageGallery" }

// Run loads the list, then searches for one image.
func (e ImageGallery) Run(ctx context.Context, env *Env) (*Report, error) {
	provider := e.Provider
	if provider == nil {
		provider = PicsumProvider{Client: env.client(), BaseURL: env.ImagesURL}
	}

	screen := NewImageGalleryScreen(provider, func(name string) []cachestore.Option {
		return env.options(name)
	})
	track(env, "imageGallery", screen.store)

	report := newReport(e.ID())
	record(report, "appear", screen.store)

	if err := screen.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	record(report, "loaded", screen.store)

	images := screen.Images()
	if len(images) == 0 {
		return report, nil
	}

	sheet := screen.OpenSearch()
	record(report, "open search", screen.store)

	sheet.Type(images[len(images)-1].ID)
	if err := sheet.Submit(ctx); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	screen.CloseSearch()
	record(report, "search "+images[len(images)-1].ID, screen.store)

	return report, nil
}
