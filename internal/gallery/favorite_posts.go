package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// Post is one entry of the posts endpoint.
type Post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func (p Post) String() string { return fmt.Sprintf("#%d", p.ID) }

// Tab is the selected tab of the favorite posts screen.
type Tab int

const (
	TabPosts Tab = iota
	TabFavorites
)

func (t Tab) String() string {
	if t == TabFavorites {
		return "favorites"
	}
	return "posts"
}

// PostsKey is the key space of the favorite posts screen.
type PostsKey string

const (
	CurrentTabSelection PostsKey = "currentTabSelection"
	Posts               PostsKey = "posts"
	Favorites           PostsKey = "favorites"
)

// PostListKey is the key space of the posts tab. Besides the posts it holds
// behaviours injected by the screen.
type PostListKey string

const (
	PostList    PostListKey = "posts"
	IsFavorite  PostListKey = "isFavorite"  // func(Post) bool
	AddFavorite PostListKey = "addFavorite" // func(Post)
	FetchPosts  PostListKey = "fetchPosts"  // func(context.Context) error
)

// FavoriteListKey is the key space of the favorites tab.
type FavoriteListKey string

const (
	FavoriteList   FavoriteListKey = "favorites"
	RemoveFavorite FavoriteListKey = "removeFavorite" // func(Post)
)

// PostsFetcher loads posts. The store never performs I/O itself; fetchers
// run outside it and write the result back.
type PostsFetcher interface {
	FetchPosts(ctx context.Context) ([]Post, error)
}

// HTTPPosts fetches posts as a JSON array from URL.
type HTTPPosts struct {
	Client *http.Client
	URL    string
}

// FetchPosts implements PostsFetcher.
func (h HTTPPosts) FetchPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := getJSON(ctx, h.Client, h.URL, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return nil
}

// PostsScreen is the posts tab.
type PostsScreen struct {
	store cachestore.Cache[PostListKey]
}

// Posts returns the loaded posts, or nil while loading.
func (s *PostsScreen) Posts() []Post {
	posts, _ := cachestore.Lookup[[]Post](s.store, PostList)
	return posts
}

// Appear fetches the posts.
func (s *PostsScreen) Appear(ctx context.Context) error {
	return cachestore.Resolve[func(context.Context) error](s.store, FetchPosts)(ctx)
}

// Tap toggles p as a favorite.
func (s *PostsScreen) Tap(p Post) {
	cachestore.Resolve[func(Post)](s.store, AddFavorite)(p)
}

// IsFavorite reports whether the heart is shown next to p.
func (s *PostsScreen) IsFavorite(p Post) bool {
	return cachestore.Resolve[func(Post) bool](s.store, IsFavorite)(p)
}

// FavoritesScreen is the favorites tab.
type FavoritesScreen struct {
	store cachestore.Cache[FavoriteListKey]
}

// Favorites returns the favorite posts in the order they were added.
func (s *FavoritesScreen) Favorites() []Post {
	favorites, _ := cachestore.Lookup[[]Post](s.store, FavoriteList)
	return favorites
}

// Tap removes p from the favorites.
func (s *FavoritesScreen) Tap(p Post) {
	cachestore.Resolve[func(Post)](s.store, RemoveFavorite)(p)
}

// FavoritePostsScreen owns the store and derives both tabs from it.
type FavoritePostsScreen struct {
	store     *cachestore.KeyedCache[PostsKey]
	postsView *cachestore.ScopedCache[PostsKey, PostListKey]
	favsView  *cachestore.ScopedCache[PostsKey, FavoriteListKey]

	Tab       cachestore.Binding[Tab]
	Posts     *PostsScreen
	Favorites *FavoritesScreen
}

// NewFavoritePostsScreen builds the screen. fetcher is used by the posts
// tab's fetch behaviour.
func NewFavoritePostsScreen(fetcher PostsFetcher, opts func(name string) []cachestore.Option) *FavoritePostsScreen {
	store := cachestore.New(map[PostsKey]any{
		CurrentTabSelection: TabFavorites,
	}, opts("favoritePosts")...)

	favorites := func() []Post {
		f, _ := cachestore.Lookup[[]Post](store, Favorites)
		return f
	}
	indexOf := func(favs []Post, p Post) int {
		return slices.IndexFunc(favs, func(f Post) bool { return f.ID == p.ID })
	}

	postsView := cachestore.Scope(store,
		cachestore.Pairs(map[PostsKey]PostListKey{Posts: PostList}),
		append(opts("favoritePosts.posts"), cachestore.WithLocal(map[PostListKey]any{
			IsFavorite: func(p Post) bool {
				return indexOf(favorites(), p) >= 0
			},
			AddFavorite: func(p Post) {
				cachestore.Update(store, Favorites, func(favs *[]Post) {
					if i := indexOf(*favs, p); i >= 0 {
						*favs = slices.Delete(slices.Clone(*favs), i, i+1)
						return
					}
					*favs = append(slices.Clone(*favs), p)
				})
			},
			FetchPosts: func(ctx context.Context) error {
				posts, err := fetcher.FetchPosts(ctx)
				if err != nil {
					return err
				}
				store.Set(Posts, posts)
				return nil
			},
		}))...)

	favsView := cachestore.Scope(store,
		cachestore.Pairs(map[PostsKey]FavoriteListKey{Favorites: FavoriteList}),
		append(opts("favoritePosts.favorites"), cachestore.WithLocal(map[FavoriteListKey]any{
			RemoveFavorite: func(p Post) {
				cachestore.Update(store, Favorites, func(favs *[]Post) {
					if i := indexOf(*favs, p); i >= 0 {
						*favs = slices.Delete(slices.Clone(*favs), i, i+1)
					}
				})
			},
		}))...)

	return &FavoritePostsScreen{
		store:     store,
		postsView: postsView,
		favsView:  favsView,
		Tab:       cachestore.Bind[Tab](store, CurrentTabSelection),
		Posts:     &PostsScreen{store: postsView},
		Favorites: &FavoritesScreen{store: favsView},
	}
}

// Close detaches both tabs.
func (s *FavoritePostsScreen) Close() {
	s.postsView.Dispose()
	s.favsView.Dispose()
}

// FavoritePosts lists posts from a JSON endpoint and lets the user keep
// favorites in a second tab.
type FavoritePosts struct {
	// Fetcher overrides the HTTP fetcher built from the environment.
	Fetcher PostsFetcher
}

func (FavoritePosts) ID() string    { return "favoritePosts" }
func (FavoritePosts) Title() string { return "Favorite Posts" }

// Run loads the posts, favorites the first two, unfavorites one from each
// tab and switches tabs along the way.
func (e FavoritePosts) Run(ctx context.Context, env *Env) (*Report, error) {
	fetcher := e.Fetcher
	if fetcher == nil {
		fetcher = HTTPPosts{Client: env.client(), URL: env.PostsURL}
	}

	screen := NewFavoritePostsScreen(fetcher, func(name string) []cachestore.Option {
		return env.options(name)
	})
	defer screen.Close()
	track(env, "favoritePosts", screen.store)

	report := newReport(e.ID())
	record(report, "appear", screen.store)

	screen.Tab.Set(TabPosts)
	if err := screen.Posts.Appear(ctx); err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	record(report, "open posts", screen.store)

	posts := screen.Posts.Posts()
	if len(posts) < 2 {
		return report, nil
	}
	screen.Posts.Tap(posts[0])
	screen.Posts.Tap(posts[1])
	record(report, "favorite two", screen.store)

	screen.Posts.Tap(posts[0])
	record(report, "unfavorite first", screen.store)

	screen.Tab.Set(TabFavorites)
	for _, p := range screen.Favorites.Favorites() {
		screen.Favorites.Tap(p)
	}
	record(report, "clear favorites", screen.store)

	return report, nil
}
