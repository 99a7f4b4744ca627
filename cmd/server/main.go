package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/PavLouis/PWA-Movies/auth"
	"github.com/PavLouis/PWA-Movies/blobstore"
	bloblocal "github.com/PavLouis/PWA-Movies/blobstore/local"
	blobmemory "github.com/PavLouis/PWA-Movies/blobstore/memory"
	blobs3 "github.com/PavLouis/PWA-Movies/blobstore/s3"
	pg "github.com/PavLouis/PWA-Movies/database/postgres"
	"github.com/PavLouis/PWA-Movies/favorite"
	favoritememory "github.com/PavLouis/PWA-Movies/favorite/memory"
	favoritepostgres "github.com/PavLouis/PWA-Movies/favorite/postgres"
	"github.com/PavLouis/PWA-Movies/list"
	listmemory "github.com/PavLouis/PWA-Movies/list/memory"
	listpostgres "github.com/PavLouis/PWA-Movies/list/postgres"
	"github.com/PavLouis/PWA-Movies/movie"
	moviecache "github.com/PavLouis/PWA-Movies/movie/cache"
	moviememory "github.com/PavLouis/PWA-Movies/movie/memory"
	moviepostgres "github.com/PavLouis/PWA-Movies/movie/postgres"
	"github.com/PavLouis/PWA-Movies/push"
	pushmemory "github.com/PavLouis/PWA-Movies/push/memory"
	pushpostgres "github.com/PavLouis/PWA-Movies/push/postgres"
	"github.com/PavLouis/PWA-Movies/user"
	usermemory "github.com/PavLouis/PWA-Movies/user/memory"
	userpostgres "github.com/PavLouis/PWA-Movies/user/postgres"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	movies    movie.Store
	lists     list.Store
	favorites favorite.Store
	users     user.Store
	subs      push.Store
}

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx := context.Background()

	st, err := newStores(ctx, log)
	if err != nil {
		log.Fatal("Failed to set up stores", zap.Error(err))
	}

	blobs, err := newBlobStore(ctx)
	if err != nil {
		log.Fatal("Failed to set up blob store", zap.Error(err))
	}

	dispatcher := newDispatcher(log, st.subs)
	notifier := push.NewNotifier(dispatcher)

	router := gin.New()
	router.Use(gin.Recovery())

	movieServer := movie.NewServer(log, st.movies, blobs, notifier)
	listServer := list.NewServer(log, st.lists, st.movies, notifier)
	favoriteServer := favorite.NewServer(log, st.favorites, st.movies)
	userServer := user.NewServer(log, st.users, jwtSecret)
	pushServer := push.NewServer(log, st.subs)

	movieServer.RegisterRoutes(router)
	listServer.RegisterRoutes(router)
	userServer.RegisterRoutes(router)

	authed := router.Group("/", auth.Middleware(jwtSecret))
	movieServer.RegisterAuthedRoutes(authed)
	listServer.RegisterAuthedRoutes(authed)
	favoriteServer.RegisterAuthedRoutes(authed)
	userServer.RegisterAuthedRoutes(authed)
	pushServer.RegisterRoutes(authed)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
}

// newStores connects to postgres when DATABASE_URL is set and falls back to
// in-memory stores otherwise.
func newStores(ctx context.Context, log *zap.Logger) (*stores, error) {
	cacheTTL := 5 * time.Minute
	if raw := os.Getenv("MOVIE_CACHE_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		cacheTTL = parsed
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return &stores{
			movies:    moviecache.NewInCache(moviememory.NewInMemory(), cacheTTL),
			lists:     listmemory.NewInMemory(),
			favorites: favoritememory.NewInMemory(),
			users:     usermemory.NewInMemory(),
			subs:      pushmemory.NewMemory(),
		}, nil
	}

	db, err := pg.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := moviepostgres.MigrateTables(ctx, db); err != nil {
		return nil, err
	}
	if err := listpostgres.MigrateTables(ctx, db); err != nil {
		return nil, err
	}
	if err := favoritepostgres.MigrateTables(ctx, db); err != nil {
		return nil, err
	}
	if err := userpostgres.MigrateTables(ctx, db); err != nil {
		return nil, err
	}
	if err := pushpostgres.MigrateTables(ctx, db); err != nil {
		return nil, err
	}

	return &stores{
		movies:    moviecache.NewInCache(moviepostgres.NewInPostgres(db), cacheTTL),
		lists:     listpostgres.NewInPostgres(db),
		favorites: favoritepostgres.NewInPostgres(db),
		users:     userpostgres.NewInPostgres(db),
		subs:      pushpostgres.NewInPostgres(db),
	}, nil
}

// newBlobStore picks the poster storage backend from BLOB_BACKEND: "local"
// (default), "s3", or "memory".
func newBlobStore(ctx context.Context) (blobstore.Store, error) {
	switch os.Getenv("BLOB_BACKEND") {
	case "", "local":
		dir := os.Getenv("BLOB_DIR")
		if dir == "" {
			dir = "data/blobs"
		}
		return bloblocal.New(dir)
	case "s3":
		return blobs3.New(ctx, os.Getenv("S3_REGION"), os.Getenv("S3_BUCKET"))
	case "memory":
		return blobmemory.NewInMemory(), nil
	default:
		return nil, errors.New("unknown BLOB_BACKEND")
	}
}

// newDispatcher returns a web push dispatcher when VAPID keys are configured,
// or a no-op one so notification-triggering flows still work without them.
func newDispatcher(log *zap.Logger, subs push.Store) push.Dispatcher {
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	privateKey := os.Getenv("VAPID_PRIVATE_KEY")
	if publicKey == "" || privateKey == "" {
		log.Warn("VAPID keys not set, push notifications disabled")
		return &push.NoOpDispatcher{}
	}

	subscriber := os.Getenv("VAPID_SUBSCRIBER")
	if subscriber == "" {
		subscriber = "mailto:admin@pwa-movies.local"
	}

	return push.NewPusher(log, subs, push.NewWebPushSender(subscriber, publicKey, privateKey))
}
