package testutils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"time"

	"noteshare/services"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
)

const (
	TestSecret  = "test_secret_key"
	TestIssuer  = "noteshare-test"
	TestMaxSize = 1 << 20
)

var envMutex sync.Mutex

// SetupTestEnvironment switches gin and config into test mode.
func SetupTestEnvironment() {
	envMutex.Lock()
	defer envMutex.Unlock()

	os.Setenv("GO_ENV", "test")
	os.Setenv("MONGO_DB", "noteshare_test")
	gin.SetMode(gin.TestMode)
	if err := utils.InitValidator(); err != nil {
		panic(err)
	}
}

// App is a fully wired service layer over in-memory stores.
type App struct {
	Users     *MemoryUsers
	Notes     *MemoryNotes
	Favorites *MemoryFavorites
	Comments  *MemoryComments
	Sessions  *MemorySessions
	Storage   *MemoryStorage
	Tx        *CountingTx
	Tokens    *services.TokenManager

	UserService      *usecase.UserService
	NotesService     *usecase.NotesService
	FavoritesService *usecase.FavoritesService
	CommentsService  *usecase.CommentsService
}

// NewApp wires the services. blacklist may be nil.
func NewApp(blacklist services.TokenBlacklist) *App {
	a := &App{
		Users:     NewMemoryUsers(),
		Notes:     NewMemoryNotes(),
		Favorites: NewMemoryFavorites(),
		Comments:  NewMemoryComments(),
		Sessions:  NewMemorySessions(),
		Storage:   NewMemoryStorage(),
		Tx:        &CountingTx{},
		Tokens:    services.NewTokenManager(TestSecret, time.Hour, TestIssuer),
	}

	images := &usecase.ImageUploader{Storage: a.Storage, MaxSize: TestMaxSize}
	assembler := &usecase.ResponseAssembler{Users: a.Users, Favorites: a.Favorites, Comments: a.Comments}

	a.UserService = &usecase.UserService{
		Users:      a.Users,
		Notes:      a.Notes,
		Favorites:  a.Favorites,
		Comments:   a.Comments,
		Sessions:   a.Sessions,
		Tx:         a.Tx,
		Tokens:     a.Tokens,
		Blacklist:  blacklist,
		Images:     images,
		TOTPIssuer: TestIssuer,
	}
	a.NotesService = &usecase.NotesService{
		Notes:     a.Notes,
		Favorites: a.Favorites,
		Comments:  a.Comments,
		Tx:        a.Tx,
		Assembler: assembler,
		Images:    images,
	}
	a.FavoritesService = &usecase.FavoritesService{Notes: a.Notes, Favorites: a.Favorites, Assembler: assembler}
	a.CommentsService = &usecase.CommentsService{Notes: a.Notes, Users: a.Users, Comments: a.Comments, Assembler: assembler}
	return a
}

// PNG returns a small valid png image.
func PNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
