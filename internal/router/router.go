package router

import (
	"net/http"
	"time"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/handlers"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/repository"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/services"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/storage"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}
func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
}

// Deps collects the shared collaborators the route handlers need.
type Deps struct {
	Catalog *models.Catalog
	Store   storage.ObjectStore
	Email   *services.EmailService
	Speech  *services.SpeechService
	Media   *services.MediaService
	Vision  *services.VisionService
	Pay     *services.PaymentService
}

func Setup(log *zap.Logger, deps Deps) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("remapsession", store))

	// --- Now that sessions are initialized, other middleware can use them ---
	router.Use(CSRFProtection("/api/billing/webhook"))
	router.Use(UserLoaderMiddleware(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Stored media (synthesized narration audio, reversed clips).
	router.Static(config.Conf.Media.PublicBase, config.Conf.Media.Directory)

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log)
	setupHandler := handlers.NewSetupHandler(log)
	treatmentHandler := handlers.NewTreatmentHandler(log, repository.NewTreatmentStore(), deps.Catalog, deps.Email)
	statusHandler := handlers.NewStatusHandler(log)
	billingHandler := handlers.NewBillingHandler(log, deps.Pay)
	mediaHandler := handlers.NewMediaHandler(log, deps.Speech, deps.Media, deps.Vision, deps.Store)
	resultsHandler := handlers.NewResultsHandler(log)
	accountHandler := handlers.NewAccountHandler(log, deps.Media)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	{
		api.GET("/csrf", func(c *gin.Context) {
			token, _ := c.Get("csrf_token")
			c.JSON(http.StatusOK, gin.H{"csrfToken": token})
		})

		api.POST("/register", limiter, authHandler.Register)
		api.POST("/login", limiter, authHandler.Login)
		api.POST("/logout", authHandler.Logout)
		api.GET("/status", statusHandler.Get)

		api.POST("/billing/checkout", billingHandler.CreateCheckout)
		api.POST("/billing/webhook", billingHandler.Webhook)

		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			authorized.GET("/setup", setupHandler.Get)
			authorized.POST("/setup", setupHandler.Save)

			authorized.GET("/catalog", treatmentHandler.Catalog)

			treatment := authorized.Group("/treatment/:n")
			{
				treatment.POST("/start", treatmentHandler.Start)
				treatment.GET("", treatmentHandler.GetState)
				treatment.POST("/errors/toggle", treatmentHandler.ToggleError)
				treatment.POST("/errors/custom", treatmentHandler.AddCustomError)
				treatment.POST("/errors/complete", treatmentHandler.CompleteSelection)
				treatment.POST("/phase/:p/complete", treatmentHandler.CompleteNarrativePhase)
				treatment.GET("/scripts", treatmentHandler.Scripts)
				treatment.POST("/narration", treatmentHandler.RecordNarration)
				treatment.POST("/narration/playback", treatmentHandler.ConfirmPlayback)
				treatment.POST("/narration/complete", treatmentHandler.CompleteNarration)
				treatment.POST("/reversal/toggle", treatmentHandler.ToggleReversal)
				treatment.GET("/reversal/scripts", treatmentHandler.ReversedScripts)
				treatment.POST("/reversal/record", treatmentHandler.RecordReversal)
				treatment.POST("/reversal/complete", treatmentHandler.CompleteReversal)
				treatment.POST("/complete", treatmentHandler.Complete)
			}

			authorized.GET("/results", resultsHandler.List)
			authorized.GET("/results/chart", resultsHandler.Chart)

			authorized.POST("/media/narration-audio", mediaHandler.GenerateNarrationAudio)
			authorized.POST("/media/reversed-clips", mediaHandler.GenerateReversedClips)
			authorized.POST("/media/describe-image", mediaHandler.DescribeImage)

			account := authorized.Group("/account")
			{
				account.POST("/update-info", accountHandler.UpdateInfo)
				account.POST("/update-password", accountHandler.UpdatePassword)
				account.POST("/reminders", accountHandler.UpdateReminders)
				account.POST("/delete-session-data", accountHandler.DeleteSessionData)
			}
		}
	}

	return router
}
