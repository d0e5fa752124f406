package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/internal/campaign"
	campaigndomain "github.com/amainooti/Zakat-foundation/internal/campaign/domain"
	"github.com/amainooti/Zakat-foundation/internal/checkout"
	checkoutdomain "github.com/amainooti/Zakat-foundation/internal/checkout/domain"
	"github.com/amainooti/Zakat-foundation/internal/config"
	"github.com/amainooti/Zakat-foundation/internal/currency"
	"github.com/amainooti/Zakat-foundation/internal/donation"
	donationdomain "github.com/amainooti/Zakat-foundation/internal/donation/domain"
	"github.com/amainooti/Zakat-foundation/internal/newsletter"
	newsletterdomain "github.com/amainooti/Zakat-foundation/internal/newsletter/domain"
	"github.com/amainooti/Zakat-foundation/internal/observability"
	obsmetrics "github.com/amainooti/Zakat-foundation/internal/observability/metrics"
	"github.com/amainooti/Zakat-foundation/internal/paystack"
	"github.com/amainooti/Zakat-foundation/internal/providers/email"
	"github.com/amainooti/Zakat-foundation/internal/receipt"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	observability.Module,
	currency.Module,
	paystack.Module,
	email.Module,
	receipt.Module,
	campaign.Module,
	newsletter.Module,
	donation.Module,
	checkout.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	genID           *snowflake.Node
	gateway         *paystack.Client
	checkoutSvc     checkoutdomain.Service
	donationSvc     donationdomain.Service
	campaignSvc     campaigndomain.Service
	newsletterSvc   newsletterdomain.Service
	obsMetrics      *obsmetrics.Metrics
	checkoutLimiter *rateLimiter
	verifyLimiter   *rateLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	GenID         *snowflake.Node
	Gateway       *paystack.Client
	CheckoutSvc   checkoutdomain.Service
	DonationSvc   donationdomain.Service
	CampaignSvc   campaigndomain.Service
	NewsletterSvc newsletterdomain.Service
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		db:              p.DB,
		genID:           p.GenID,
		gateway:         p.Gateway,
		checkoutSvc:     p.CheckoutSvc,
		donationSvc:     p.DonationSvc,
		campaignSvc:     p.CampaignSvc,
		newsletterSvc:   p.NewsletterSvc,
		obsMetrics:      p.ObsMetrics,
		checkoutLimiter: newRateLimiter(10, time.Minute),
		verifyLimiter:   newRateLimiter(30, time.Minute),
	}

	svc.registerPublicRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	pay := api.Group("/paystack")
	{
		pay.POST("/checkout", rateLimit(s.checkoutLimiter), s.HandleCheckout)
		pay.POST("/webhook", s.HandlePaystackWebhook)
		pay.GET("/verify/:reference", rateLimit(s.verifyLimiter), s.HandleVerifyTransaction)
	}

	campaigns := api.Group("/campaigns")
	{
		campaigns.GET("", s.ListCampaigns)
		campaigns.GET("/:slug", s.GetCampaign)
		campaigns.GET("/:slug/contributions", s.ListCampaignContributions)
	}

	news := api.Group("/newsletter")
	{
		news.POST("/subscribe", s.SubscribeNewsletter)
		news.POST("/unsubscribe", s.UnsubscribeNewsletter)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AdminRequired())

	admin.POST("/campaigns", s.CreateCampaign)
	admin.PATCH("/campaigns/:id", s.UpdateCampaign)
	admin.POST("/campaigns/:id/contributions", s.LogManualContribution)
	admin.GET("/donations", s.ListDonations)
	admin.POST("/donations/:reference/resend-receipt", s.ResendReceipt)
	admin.GET("/newsletter/subscribers", s.ListNewsletterSubscribers)
}
