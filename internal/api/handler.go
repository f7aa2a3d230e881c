package api

import (
	"errors"
	"time"

	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/i18n"
	"github.com/rentguard/rentguard/internal/services"
	"github.com/rentguard/rentguard/internal/sessions"
	"gorm.io/gorm"
)

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	loginAttemptLimit  = 8
	loginAttemptWindow = 15 * time.Minute
)

type Options struct {
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	I18n         *i18n.Manager
	Policy       services.PropertyPolicy
	Events       services.EventPublisher
	Revocations  sessions.RevocationStore
	Notifier     *services.SessionNotifier
}

type Handler struct {
	secretKey     []byte
	location      *time.Location
	cookieSecure  bool
	freeTierLimit int
	i18n          *i18n.Manager
	now           func() time.Time

	authService      *services.AuthService
	propertyService  *services.PropertyService
	paymentService   *services.PaymentService
	dashboardService *services.DashboardService
	notifier         *services.SessionNotifier
	revocations      sessions.RevocationStore
	loginLimiter     *attemptLimiter
}

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if len(options.SecretKey) == 0 {
		return nil, errors.New("secret key is required")
	}
	if options.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Events == nil {
		options.Events = services.LogPublisher{}
	}
	if options.Revocations == nil {
		options.Revocations = sessions.NewMemoryStore()
	}
	if options.Notifier == nil {
		options.Notifier = services.NewSessionNotifier(options.Events)
	}

	repositories := db.NewRepositories(database)
	propertyService := services.NewPropertyService(repositories.Properties, repositories.Payments, repositories.Users, options.Policy, options.Events)
	paymentService := services.NewPaymentService(repositories.Payments, repositories.Properties, options.Policy.DayOverflow, options.Events)

	return &Handler{
		secretKey:     []byte(options.SecretKey),
		location:      options.Location,
		cookieSecure:  options.CookieSecure,
		freeTierLimit: options.Policy.FreeTierLimit,
		i18n:          options.I18n,
		now:           time.Now,

		authService:      services.NewAuthService(repositories.Users),
		propertyService:  propertyService,
		paymentService:   paymentService,
		dashboardService: services.NewDashboardService(propertyService, paymentService, options.Policy.Rates),
		notifier:         options.Notifier,
		revocations:      options.Revocations,
		loginLimiter:     newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
	}, nil
}

// today is the handler's calendar date in its configured time zone.
func (handler *Handler) today() time.Time {
	return services.CalendarDate(handler.now(), handler.location)
}
