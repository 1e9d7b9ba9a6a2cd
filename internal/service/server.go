package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/auth"
	"github.com/mmynk/slidemaker/internal/groups"
	"github.com/mmynk/slidemaker/internal/ids"
	"github.com/mmynk/slidemaker/internal/metrics"
	"github.com/mmynk/slidemaker/internal/middleware"
	"github.com/mmynk/slidemaker/internal/presentations"
	"github.com/mmynk/slidemaker/internal/recents"
	"github.com/mmynk/slidemaker/internal/search"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/storage"
	"github.com/mmynk/slidemaker/internal/storage/tables"
	"github.com/mmynk/slidemaker/internal/templates"
	"github.com/mmynk/slidemaker/pkg/api/apiconnect"
)

// Deps are the shared components the services are built from.
type Deps struct {
	// Store holds the users, groups, recents and templates tables.
	Store storage.Store
	// KV is the persistent key-value store behind Store. Presentations and
	// the device session live here too.
	KV storage.KeyValue
	// SessionKV holds the editor handoff keys. It does not outlive the process.
	SessionKV storage.KeyValue

	IDs          *ids.Generator
	Accounts     auth.AccountManager
	JWT          *auth.JWTManager
	Logger       *slog.Logger
	TableOptions []tables.Option
}

// Services bundles every RPC implementation served by one process.
type Services struct {
	Auth         *AuthService
	Group        *GroupService
	Slide        *SlideService
	Recents      *RecentsService
	Template     *TemplateService
	Presentation *PresentationService
	Search       *SearchService

	jwt    *auth.JWTManager
	logger *slog.Logger
}

// NewServices wires the domain managers into the RPC services.
func NewServices(d Deps) *Services {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracker := recents.NewTracker(d.Store)
	recentUsers := recents.NewRecentUsers(d.KV)
	device := session.NewDevice(d.KV, recentUsers)
	handoff := session.NewHandoff(d.SessionKV)
	decks := presentations.NewManager(d.KV, d.IDs, tracker, d.TableOptions...)

	return &Services{
		Auth:         NewAuthService(d.Accounts, d.Store, d.JWT, device, recentUsers, logger),
		Group:        NewGroupService(d.Store, groups.NewManager(d.Store, tracker)),
		Slide:        NewSlideService(d.Store, d.IDs, handoff, logger),
		Recents:      NewRecentsService(tracker),
		Template:     NewTemplateService(templates.NewCatalog(d.Store, tracker), handoff),
		Presentation: NewPresentationService(decks, tracker, handoff),
		Search:       NewSearchService(search.New(d.Store, decks)),
		jwt:          d.JWT,
		logger:       logger,
	}
}

// Mount registers every service on mux. Group, slide and recents calls need
// a valid token; the others also serve guests. Metrics, when set, also count
// calls rejected by the auth check.
func (s *Services) Mount(mux *http.ServeMux, m *metrics.Metrics) {
	optional := s.interceptors(m, middleware.OptionalAuth(s.jwt))
	required := s.interceptors(m, middleware.RequireAuth(s.jwt))

	mux.Handle(apiconnect.NewAuthServiceHandler(s.Auth, optional))
	mux.Handle(apiconnect.NewGroupServiceHandler(s.Group, required))
	mux.Handle(apiconnect.NewSlideServiceHandler(s.Slide, required))
	mux.Handle(apiconnect.NewRecentsServiceHandler(s.Recents, required))
	mux.Handle(apiconnect.NewTemplateServiceHandler(s.Template, optional))
	mux.Handle(apiconnect.NewPresentationServiceHandler(s.Presentation, optional))
	mux.Handle(apiconnect.NewSearchServiceHandler(s.Search, optional))
}

func (s *Services) interceptors(m *metrics.Metrics, authn connect.Interceptor) connect.HandlerOption {
	var chain []connect.Interceptor
	if m != nil {
		chain = append(chain, middleware.MetricsInterceptor(m))
	}
	chain = append(chain, authn, middleware.LoggingInterceptor(s.logger))
	return connect.WithInterceptors(chain...)
}
