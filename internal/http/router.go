package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"

	"github.com/solidarios/api/internal/auth"
	"github.com/solidarios/api/internal/config"
	httpmiddleware "github.com/solidarios/api/internal/http/middleware"
	"github.com/solidarios/api/internal/metrics"
	"github.com/solidarios/api/internal/repo"
)

// Deps reúne o que o roteador precisa; main monta os serviços concretos.
type Deps struct {
	Config        *config.Config
	JWT           *auth.JWTManager
	Auth          AuthService
	Users         UserService
	Categories    CategoryService
	Items         ItemService
	Inventory     InventoryService
	Distributions DistributionService
	ReadyChecks   map[string]func(context.Context) error
}

type Handler struct {
	cfg           *config.Config
	auth          AuthService
	users         UserService
	categories    CategoryService
	items         ItemService
	inventory     InventoryService
	distributions DistributionService
	readyChecks   map[string]func(context.Context) error
	cookies       *securecookie.SecureCookie
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// rotas de autenticação ficam fora das checagens de origem e CSRF
var authExempt = []string{"/auth/login", "/auth/register", "/auth/refresh", "/api/*"}

// NewRouter devolve roteador configurado.
func NewRouter(d Deps) (http.Handler, error) {
	if d.Config == nil || d.JWT == nil {
		return nil, errors.New("router: config e JWT são obrigatórios")
	}
	cfg := d.Config

	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	h := &Handler{
		cfg:           cfg,
		auth:          d.Auth,
		users:         d.Users,
		categories:    d.Categories,
		items:         d.Items,
		inventory:     d.Inventory,
		distributions: d.Distributions,
		readyChecks:   d.ReadyChecks,
		cookies:       securecookie.New([]byte(cfg.CookieSecret), nil),
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}
	h.cookies.MaxAge(int(cfg.JWTRefreshTTL.Seconds()))

	staff := []repo.Role{repo.RoleAdmin, repo.RoleFuncionario}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(metrics.Instrument)
	r.Use(httpmiddleware.SecurityHeaders(cfg.Security.SecurityHeadersLog))
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	if cfg.Security.CheckOrigin {
		r.Use(httpmiddleware.SameOrigin(cfg.AllowOrigins, authExempt...))
	}
	r.Use(httpmiddleware.CSRF(httpmiddleware.CSRFConfig{
		Secret:         cfg.CookieSecret,
		Generate:       cfg.Security.GenerateCSRF,
		Validate:       cfg.Security.ValidateCSRF,
		Secure:         !devCookies,
		TrustedOrigins: cfg.AllowOrigins,
		Exempt:         authExempt,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "rota não encontrada", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "método não permitido", nil)
	})

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Method(http.MethodGet, "/metrics", metrics.Handler())

		public.Route("/auth", func(a chi.Router) {
			a.Post("/register", h.Register)
			a.Post("/login", h.Login)
			a.Post("/refresh", h.Refresh)
			a.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(d.JWT))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/auth/profile", h.Profile)

		private.Route("/users", func(u chi.Router) {
			u.With(httpmiddleware.RequireRoles(staff...)).Get("/", h.ListUsers)
			u.With(httpmiddleware.RequireRoles(repo.RoleAdmin)).Post("/", h.CreateUser)
			u.Get("/{id}", h.GetUser)
			u.Patch("/{id}", h.UpdateUser)
			u.With(httpmiddleware.RequireRoles(repo.RoleAdmin)).Delete("/{id}", h.DeleteUser)
		})

		private.Route("/categories", func(c chi.Router) {
			c.Get("/", h.ListCategories)
			c.Get("/{id}", h.GetCategory)
			c.Group(func(w chi.Router) {
				w.Use(httpmiddleware.RequireRoles(staff...))
				w.Post("/", h.CreateCategory)
				w.Patch("/{id}", h.UpdateCategory)
				w.Delete("/{id}", h.DeleteCategory)
			})
		})

		private.Route("/items", func(i chi.Router) {
			donors := httpmiddleware.RequireRoles(repo.RoleAdmin, repo.RoleFuncionario, repo.RoleDoador)

			i.Get("/", h.ListItems)
			i.Get("/donor/{id}", h.ListItemsByDonor)
			i.Get("/category/{id}", h.ListItemsByCategory)
			i.Get("/{id}", h.GetItem)
			i.With(donors).Post("/", h.CreateItem)
			i.With(donors).Patch("/{id}", h.UpdateItem)
			i.With(donors).Delete("/{id}", h.DeleteItem)
			i.With(donors).Post("/{id}/photos", h.AddItemPhotos)
			i.With(donors).Delete("/{id}/photos", h.RemoveItemPhoto)
			i.With(httpmiddleware.RequireRoles(repo.RoleAdmin, repo.RoleFuncionario, repo.RoleBeneficiario)).
				Post("/request-item/{id}/{userId}", h.ReserveItem)
			i.With(httpmiddleware.RequireRoles(staff...)).Post("/{id}/release", h.ReleaseItem)
		})

		private.Route("/inventory", func(inv chi.Router) {
			inv.Use(httpmiddleware.RequireRoles(staff...))
			inv.Get("/", h.ListInventory)
			inv.Get("/low-stock", h.LowStock)
			inv.Get("/item/{itemId}", h.GetInventoryByItem)
			inv.Get("/{id}", h.GetInventory)
			inv.Post("/", h.CreateInventory)
			inv.Patch("/{id}", h.UpdateInventory)
			inv.Delete("/{id}", h.DeleteInventory)
		})

		private.Route("/distributions", func(dist chi.Router) {
			dist.Get("/beneficiary/{id}", h.ListDistributionsByBeneficiary)
			dist.Patch("/{id}", h.UpdateDistribution)
			dist.Delete("/{id}", h.DeleteDistribution)
			dist.Group(func(s chi.Router) {
				s.Use(httpmiddleware.RequireRoles(staff...))
				s.Get("/", h.ListDistributions)
				s.Post("/", h.CreateDistribution)
				s.Get("/{id}", h.GetDistribution)
			})
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range h.readyChecks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		WriteError(w, r, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", failures)
		return
	}

	WriteJSON(w, http.StatusOK, "ok", map[string]bool{"ready": true})
}
