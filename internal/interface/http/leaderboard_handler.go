package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/application"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/internal/interface/middleware"
	"github.com/arvindvenkateshrao/loan-repayment-dashboard/pkg/response"
)

// orgLogos maps organization display names to their presentation assets.
// The files themselves are served by the static frontend.
var orgLogos = map[string]string{
	"GE Aerospace":                "/static/logos/ge.png",
	"Zeigler":                     "/static/logos/zeig.png",
	"City of Lafayette":           "/static/logos/cityoflaf_logo.png",
	"Tipmont":                     "/static/logos/tipmont_logo.png",
	"Kirby Risk":                  "/static/logos/kirbyrisk_logo.png",
	"Azzip Pizza":                 "/static/logos/azzip_logo.png",
	"State Farm":                  "/static/logos/statefarm_logo.png",
	"Caterpillar":                 "/static/logos/caterpillar_logo.png",
	"Wabash":                      "/static/logos/wabash_logo.png",
	"Anderson Heating & Cooling":  "/static/logos/anderson_logo.png",
	"IU Health":                   "/static/logos/iu_logo.png",
	"Freckles Graphics":           "/static/logos/freckles_logo.png",
	"Purdue University":           "/static/logos/purdue_logo.png",
	"Purdue Federal Credit Union": "/static/logos/purduefed_logo.png",
}

type LeaderboardHandler struct {
	Svc    *application.LeaderboardService
	Logger *logrus.Logger
}

func NewLeaderboardHandler(svc *application.LeaderboardService, logger *logrus.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{Svc: svc, Logger: logger}
}

type leaderboardEntry struct {
	Organization string  `json:"organization"`
	Progress     float64 `json:"progress"`
	LogoURL      string  `json:"logo_url,omitempty"`
}

// Get returns the ranked standings plus whether the caller may reset.
func (h *LeaderboardHandler) Get(c *gin.Context) {
	username := c.GetString(middleware.CtxUsernameKey)
	board, err := h.Svc.Build(c.Request.Context(), username)
	if err != nil {
		h.Logger.WithError(err).Error("leaderboard build failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}

	entries := make([]leaderboardEntry, 0, len(board.Entries))
	for _, e := range board.Entries {
		entries = append(entries, leaderboardEntry{
			Organization: e.Organization,
			Progress:     e.Progress,
			LogoURL:      orgLogos[e.Organization],
		})
	}
	response.Success(c, http.StatusOK, gin.H{
		"entries":   entries,
		"can_reset": board.CanReset,
	}, "leaderboard", nil)
}

// Reset performs the admin-only bulk reset of the competition.
func (h *LeaderboardHandler) Reset(c *gin.Context) {
	username := c.GetString(middleware.CtxUsernameKey)
	if err := h.Svc.ResetAll(c.Request.Context(), username); err != nil {
		if errors.Is(err, application.ErrNotAuthorized) {
			response.ErrorWithMeta[any](c, http.StatusForbidden, "Unauthorized access.", nil, gin.H{"redirect": "/login"})
			return
		}
		h.Logger.WithError(err).Error("competition reset failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "Database reset complete.", gin.H{"next": application.RouteLeaderboard})
}
